// Package eventlog provides the file-backed order repository.
//
// Every order creation and status change is appended to a JSON-lines file:
//
//	{"eventType":"CREATE","timestamp":"...","order":{"id":1,"pizzaDetails":"margherita","status":"RECEIVED"}}
//	{"eventType":"STATUS_UPDATE","timestamp":"...","orderId":1,"newStatus":"COOKING"}
//
// On Open the file is replayed to rebuild two in-memory indices: active orders,
// which are still moving through the pipeline, and finalized orders, of which only
// the terminal status is kept. The next order id continues after the largest id
// found in the file.
//
// A log that has grown past the configured size is archived on Open. Its state is
// replayed from the archive and written back to the new file in compact form, so
// ids are never reused across a rotation.
package eventlog
