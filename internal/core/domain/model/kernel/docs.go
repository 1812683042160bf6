// Package kernel provides core domain primitives shared by the pizzeria model.
//
// The package includes:
//   - OrderID: the positive, never-reused identifier assigned by the order repository
//
// Primitives are immutable value types and safe for concurrent use.
package kernel
