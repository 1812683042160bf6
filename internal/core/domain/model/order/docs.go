// Package order provides the Order entity and its lifecycle state machine.
//
// The package includes:
//   - Order: an accepted pizza order with immutable identity and details
//   - Status: the lifecycle Received -> Cooking -> Cooked -> Delivering -> Delivered,
//     with Discarded reachable from every non-final state
//
// Key business rules:
//   - Orders are created in Received status with a repository-issued identifier
//   - MoveToNext applies exactly one forward transition and is a no-op on final states
//   - Discard never overwrites a final state (Delivered stays Delivered)
//   - Transitions on one order are serialized by a per-order mutex
//   - RestoreOrder exists only for event log replay and accepts any valid status
package order
