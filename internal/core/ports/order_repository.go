// Package ports defines the contracts between the pizzeria core and its adapters.
// These interfaces let workers and use cases run against the file-backed event log
// in production and against mocks in tests.
package ports

import (
	"context"

	"pizzeria/internal/core/domain/model/kernel"
	"pizzeria/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for orders.
// Every status change is appended to a durable log before it is considered done;
// the in-memory view splits orders into active ones (still moving through the
// pipeline) and finalized ones (only their terminal status is kept).
type OrderRepository interface {
	// NextID reserves a fresh, never reused order identifier.
	NextID() kernel.OrderID

	// AddOrder logs a CREATE record and registers the order as active.
	// Returns an error wrapping errs.ErrObjectAlreadyExists if the id is known
	// in either index, or the write error if the record could not be appended.
	// Nothing is registered on failure.
	AddOrder(ctx context.Context, aggregate *order.Order) error

	// LogStatusUpdate appends a STATUS_UPDATE record for an order that has already
	// made the transition in memory. A final status moves the order from the
	// active index to the finalized one.
	LogStatusUpdate(ctx context.Context, id kernel.OrderID, status order.Status) error

	// GetOrderByID returns the live order while it is active.
	// Finalized and unknown ids yield errs.ErrObjectNotFound.
	GetOrderByID(ctx context.Context, id kernel.OrderID) (*order.Order, error)

	// FindStatusByID returns the current status from either index.
	FindStatusByID(ctx context.Context, id kernel.OrderID) (order.Status, error)
}
