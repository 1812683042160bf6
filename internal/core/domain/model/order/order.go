package order

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"pizzeria/internal/core/domain/model/kernel"
	"pizzeria/internal/pkg/errs"
	"pizzeria/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order is a pizza order travelling through the pipeline.
//
// Order follows these invariants:
//   - id and details never change after construction
//   - status only moves forward along the lifecycle, or to Discarded
//   - every status read and write happens under the order's own mutex, so
//     concurrent callers on one order are serialized while distinct orders never contend
//
// Orders are shared by pointer between the repository's active index and whichever
// worker currently holds them; never copy an Order by value.
type Order struct {
	mu sync.Mutex

	// id is assigned once by the repository
	id kernel.OrderID

	// details is the free-form pizza description supplied by the customer
	details string

	// status is the current lifecycle state, guarded by mu
	status Status

	guard guard.ConstructorGuard
}

// NewOrder creates an accepted order in Received status.
//
// Parameters:
//   - id: identifier issued by the repository (must be positive)
//   - details: pizza description (must not be blank)
//
// Example:
//
//	o, err := order.NewOrder(repo.NextID(), "margherita, extra basil")
//	if err != nil {
//	    // Handle validation error
//	}
func NewOrder(id kernel.OrderID, details string) (*Order, error) {
	return newOrder(id, details, Received)
}

// RestoreOrder rebuilds an order in an arbitrary status while replaying the event log.
// It is the only constructor that skips the lifecycle rules: the log is trusted as the
// record of transitions that already happened. Production code paths that create new
// orders must use NewOrder.
func RestoreOrder(id kernel.OrderID, details string, status Status) (*Order, error) {
	return newOrder(id, details, status)
}

func newOrder(id kernel.OrderID, details string, status Status) (*Order, error) {
	o := &Order{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setDetails(details),
		o.setStatus(status),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id == other.id
}

// ID returns the order's identifier.
func (o *Order) ID() kernel.OrderID {
	return o.id
}

// Details returns the pizza description.
func (o *Order) Details() string {
	return o.details
}

// Status returns a snapshot of the current status.
func (o *Order) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// MoveToNext applies the single forward transition defined for the current status.
// It returns false, leaving the order untouched, when the status is final or unknown.
func (o *Order) MoveToNext() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	next, err := o.status.Next()
	if err != nil {
		return false
	}
	o.status = next
	return true
}

// Discard moves the order to Discarded.
// It returns false when the order is already final: a delivered order is never
// rewritten as discarded, and discarding twice is a no-op.
func (o *Order) Discard() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status.IsFinal() {
		return false
	}
	o.status = Discarded
	return true
}

// String renders the order for logs.
func (o *Order) String() string {
	return fmt.Sprintf("Order(%s, %q, %s)", o.id, o.details, o.Status())
}

func (o *Order) setID(id kernel.OrderID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setDetails(details string) error {
	if strings.TrimSpace(details) == "" {
		return errs.NewValueIsRequiredError("pizza details")
	}
	o.details = details
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}
