package kernel

import (
	"fmt"
	"math"
	"strconv"

	"pizzeria/internal/pkg/errs"
)

// ErrOrderIDIsNotConstructed is returned when a zero OrderID is validated.
// Order identifiers start at 1; zero means the value was never assigned.
var ErrOrderIDIsNotConstructed = errs.NewValueIsRequiredError(
	"order ID must be created via NewOrderID or ParseOrderID")

// OrderID is the identifier assigned to an order by the order repository.
// It is a positive, immutable integer; identifiers are never reused.
//
// Example:
//
//	id, err := kernel.NewOrderID(42)
//	if err != nil {
//	    // handle invalid identifier
//	}
//	fmt.Println(id) // Output: 42
type OrderID int64

// NewOrderID validates and wraps a raw identifier.
//
// Returns:
//   - OrderID: the identifier when value is positive
//   - error: ValueIsOutOfRangeError for zero or negative values
func NewOrderID(value int64) (OrderID, error) {
	id := OrderID(value)
	if err := id.Validate(); err != nil {
		return 0, err
	}
	return id, nil
}

// ParseOrderID parses the decimal form used in URLs and log records.
func ParseOrderID(raw string) (OrderID, error) {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause("order ID", fmt.Errorf("%q is not an integer", raw))
	}
	return NewOrderID(value)
}

// Validate reports whether the identifier is usable.
func (id OrderID) Validate() error {
	if id == 0 {
		return ErrOrderIDIsNotConstructed
	}
	if id < 0 {
		return errs.NewValueIsOutOfRangeError("order ID", int64(id), 1, int64(math.MaxInt64))
	}
	return nil
}

// Int64 returns the raw identifier.
func (id OrderID) Int64() int64 {
	return int64(id)
}

// String implements fmt.Stringer.
func (id OrderID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
