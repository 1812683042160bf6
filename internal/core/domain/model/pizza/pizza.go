// Package pizza provides the Pizza value produced by bakers and carried by couriers.
package pizza

import (
	"errors"
	"fmt"

	"pizzeria/internal/core/domain/model/kernel"
	"pizzeria/internal/core/domain/model/order"
	"pizzeria/internal/pkg/guard"
)

// ErrPizzaIsNotConstructed is returned when a zero Pizza is validated.
var ErrPizzaIsNotConstructed = errors.New("Pizza must be created via FromOrder constructor")

// Pizza is an immutable snapshot of an order taken when cooking completes.
// It only carries what a courier needs to find the order again.
type Pizza struct { //nolint:recvcheck //using for validation
	orderID kernel.OrderID
	details string

	guard guard.ConstructorGuard
}

// FromOrder copies the identity and details of a cooked order.
func FromOrder(o *order.Order) (Pizza, error) {
	if err := o.Validate(); err != nil {
		return Pizza{}, err
	}
	return Pizza{
		orderID: o.ID(),
		details: o.Details(),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Pizza was created via FromOrder.
func (p Pizza) Validate() error {
	return p.guard.Validate(ErrPizzaIsNotConstructed)
}

// OrderID returns the identifier of the order the pizza was baked for.
func (p Pizza) OrderID() kernel.OrderID {
	return p.orderID
}

// Details returns the pizza description copied from the order.
func (p Pizza) Details() string {
	return p.details
}

// IsEqual compares pizzas by order identifier.
func (p Pizza) IsEqual(other Pizza) bool {
	return p.orderID == other.orderID
}

func (p Pizza) String() string {
	return fmt.Sprintf("Pizza(order %s, %q)", p.orderID, p.details)
}
