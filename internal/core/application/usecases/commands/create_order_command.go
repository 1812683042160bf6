package commands

import (
	"errors"
	"strings"

	"pizzeria/internal/pkg/errs"
	"pizzeria/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
)

// CreateOrderCommand represents a customer's request for a pizza.
// The order identifier is not part of the command: the repository issues it.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand("margherita, extra basil")
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	orderID, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
//	fmt.Printf("Order %s queued for the kitchen", orderID)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	pizzaDetails string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command for a pizza described by pizzaDetails.
// Returns ValueIsRequiredError when the description is blank.
func NewCreateOrderCommand(pizzaDetails string) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setPizzaDetails(pizzaDetails); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// PizzaDetails returns the free-form pizza description.
func (c CreateOrderCommand) PizzaDetails() string {
	return c.pizzaDetails
}

func (c *CreateOrderCommand) setPizzaDetails(pizzaDetails string) error {
	if strings.TrimSpace(pizzaDetails) == "" {
		return errs.NewValueIsRequiredError("pizzaDetails")
	}

	c.pizzaDetails = pizzaDetails
	return nil
}
