package ports

import (
	"context"

	"pizzeria/internal/core/domain/model/order"
	"pizzeria/internal/core/domain/model/pizza"
)

// OrderQueue carries accepted orders from the acceptor to the bakers.
// Implemented by *bounded.Channel[*order.Order].
type OrderQueue interface {
	Put(ctx context.Context, o *order.Order) error
	Take(ctx context.Context) (*order.Order, error)
}

// Warehouse carries finished pizzas from the bakers to the couriers.
// Implemented by *bounded.Channel[pizza.Pizza].
type Warehouse interface {
	Put(ctx context.Context, p pizza.Pizza) error
	TakeUpTo(ctx context.Context, maxAmount int) ([]pizza.Pizza, error)
}
