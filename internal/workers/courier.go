package workers

import (
	"context"
	"fmt"
	"log/slog"

	"pizzeria/internal/core/domain/model/order"
	"pizzeria/internal/core/domain/model/pizza"
	"pizzeria/internal/core/domain/services"
	"pizzeria/internal/core/ports"
)

// Courier delivers pizzas in batches of up to its capacity.
type Courier struct {
	id        int
	capacity  int
	sampler   services.DeliveryTimeSampler
	warehouse ports.Warehouse
	repo      ports.OrderRepository
	logger    *slog.Logger
}

// NewCourier creates a courier that carries at most capacity pizzas per trip.
func NewCourier(
	id int,
	capacity int,
	sampler services.DeliveryTimeSampler,
	warehouse ports.Warehouse,
	repo ports.OrderRepository,
	logger *slog.Logger,
) *Courier {
	c := &Courier{
		id:        id,
		capacity:  capacity,
		sampler:   sampler,
		warehouse: warehouse,
		repo:      repo,
	}
	c.logger = logger.With("component", "courier", "worker", c.Name())
	return c
}

// Name identifies the courier in logs and shutdown reports.
func (c *Courier) Name() string {
	return fmt.Sprintf("courier-%d", c.id)
}

// Run delivers batches until ctx is done.
func (c *Courier) Run(ctx context.Context) {
	c.logger.InfoContext(ctx, "Courier started", "capacity", c.capacity)
	defer c.logger.InfoContext(ctx, "Courier stopped")

	if !c.sampler.Valid() {
		c.logger.WarnContext(ctx, "Invalid delivery time range, using the default",
			"default", services.DefaultDeliveryTime)
	}

	for ctx.Err() == nil {
		batch, err := c.warehouse.TakeUpTo(ctx, c.capacity)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.ErrorContext(ctx, "Failed to take pizzas from warehouse", "error", err)
			continue
		}

		if stop := c.deliver(ctx, batch); stop {
			return
		}
	}
}

// deliver runs one trip. It reports whether the loop must stop.
func (c *Courier) deliver(ctx context.Context, batch []pizza.Pizza) (stop bool) {
	var inDelivery []*order.Order

	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "Unexpected failure during delivery", "panic", r)
			c.discardAll(ctx, inDelivery)
			stop = ctx.Err() != nil
		}
	}()

	for _, p := range batch {
		if o := c.pickUp(ctx, p); o != nil {
			inDelivery = append(inDelivery, o)
		}
	}
	if len(inDelivery) == 0 {
		return false
	}

	trip := c.sampler.Sample()
	c.logger.InfoContext(ctx, "Delivery trip started", "orders", len(inDelivery), "trip_time", trip)
	if err := sleep(ctx, trip); err != nil {
		c.logger.WarnContext(ctx, "Delivery trip interrupted", "cause", err)
		c.discardAll(ctx, inDelivery)
		return true
	}

	for _, o := range inDelivery {
		logger := c.logger.With("order_id", o.ID().Int64())
		if !o.MoveToNext() {
			logger.WarnContext(ctx, "Order cannot become DELIVERED", "status", o.Status().String())
			continue
		}
		if err := persist(ctx, c.repo, o); err != nil {
			logger.ErrorContext(ctx, "Failed to persist DELIVERED", "error", err)
			continue
		}
		logger.InfoContext(ctx, "Order delivered")
	}
	return false
}

// pickUp resolves a pizza to its live order and moves it to DELIVERING.
// It returns nil when the pizza is dropped from the trip.
func (c *Courier) pickUp(ctx context.Context, p pizza.Pizza) *order.Order {
	logger := c.logger.With("order_id", p.OrderID().Int64())

	o, err := c.repo.GetOrderByID(ctx, p.OrderID())
	if err != nil {
		logger.WarnContext(ctx, "No live order for pizza, dropped", "error", err)
		return nil
	}

	if status := o.Status(); status != order.Cooked {
		logger.ErrorContext(ctx, "Order of picked up pizza is not COOKED", "status", status.String())
		discard(ctx, c.repo, o, logger)
		return nil
	}
	if !o.MoveToNext() {
		logger.ErrorContext(ctx, "Order cannot become DELIVERING", "status", o.Status().String())
		discard(ctx, c.repo, o, logger)
		return nil
	}
	if err = persist(ctx, c.repo, o); err != nil {
		logger.ErrorContext(ctx, "Failed to persist DELIVERING", "error", err)
		discard(ctx, c.repo, o, logger)
		return nil
	}

	logger.InfoContext(ctx, "Pizza picked up")
	return o
}

func (c *Courier) discardAll(ctx context.Context, orders []*order.Order) {
	for _, o := range orders {
		discard(ctx, c.repo, o, c.logger.With("order_id", o.ID().Int64()))
	}
}
