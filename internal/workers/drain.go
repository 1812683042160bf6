package workers

import (
	"context"
	"log/slog"

	"pizzeria/internal/core/domain/model/order"
	"pizzeria/internal/core/domain/model/pizza"
	"pizzeria/internal/core/ports"
)

// QueueDrainer empties the order queue without blocking.
type QueueDrainer interface {
	DrainAll() []*order.Order
}

// WarehouseDrainer empties the warehouse without blocking.
type WarehouseDrainer interface {
	DrainAll() []pizza.Pizza
}

// DiscardLeftovers empties queue and warehouse after the workers have stopped and
// discards every order found there, so a restart sees them as finalized instead
// of resuming them. It returns the number of orders discarded.
func DiscardLeftovers(
	ctx context.Context,
	queue QueueDrainer,
	warehouse WarehouseDrainer,
	repo ports.OrderRepository,
	logger *slog.Logger,
) int {
	logger = logger.With("component", "shutdown_drain")
	discarded := 0

	for _, o := range queue.DrainAll() {
		if discardLeftover(ctx, repo, o, logger) {
			discarded++
		}
	}

	for _, p := range warehouse.DrainAll() {
		o, err := repo.GetOrderByID(ctx, p.OrderID())
		if err != nil {
			logger.WarnContext(ctx, "No live order for leftover pizza", "order_id", p.OrderID().Int64(), "error", err)
			continue
		}
		if discardLeftover(ctx, repo, o, logger) {
			discarded++
		}
	}

	if discarded > 0 {
		logger.InfoContext(ctx, "Discarded orders left in the pipeline", "count", discarded)
	}
	return discarded
}

func discardLeftover(ctx context.Context, repo ports.OrderRepository, o *order.Order, logger *slog.Logger) bool {
	if o.Status().IsFinal() {
		return false
	}
	discard(ctx, repo, o, logger.With("order_id", o.ID().Int64()))
	return true
}
