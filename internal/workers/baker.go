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

// Baker turns queued orders into pizzas.
//
// For every order it:
//  1. moves RECEIVED -> COOKING and persists it
//  2. sleeps for the estimated cook time
//  3. moves COOKING -> COOKED and persists it
//  4. puts the pizza into the warehouse, waiting for space if needed
//
// COOKED is made durable before the pizza becomes visible, so a courier never
// finds a pizza whose order could still be discarded for a COOKED write failure.
type Baker struct {
	id        int
	estimator services.CookTimeEstimator
	queue     ports.OrderQueue
	warehouse ports.Warehouse
	repo      ports.OrderRepository
	logger    *slog.Logger
}

// NewBaker creates a baker with the given cook time estimator.
func NewBaker(
	id int,
	estimator services.CookTimeEstimator,
	queue ports.OrderQueue,
	warehouse ports.Warehouse,
	repo ports.OrderRepository,
	logger *slog.Logger,
) *Baker {
	b := &Baker{
		id:        id,
		estimator: estimator,
		queue:     queue,
		warehouse: warehouse,
		repo:      repo,
	}
	b.logger = logger.With("component", "baker", "worker", b.Name())
	return b
}

// Name identifies the baker in logs and shutdown reports.
func (b *Baker) Name() string {
	return fmt.Sprintf("baker-%d", b.id)
}

// Run processes orders until ctx is done.
func (b *Baker) Run(ctx context.Context) {
	b.logger.InfoContext(ctx, "Baker started", "mastery_factor", b.estimator.MasteryFactor())
	defer b.logger.InfoContext(ctx, "Baker stopped")

	for ctx.Err() == nil {
		o, err := b.queue.Take(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.ErrorContext(ctx, "Failed to take order from queue", "error", err)
			continue
		}

		if stop := b.bake(ctx, o); stop {
			return
		}
	}
}

// bake runs one order through the kitchen. It reports whether the loop must stop.
func (b *Baker) bake(ctx context.Context, o *order.Order) (stop bool) {
	logger := b.logger.With("order_id", o.ID().Int64())

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Unexpected failure while baking", "panic", r)
			discard(ctx, b.repo, o, logger)
			stop = ctx.Err() != nil
		}
	}()

	logger.InfoContext(ctx, "Order taken from queue")

	if !o.MoveToNext() {
		logger.WarnContext(ctx, "Order cannot start cooking, skipped", "status", o.Status().String())
		discard(ctx, b.repo, o, logger)
		return false
	}
	if err := persist(ctx, b.repo, o); err != nil {
		logger.ErrorContext(ctx, "Failed to persist COOKING", "error", err)
		discard(ctx, b.repo, o, logger)
		return false
	}

	cookTime := b.estimator.Estimate(o.Details())
	logger.InfoContext(ctx, "Cooking started", "cook_time", cookTime)
	if err := sleep(ctx, cookTime); err != nil {
		logger.WarnContext(ctx, "Cooking interrupted", "cause", err)
		discard(ctx, b.repo, o, logger)
		return true
	}

	p, err := pizza.FromOrder(o)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to build pizza", "error", err)
		discard(ctx, b.repo, o, logger)
		return false
	}

	if !o.MoveToNext() {
		logger.ErrorContext(ctx, "Order cannot become COOKED", "status", o.Status().String())
		discard(ctx, b.repo, o, logger)
		return false
	}
	if err = persist(ctx, b.repo, o); err != nil {
		logger.ErrorContext(ctx, "Failed to persist COOKED", "error", err)
		discard(ctx, b.repo, o, logger)
		return false
	}

	if err = b.warehouse.Put(ctx, p); err != nil {
		logger.WarnContext(ctx, "Gave up waiting for warehouse space", "error", err)
		discard(ctx, b.repo, o, logger)
		return ctx.Err() != nil
	}

	logger.InfoContext(ctx, "Pizza placed in warehouse")
	return false
}
