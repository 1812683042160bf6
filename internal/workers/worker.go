package workers

import (
	"context"
	"log/slog"
	"time"

	"pizzeria/internal/core/domain/model/order"
	"pizzeria/internal/core/ports"
)

// Worker is a long-running loop owned by the Manager.
// Run must return soon after ctx is done.
type Worker interface {
	Name() string
	Run(ctx context.Context)
}

// persist records the order's current status.
func persist(ctx context.Context, repo ports.OrderRepository, o *order.Order) error {
	return repo.LogStatusUpdate(ctx, o.ID(), o.Status())
}

// discard moves o to DISCARDED and persists it, best effort. The write is not
// tied to ctx so that a cancelled worker still records what happened.
func discard(ctx context.Context, repo ports.OrderRepository, o *order.Order, logger *slog.Logger) {
	if !o.Discard() {
		logger.WarnContext(ctx, "Order already in a final state, nothing to discard", "status", o.Status().String())
		return
	}

	if err := repo.LogStatusUpdate(context.WithoutCancel(ctx), o.ID(), order.Discarded); err != nil {
		logger.ErrorContext(ctx, "Failed to persist DISCARDED", "error", err)
		return
	}
	logger.InfoContext(ctx, "Order discarded")
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-timer.C:
		return nil
	}
}
