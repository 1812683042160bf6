package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"pizzeria/internal/core/domain/model/kernel"
	"pizzeria/internal/core/domain/model/order"
	"pizzeria/internal/core/ports"
	"pizzeria/internal/pkg/metrics"
)

// ErrNotAccepting is returned once the pizzeria has stopped taking orders.
var ErrNotAccepting = errors.New("pizzeria is not accepting orders")

// Rejection reasons reported to metrics.
const (
	RejectedNotAccepting = "not_accepting"
	RejectedPersistence  = "persistence"
	RejectedCancelled    = "cancelled"
)

// CreateOrderCommandHandler accepts orders into the pipeline.
//
// For every command it allocates an identifier, logs the CREATE record and then
// puts the order into the queue, waiting for a free slot if the queue is full.
// An order whose put is cancelled has already been logged, so it is discarded
// and DISCARDED is logged too.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(repo, queue, logger, m)
//	cmd, _ := NewCreateOrderCommand("quattro formaggi")
//
//	orderID, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrNotAccepting) {
//	    // shutting down
//	}
//
// Copies of the handler share the accepting flag.
type CreateOrderCommandHandler struct {
	repo      ports.OrderRepository
	queue     ports.OrderQueue
	accepting *atomic.Bool
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewCreateOrderCommandHandler creates a handler that starts out accepting orders.
// m may be nil.
func NewCreateOrderCommandHandler(
	repo ports.OrderRepository,
	queue ports.OrderQueue,
	logger *slog.Logger,
	m *metrics.Metrics,
) CreateOrderCommandHandler {
	accepting := &atomic.Bool{}
	accepting.Store(true)

	return CreateOrderCommandHandler{
		repo:      repo,
		queue:     queue,
		accepting: accepting,
		logger:    logger.With("component", "order_acceptor"),
		metrics:   m,
	}
}

// Handle registers and queues a new order and returns its identifier.
//
// Returns:
//   - ErrNotAccepting after StopAccepting
//   - the repository error if the CREATE record cannot be written
//   - an error matching bounded.ErrCancelled if ctx is done while the queue is full
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (kernel.OrderID, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	if !h.accepting.Load() {
		h.metrics.RecordOrderRejected(RejectedNotAccepting)
		return 0, ErrNotAccepting
	}

	o, err := order.NewOrder(h.repo.NextID(), cmd.PizzaDetails())
	if err != nil {
		return 0, err
	}

	if err = h.repo.AddOrder(ctx, o); err != nil {
		h.metrics.RecordOrderRejected(RejectedPersistence)
		return 0, fmt.Errorf("failed to register order: %w", err)
	}

	logger := h.logger.With("order_id", o.ID().Int64())
	if err = h.queue.Put(ctx, o); err != nil {
		logger.WarnContext(ctx, "Order could not be queued", "error", err)
		h.discard(ctx, o, logger)
		h.metrics.RecordOrderRejected(RejectedCancelled)
		return 0, err
	}

	h.metrics.RecordOrderAccepted()
	logger.InfoContext(ctx, "Order accepted", "pizza_details", o.Details())
	return o.ID(), nil
}

// StopAccepting makes every later Handle call fail with ErrNotAccepting.
// Calls already waiting for queue space are not affected.
func (h CreateOrderCommandHandler) StopAccepting() {
	if h.accepting.CompareAndSwap(true, false) {
		h.logger.Info("Stopped accepting orders")
	}
}

// IsAccepting reports whether new orders are taken.
func (h CreateOrderCommandHandler) IsAccepting() bool {
	return h.accepting.Load()
}

func (h CreateOrderCommandHandler) discard(ctx context.Context, o *order.Order, logger *slog.Logger) {
	if !o.Discard() {
		return
	}
	if err := h.repo.LogStatusUpdate(context.WithoutCancel(ctx), o.ID(), order.Discarded); err != nil {
		logger.ErrorContext(ctx, "Failed to persist DISCARDED", "error", err)
		return
	}
	logger.InfoContext(ctx, "Order discarded")
}
