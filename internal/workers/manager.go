package workers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"pizzeria/internal/pkg/metrics"

	"github.com/google/uuid"
)

// DefaultGracePeriod is how long Stop waits for each worker to exit.
const DefaultGracePeriod = 2 * time.Second

// ErrStopping is the cancellation cause workers observe when Manager.Stop is called.
var ErrStopping = errors.New("workers are stopping")

// Manager runs a fixed set of workers, one goroutine each.
type Manager struct {
	workers     []Worker
	gracePeriod time.Duration
	logger      *slog.Logger
	metrics     *metrics.Metrics

	mu      sync.Mutex
	runID   string
	cancel  context.CancelCauseFunc
	done    []chan struct{}
	running atomic.Int64
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithGracePeriod overrides DefaultGracePeriod. Non-positive values are ignored.
func WithGracePeriod(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.gracePeriod = d
		}
	}
}

// WithMetrics reports the number of running workers.
func WithMetrics(mt *metrics.Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// NewManager creates a manager for workers. Nothing runs until Start.
func NewManager(workers []Worker, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		workers:     workers,
		gracePeriod: DefaultGracePeriod,
		logger:      logger.With("component", "worker_manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches every worker. Calling Start on a running manager does nothing.
// Workers stop when ctx is done or when Stop is called.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.logger.WarnContext(ctx, "Workers already started", "run_id", m.runID)
		return
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	m.cancel = cancel
	m.runID = uuid.NewString()
	m.done = make([]chan struct{}, len(m.workers))

	for i, w := range m.workers {
		done := make(chan struct{})
		m.done[i] = done
		m.track(1)
		go m.run(runCtx, w, done)
	}

	m.logger.InfoContext(ctx, "Workers started", "run_id", m.runID, "count", len(m.workers))
}

// Stop cancels all workers and waits up to the grace period for each of them.
// It returns the names of workers that were still running when their wait expired.
// Stop on a manager that is not running returns nil.
func (m *Manager) Stop() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel == nil {
		return nil
	}
	m.cancel(ErrStopping)
	m.cancel = nil

	var stuck []string
	for i, w := range m.workers {
		timer := time.NewTimer(m.gracePeriod)
		select {
		case <-m.done[i]:
		case <-timer.C:
			stuck = append(stuck, w.Name())
		}
		timer.Stop()
	}

	if len(stuck) > 0 {
		m.logger.Error("Workers did not stop in time", "run_id", m.runID, "workers", stuck)
	} else {
		m.logger.Info("Workers stopped", "run_id", m.runID)
	}
	return stuck
}

// ActiveCount returns how many worker goroutines are currently running.
func (m *Manager) ActiveCount() int {
	return int(m.running.Load())
}

func (m *Manager) run(ctx context.Context, w Worker, done chan struct{}) {
	defer close(done)
	defer m.track(-1)
	defer func() {
		if r := recover(); r != nil {
			m.logger.ErrorContext(ctx, "Worker crashed", "worker", w.Name(), "panic", r)
		}
	}()

	w.Run(ctx)
}

func (m *Manager) track(delta int64) {
	m.metrics.SetActiveWorkers(int(m.running.Add(delta)))
}
