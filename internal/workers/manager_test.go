package workers_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pizzeria/internal/pkg/logging"
	"pizzeria/internal/pkg/metrics"
	"pizzeria/internal/workers"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingWorker struct {
	name    string
	started atomic.Int32
	cause   atomic.Value
}

func (w *blockingWorker) Name() string { return w.name }

func (w *blockingWorker) Run(ctx context.Context) {
	w.started.Add(1)
	<-ctx.Done()
	w.cause.Store(context.Cause(ctx))
}

type stubbornWorker struct {
	release chan struct{}
}

func (w *stubbornWorker) Name() string { return "stubborn" }

func (w *stubbornWorker) Run(context.Context) {
	<-w.release
}

type panickingWorker struct{}

func (panickingWorker) Name() string { return "panicking" }

func (panickingWorker) Run(context.Context) {
	panic("oven exploded")
}

func TestManager_StartAndStop(t *testing.T) {
	// Given
	a := &blockingWorker{name: "a"}
	b := &blockingWorker{name: "b"}
	m := metrics.New()
	manager := workers.NewManager([]workers.Worker{a, b}, logging.Discard(), workers.WithMetrics(m))

	// When
	manager.Start(t.Context())
	require.Eventually(t, func() bool { return manager.ActiveCount() == 2 }, waitFor, tick)
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(`
# HELP pizzeria_workers_active Number of worker goroutines currently running.
# TYPE pizzeria_workers_active gauge
pizzeria_workers_active 2
`), "pizzeria_workers_active"))

	stuck := manager.Stop()

	// Then
	assert.Empty(t, stuck)
	assert.Equal(t, 0, manager.ActiveCount())
	assert.Equal(t, workers.ErrStopping, a.cause.Load())
	assert.Equal(t, workers.ErrStopping, b.cause.Load())
}

func TestManager_StartIsIdempotent(t *testing.T) {
	w := &blockingWorker{name: "a"}
	manager := workers.NewManager([]workers.Worker{w}, logging.Discard())

	manager.Start(t.Context())
	manager.Start(t.Context())
	require.Eventually(t, func() bool { return manager.ActiveCount() == 1 }, waitFor, tick)

	assert.Empty(t, manager.Stop())
	assert.Equal(t, int32(1), w.started.Load())
}

func TestManager_StopWithoutStart(t *testing.T) {
	manager := workers.NewManager(nil, logging.Discard())
	assert.Nil(t, manager.Stop())
}

func TestManager_ReportsWorkersThatDoNotStop(t *testing.T) {
	// Given a worker that ignores cancellation
	stubborn := &stubbornWorker{release: make(chan struct{})}
	defer close(stubborn.release)
	polite := &blockingWorker{name: "polite"}
	manager := workers.NewManager(
		[]workers.Worker{stubborn, polite},
		logging.Discard(),
		workers.WithGracePeriod(50*time.Millisecond),
	)
	manager.Start(t.Context())
	require.Eventually(t, func() bool { return manager.ActiveCount() == 2 }, waitFor, tick)

	// When
	stuck := manager.Stop()

	// Then
	assert.Equal(t, []string{"stubborn"}, stuck)
	assert.Equal(t, 1, manager.ActiveCount())
}

func TestManager_SurvivesPanickingWorker(t *testing.T) {
	manager := workers.NewManager([]workers.Worker{panickingWorker{}}, logging.Discard())

	manager.Start(t.Context())
	require.Eventually(t, func() bool { return manager.ActiveCount() == 0 }, waitFor, tick)

	assert.Empty(t, manager.Stop())
}

func TestManager_StopsWhenParentContextIsDone(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	w := &blockingWorker{name: "a"}
	manager := workers.NewManager([]workers.Worker{w}, logging.Discard())

	manager.Start(ctx)
	require.Eventually(t, func() bool { return w.started.Load() == 1 }, waitFor, tick)
	cancel()

	require.Eventually(t, func() bool { return manager.ActiveCount() == 0 }, waitFor, tick)
	assert.Empty(t, manager.Stop())
}
