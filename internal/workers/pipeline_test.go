package workers_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pizzeria/internal/adapters/out/eventlog"
	"pizzeria/internal/core/domain/model/kernel"
	"pizzeria/internal/core/domain/model/order"
	"pizzeria/internal/core/ports"
	"pizzeria/internal/pkg/logging"
	"pizzeria/internal/workers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRepo(t *testing.T, path string) (*eventlog.FileOrderRepository, eventlog.RecoveryStats) {
	t.Helper()
	repo, err := eventlog.NewFileOrderRepository(eventlog.Config{Path: path}, logging.Discard())
	require.NoError(t, err)
	stats, err := repo.Open(t.Context())
	require.NoError(t, err)
	return repo, stats
}

func submit(ctx context.Context, t *testing.T, repo ports.OrderRepository, queue ports.OrderQueue, details string) kernel.OrderID {
	t.Helper()
	o, err := order.NewOrder(repo.NextID(), details)
	require.NoError(t, err)
	require.NoError(t, repo.AddOrder(ctx, o))
	require.NoError(t, queue.Put(ctx, o))
	return o.ID()
}

func TestPipeline_WarehouseBackpressure(t *testing.T) {
	// Given a warehouse with room for one pizza and two bakers
	repo, _ := openRepo(t, filepath.Join(t.TempDir(), "orders.log"))
	defer func() { require.NoError(t, repo.Close()) }()

	queue := newQueue(t, 4)
	warehouse := newWarehouse(t, 1)
	first := submit(t.Context(), t, repo, queue, "margherita")
	second := submit(t.Context(), t, repo, queue, "diavola")

	manager := workers.NewManager([]workers.Worker{
		workers.NewBaker(1, fastEstimator(t), queue, warehouse, repo, logging.Discard()),
		workers.NewBaker(2, fastEstimator(t), queue, warehouse, repo, logging.Discard()),
	}, logging.Discard())
	manager.Start(t.Context())
	defer func() { assert.Empty(t, manager.Stop()) }()

	// When both orders are cooked
	cooked := func(id kernel.OrderID) bool {
		status, err := repo.FindStatusByID(t.Context(), id)
		return err == nil && status == order.Cooked
	}
	require.Eventually(t, func() bool { return cooked(first) && cooked(second) }, waitFor, tick)

	// Then only one pizza fits, and a courier asking for two gets one
	assert.Equal(t, 1, warehouse.Size())
	batch, err := warehouse.TakeUpTo(t.Context(), 2)
	require.NoError(t, err)
	assert.Len(t, batch, 1)

	// And the waiting baker fills the freed slot
	require.Eventually(t, func() bool { return warehouse.Size() == 1 }, waitFor, tick)
	rest := warehouse.DrainAll()
	assert.ElementsMatch(t, []kernel.OrderID{first, second}, append(orderIDs(batch), orderIDs(rest)...))
}

func TestPipeline_EndToEnd(t *testing.T) {
	// Given
	path := filepath.Join(t.TempDir(), "orders.log")
	repo, _ := openRepo(t, path)

	queue := newQueue(t, 3)
	warehouse := newWarehouse(t, 2)
	manager := workers.NewManager([]workers.Worker{
		workers.NewBaker(1, fastEstimator(t), queue, warehouse, repo, logging.Discard()),
		workers.NewBaker(2, fixedEstimator(t, 2*time.Millisecond), queue, warehouse, repo, logging.Discard()),
		workers.NewCourier(1, 2, fixedSampler(t, time.Millisecond), warehouse, repo, logging.Discard()),
		workers.NewCourier(2, 1, fixedSampler(t, 2*time.Millisecond), warehouse, repo, logging.Discard()),
	}, logging.Discard())
	manager.Start(t.Context())

	// When
	ids := make([]kernel.OrderID, 0, 10)
	for range 10 {
		ids = append(ids, submit(t.Context(), t, repo, queue, "quattro stagioni"))
	}

	// Then every order is delivered
	require.Eventually(t, func() bool {
		for _, id := range ids {
			status, err := repo.FindStatusByID(t.Context(), id)
			if err != nil || status != order.Delivered {
				return false
			}
		}
		return true
	}, 5*time.Second, tick)

	assert.Empty(t, manager.Stop())
	require.NoError(t, repo.Close())

	// And a restart recovers the same picture
	recovered, stats := openRepo(t, path)
	defer func() { require.NoError(t, recovered.Close()) }()

	assert.Equal(t, 0, stats.Active)
	assert.Equal(t, 10, stats.Finalized)
	for _, id := range ids {
		status, err := recovered.FindStatusByID(t.Context(), id)
		require.NoError(t, err)
		assert.Equal(t, order.Delivered, status)
	}
	assert.Equal(t, ids[len(ids)-1]+1, recovered.NextID())
}
