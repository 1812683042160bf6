package workers_test

import (
	"context"
	"testing"
	"time"

	"pizzeria/internal/core/domain/model/kernel"
	"pizzeria/internal/core/domain/model/order"
	"pizzeria/internal/core/domain/model/pizza"
	"pizzeria/internal/core/domain/services"
	"pizzeria/internal/pkg/bounded"
	"pizzeria/internal/workers"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) NextID() kernel.OrderID {
	args := m.Called()
	return args.Get(0).(kernel.OrderID)
}

func (m *MockOrderRepository) AddOrder(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) LogStatusUpdate(ctx context.Context, id kernel.OrderID, status order.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByID(ctx context.Context, id kernel.OrderID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) FindStatusByID(ctx context.Context, id kernel.OrderID) (order.Status, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(order.Status), args.Error(1)
}

func fastEstimator(t *testing.T) services.CookTimeEstimator {
	return fixedEstimator(t, time.Millisecond)
}

func fixedEstimator(t *testing.T, d time.Duration) services.CookTimeEstimator {
	t.Helper()
	base, err := services.NewDurationRange(d, d)
	require.NoError(t, err)

	e, err := services.NewCookTimeEstimator(services.CookTimeEstimatorConfig{
		BaseTime:        base,
		BaselineAverage: d,
		MinCookTime:     d,
	})
	require.NoError(t, err)
	return e
}

func fixedSampler(t *testing.T, d time.Duration) services.DeliveryTimeSampler {
	t.Helper()
	trip, err := services.NewDurationRange(d, d)
	require.NoError(t, err)
	return services.NewDeliveryTimeSampler(trip)
}

func newQueue(t *testing.T, capacity int) *bounded.Channel[*order.Order] {
	t.Helper()
	q, err := bounded.New[*order.Order](capacity)
	require.NoError(t, err)
	return q
}

func newWarehouse(t *testing.T, capacity int) *bounded.Channel[pizza.Pizza] {
	t.Helper()
	w, err := bounded.New[pizza.Pizza](capacity)
	require.NoError(t, err)
	return w
}

func newOrder(t *testing.T, id int64, status order.Status) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(kernel.OrderID(id), "margherita", status)
	require.NoError(t, err)
	return o
}

func newPizza(t *testing.T, o *order.Order) pizza.Pizza {
	t.Helper()
	p, err := pizza.FromOrder(o)
	require.NoError(t, err)
	return p
}

// start runs w in the background and returns a func that cancels it and waits
// for Run to return.
func start(t *testing.T, w workers.Worker) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s did not stop", w.Name())
		}
	}
}

func orderIDs(pizzas []pizza.Pizza) []kernel.OrderID {
	ids := make([]kernel.OrderID, 0, len(pizzas))
	for _, p := range pizzas {
		ids = append(ids, p.OrderID())
	}
	return ids
}
