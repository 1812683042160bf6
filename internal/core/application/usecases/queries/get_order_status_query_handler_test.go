package queries_test

import (
	"context"
	"errors"
	"testing"

	"pizzeria/internal/core/application/usecases/queries"
	"pizzeria/internal/core/domain/model/kernel"
	"pizzeria/internal/core/domain/model/order"
	"pizzeria/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) NextID() kernel.OrderID { return 0 }
func (m *MockOrderRepository) AddOrder(_ context.Context, _ *order.Order) error {
	return errors.New("not implemented in mock")
}
func (m *MockOrderRepository) LogStatusUpdate(_ context.Context, _ kernel.OrderID, _ order.Status) error {
	return errors.New("not implemented in mock")
}
func (m *MockOrderRepository) GetOrderByID(_ context.Context, _ kernel.OrderID) (*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}

func (m *MockOrderRepository) FindStatusByID(ctx context.Context, id kernel.OrderID) (order.Status, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(order.Status), args.Error(1)
}

func TestGetOrderStatusQueryHandler_Handle(t *testing.T) {
	t.Run("returns the repository status", func(t *testing.T) {
		// Given
		ctx := t.Context()
		repo := new(MockOrderRepository)
		repo.On("FindStatusByID", ctx, kernel.OrderID(3)).Return(order.Delivering, nil).Once()
		h := queries.NewGetOrderStatusQueryHandler(repo)
		q, _ := queries.NewGetOrderStatusQuery(3)

		// When
		resp, err := h.Handle(ctx, q)

		// Then
		require.NoError(t, err)
		assert.Equal(t, queries.GetOrderStatusQueryResponse{OrderID: 3, Status: order.Delivering}, resp)
		repo.AssertExpectations(t)
	})

	t.Run("propagates not found", func(t *testing.T) {
		ctx := t.Context()
		repo := new(MockOrderRepository)
		repo.On("FindStatusByID", ctx, kernel.OrderID(9)).
			Return(order.Unknown, errs.NewObjectNotFoundError("orderId", kernel.OrderID(9))).Once()
		h := queries.NewGetOrderStatusQueryHandler(repo)
		q, _ := queries.NewGetOrderStatusQuery(9)

		_, err := h.Handle(ctx, q)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("rejects a zero value query", func(t *testing.T) {
		repo := new(MockOrderRepository)
		h := queries.NewGetOrderStatusQueryHandler(repo)

		_, err := h.Handle(t.Context(), queries.GetOrderStatusQuery{})

		require.ErrorIs(t, err, queries.ErrGetOrderStatusQueryIsNotConstructed)
		repo.AssertNotCalled(t, "FindStatusByID", mock.Anything, mock.Anything)
	})
}
