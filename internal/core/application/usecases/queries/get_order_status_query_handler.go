package queries

import (
	"context"

	"pizzeria/internal/core/ports"
)

// GetOrderStatusQueryHandler reads order statuses from the repository. It sees
// orders in flight and orders that already reached a final state.
type GetOrderStatusQueryHandler struct {
	repo ports.OrderRepository
}

// NewGetOrderStatusQueryHandler creates a handler backed by repo.
func NewGetOrderStatusQueryHandler(repo ports.OrderRepository) GetOrderStatusQueryHandler {
	return GetOrderStatusQueryHandler{repo: repo}
}

// Handle returns the order's current status, or ObjectNotFoundError for ids that
// were never issued.
func (h GetOrderStatusQueryHandler) Handle(
	ctx context.Context,
	query GetOrderStatusQuery,
) (GetOrderStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	status, err := h.repo.FindStatusByID(ctx, query.OrderID())
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	return GetOrderStatusQueryResponse{
		OrderID: query.OrderID(),
		Status:  status,
	}, nil
}
