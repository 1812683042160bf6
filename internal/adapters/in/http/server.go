package http

import (
	"errors"
	"log/slog"
	"net/http"

	"pizzeria/internal/core/application/usecases/commands"
	"pizzeria/internal/core/application/usecases/queries"
	"pizzeria/internal/core/domain/model/kernel"
	"pizzeria/internal/pkg/bounded"
	"pizzeria/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server handles the order API.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler commands.CreateOrderCommandHandler

	// Query handlers
	getOrderStatusHandler queries.GetOrderStatusQueryHandler

	logger *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	getOrderStatusHandler queries.GetOrderStatusQueryHandler,
	logger *slog.Logger,
) *Server {
	return &Server{
		createOrderHandler:    createOrderHandler,
		getOrderStatusHandler: getOrderStatusHandler,
		logger:                logger.With("component", "http"),
	}
}

// CreateOrder handles POST /api/v1/orders - accepts a new pizza order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var newOrder NewOrder
	if err := ctx.Bind(&newOrder); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := commands.NewCreateOrderCommand(newOrder.PizzaDetails)
	if err != nil {
		return s.respondError(ctx, err, "Invalid order data")
	}

	orderID, err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err, "Failed to create order")
	}

	return ctx.JSON(http.StatusCreated, OrderCreated{OrderID: orderID.Int64()})
}

// GetOrderStatus handles GET /api/v1/orders/:orderId - returns the order's status.
func (s *Server) GetOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.ParseOrderID(ctx.Param("orderId"))
	if err != nil {
		return s.respondError(ctx, err, "Invalid order id")
	}

	query, err := queries.NewGetOrderStatusQuery(orderID)
	if err != nil {
		return s.respondError(ctx, err, "Invalid order id")
	}

	resp, err := s.getOrderStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.respondError(ctx, err, "Failed to get order status")
	}

	return ctx.JSON(http.StatusOK, OrderStatus{
		OrderID: resp.OrderID.Int64(),
		Status:  resp.Status.String(),
	})
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}

func (s *Server) respondError(ctx echo.Context, err error, message string) error {
	code := statusCode(err)
	if code == http.StatusInternalServerError {
		s.logger.ErrorContext(ctx.Request().Context(), message, "error", err)
		return ctx.JSON(code, Error{Code: code, Message: message})
	}

	return ctx.JSON(code, Error{Code: code, Message: message + ": " + err.Error()})
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, commands.ErrNotAccepting),
		errors.Is(err, bounded.ErrCancelled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
