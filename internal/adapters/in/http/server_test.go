package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	httpin "pizzeria/internal/adapters/in/http"
	"pizzeria/internal/adapters/out/eventlog"
	"pizzeria/internal/core/application/usecases/commands"
	"pizzeria/internal/core/application/usecases/queries"
	"pizzeria/internal/core/domain/model/order"
	"pizzeria/internal/pkg/bounded"
	"pizzeria/internal/pkg/logging"
	"pizzeria/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type ServerTestSuite struct {
	suite.Suite
	repo     *eventlog.FileOrderRepository
	queue    *bounded.Channel[*order.Order]
	acceptor commands.CreateOrderCommandHandler
	router   *echo.Echo
}

func TestServer(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	repo, err := eventlog.NewFileOrderRepository(
		eventlog.Config{Path: filepath.Join(s.T().TempDir(), "orders.log")},
		logging.Discard(),
	)
	s.Require().NoError(err)
	_, err = repo.Open(s.T().Context())
	s.Require().NoError(err)
	s.repo = repo

	s.queue, err = bounded.New[*order.Order](2)
	s.Require().NoError(err)

	m := metrics.New()
	s.acceptor = commands.NewCreateOrderCommandHandler(s.repo, s.queue, logging.Discard(), m)
	server := httpin.NewServer(s.acceptor, queries.NewGetOrderStatusQueryHandler(s.repo), logging.Discard())
	s.router = httpin.NewRouter(server, m.Handler(), logging.Discard())
}

func (s *ServerTestSuite) TearDownTest() {
	s.Require().NoError(s.repo.Close())
}

func (s *ServerTestSuite) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) postOrder(ctx context.Context, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequestWithContext(ctx, http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return s.do(req)
}

func (s *ServerTestSuite) getStatus(id string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequestWithContext(s.T().Context(), http.MethodGet, "/api/v1/orders/"+id, nil))
}

func (s *ServerTestSuite) decodeError(rec *httptest.ResponseRecorder) httpin.Error {
	var body httpin.Error
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *ServerTestSuite) TestCreateOrder() {
	// When
	rec := s.postOrder(s.T().Context(), `{"pizzaDetails":"margherita"}`)

	// Then
	s.Equal(http.StatusCreated, rec.Code)
	s.JSONEq(`{"orderId":1}`, rec.Body.String())
	s.Equal(1, s.queue.Size())
	s.NotEmpty(rec.Header().Get(echo.HeaderXRequestID))
}

func (s *ServerTestSuite) TestCreateOrder_BlankDetails() {
	rec := s.postOrder(s.T().Context(), `{"pizzaDetails":"  "}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(http.StatusBadRequest, s.decodeError(rec).Code)
	s.True(s.queue.IsEmpty())
}

func (s *ServerTestSuite) TestCreateOrder_MalformedBody() {
	rec := s.postOrder(s.T().Context(), `{"pizzaDetails":`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Invalid request body", s.decodeError(rec).Message)
}

func (s *ServerTestSuite) TestCreateOrder_NotAccepting() {
	s.acceptor.StopAccepting()

	rec := s.postOrder(s.T().Context(), `{"pizzaDetails":"margherita"}`)

	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal(http.StatusServiceUnavailable, s.decodeError(rec).Code)
}

func (s *ServerTestSuite) TestCreateOrder_CancelledWhileQueueIsFull() {
	// Given a full queue
	s.Equal(http.StatusCreated, s.postOrder(s.T().Context(), `{"pizzaDetails":"a"}`).Code)
	s.Equal(http.StatusCreated, s.postOrder(s.T().Context(), `{"pizzaDetails":"b"}`).Code)

	ctx, cancel := context.WithCancel(s.T().Context())
	cancel()

	// When
	rec := s.postOrder(ctx, `{"pizzaDetails":"c"}`)

	// Then the order was logged and then discarded
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	status := s.getStatus("3")
	s.Equal(http.StatusOK, status.Code)
	s.JSONEq(`{"orderId":3,"status":"DISCARDED"}`, status.Body.String())
}

func (s *ServerTestSuite) TestGetOrderStatus() {
	s.Require().Equal(http.StatusCreated, s.postOrder(s.T().Context(), `{"pizzaDetails":"diavola"}`).Code)

	rec := s.getStatus("1")

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"orderId":1,"status":"RECEIVED"}`, rec.Body.String())
}

func (s *ServerTestSuite) TestGetOrderStatus_InvalidID() {
	for _, id := range []string{"abc", "0", "-4"} {
		rec := s.getStatus(id)
		s.Equal(http.StatusBadRequest, rec.Code, id)
	}
}

func (s *ServerTestSuite) TestGetOrderStatus_Unknown() {
	rec := s.getStatus("99")

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(http.StatusNotFound, s.decodeError(rec).Code)
}

func (s *ServerTestSuite) TestHealth() {
	rec := s.do(httptest.NewRequestWithContext(s.T().Context(), http.MethodGet, "/health", nil))

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Healthy", rec.Body.String())
}

func (s *ServerTestSuite) TestMetrics() {
	s.Require().Equal(http.StatusCreated, s.postOrder(s.T().Context(), `{"pizzaDetails":"margherita"}`).Code)

	rec := s.do(httptest.NewRequestWithContext(s.T().Context(), http.MethodGet, "/metrics", nil))

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "pizzeria_orders_accepted_total 1")
}
