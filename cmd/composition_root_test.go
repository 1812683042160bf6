package cmd_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pizzeria/cmd"
	"pizzeria/internal/adapters/out/eventlog"
	"pizzeria/internal/core/domain/model/kernel"
	"pizzeria/internal/core/domain/model/order"
	"pizzeria/internal/core/domain/services"
	"pizzeria/internal/pkg/logging"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, cookTime time.Duration) cmd.Config {
	t.Helper()
	cfg := cmd.DefaultConfig()
	cfg.QueueCapacity = 2
	cfg.WarehouseCapacity = 2
	cfg.Bakers = []cmd.BakerConfig{{CookTime: services.DurationRange{Min: cookTime, Max: cookTime}}}
	cfg.Couriers = []cmd.CourierConfig{{Capacity: 2, DeliveryTime: services.DurationRange{Min: time.Millisecond, Max: time.Millisecond}}}
	cfg.IngredientMultiplier = 0
	cfg.BaselineAverageCookTime = cookTime
	cfg.MinCookTime = time.Millisecond
	cfg.EventLogPath = filepath.Join(t.TempDir(), "orders.log")
	cfg.WorkerStopGrace = time.Second
	return cfg
}

func postOrder(t *testing.T, router *echo.Echo, details string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequestWithContext(t.Context(), http.MethodPost, "/api/v1/orders",
		strings.NewReader(`{"pizzaDetails":"`+details+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func reopen(t *testing.T, path string) *eventlog.FileOrderRepository {
	t.Helper()
	repo, err := eventlog.NewFileOrderRepository(eventlog.Config{Path: path}, logging.Discard())
	require.NoError(t, err)
	_, err = repo.Open(t.Context())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestNewCompositionRoot_RejectsInvalidConfig(t *testing.T) {
	cfg := cmd.DefaultConfig()
	cfg.QueueCapacity = 0

	_, err := cmd.NewCompositionRoot(cfg, logging.Discard())

	require.Error(t, err)
}

func TestCompositionRoot_DeliversOrders(t *testing.T) {
	// Given
	cfg := testConfig(t, time.Millisecond)
	app, err := cmd.NewCompositionRoot(cfg, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, app.Start(t.Context()))

	// When
	for _, details := range []string{"margherita", "diavola", "funghi"} {
		require.Equal(t, http.StatusCreated, postOrder(t, app.Router(), details).Code)
	}

	// Then
	require.Eventually(t, func() bool {
		for id := kernel.OrderID(1); id <= 3; id++ {
			status, err := app.Repository().FindStatusByID(t.Context(), id)
			if err != nil || status != order.Delivered {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, app.Shutdown(t.Context()))

	repo := reopen(t, cfg.EventLogPath)
	active, finalized := repo.Counts()
	assert.Equal(t, 0, active)
	assert.Equal(t, 3, finalized)
}

func TestCompositionRoot_ShutdownDiscardsUnfinishedOrders(t *testing.T) {
	// Given a baker that never finishes in time
	cfg := testConfig(t, time.Minute)
	app, err := cmd.NewCompositionRoot(cfg, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, app.Start(t.Context()))

	for _, details := range []string{"margherita", "diavola", "funghi"} {
		require.Equal(t, http.StatusCreated, postOrder(t, app.Router(), details).Code)
	}
	require.Eventually(t, func() bool {
		status, err := app.Repository().FindStatusByID(t.Context(), 1)
		return err == nil && status == order.Cooking
	}, 2*time.Second, 10*time.Millisecond)

	// When
	require.NoError(t, app.Shutdown(t.Context()))

	// Then intake is closed
	assert.Equal(t, http.StatusServiceUnavailable, postOrder(t, app.Router(), "late").Code)

	// And every order is finalized on disk
	repo := reopen(t, cfg.EventLogPath)
	for id := kernel.OrderID(1); id <= 3; id++ {
		status, err := repo.FindStatusByID(t.Context(), id)
		require.NoError(t, err)
		assert.Equal(t, order.Discarded, status, id.String())
	}
}
