package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpin "pizzeria/internal/adapters/in/http"
	"pizzeria/internal/adapters/out/eventlog"
	"pizzeria/internal/core/application/usecases/commands"
	"pizzeria/internal/core/application/usecases/queries"
	"pizzeria/internal/core/domain/model/order"
	"pizzeria/internal/core/domain/model/pizza"
	"pizzeria/internal/core/domain/services"
	"pizzeria/internal/jobs"
	"pizzeria/internal/pkg/bounded"
	"pizzeria/internal/pkg/metrics"
	"pizzeria/internal/workers"

	"github.com/labstack/echo/v4"
)

// CompositionRoot owns every long-lived component and the order in which they
// start and stop.
type CompositionRoot struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	repo      *eventlog.FileOrderRepository
	queue     *bounded.Channel[*order.Order]
	warehouse *bounded.Channel[pizza.Pizza]

	acceptor   commands.CreateOrderCommandHandler
	workers    *workers.Manager
	jobManager *jobs.JobManager
	router     *echo.Echo
}

// NewCompositionRoot wires the application. Nothing touches the disk or starts
// a goroutine until Start.
func NewCompositionRoot(cfg Config, logger *slog.Logger) (*CompositionRoot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		cfg:     cfg,
		logger:  logger.With("component", "app"),
		metrics: metrics.New(),
	}

	var err error
	c.repo, err = eventlog.NewFileOrderRepository(
		eventlog.Config{Path: cfg.EventLogPath, MaxLogSizeBytes: cfg.EventLogMaxSizeBytes},
		logger,
		eventlog.WithMetrics(c.metrics),
	)
	if err != nil {
		return nil, err
	}

	c.queue, err = bounded.New[*order.Order](
		cfg.QueueCapacity,
		bounded.WithRecorder(c.metrics.ChannelRecorder(metrics.ChannelQueue)),
	)
	if err != nil {
		return nil, fmt.Errorf("order queue: %w", err)
	}

	c.warehouse, err = bounded.New[pizza.Pizza](
		cfg.WarehouseCapacity,
		bounded.WithRecorder(c.metrics.ChannelRecorder(metrics.ChannelWarehouse)),
	)
	if err != nil {
		return nil, fmt.Errorf("warehouse: %w", err)
	}

	staff, err := c.createWorkers(logger)
	if err != nil {
		return nil, err
	}
	c.workers = workers.NewManager(staff, logger,
		workers.WithGracePeriod(cfg.WorkerStopGrace),
		workers.WithMetrics(c.metrics),
	)

	c.acceptor = c.CreateCreateOrderCommandHandler(logger)
	c.jobManager = jobs.NewJobManager(
		jobs.NewPipelineReportJob(cfg.ReportSchedule, c.queue, c.warehouse, c.workers, c.repo, logger),
		jobs.NewEventLogSyncJob(cfg.SyncSchedule, c.repo, logger),
	)

	server := httpin.NewServer(c.acceptor, c.CreateGetOrderStatusQueryHandler(), logger)
	c.router = httpin.NewRouter(server, c.metrics.Handler(), logger)

	return c, nil
}

// CreateCreateOrderCommandHandler builds the order acceptor.
func (c *CompositionRoot) CreateCreateOrderCommandHandler(logger *slog.Logger) commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.repo, c.queue, logger, c.metrics)
}

// CreateGetOrderStatusQueryHandler builds the status query handler.
func (c *CompositionRoot) CreateGetOrderStatusQueryHandler() queries.GetOrderStatusQueryHandler {
	return queries.NewGetOrderStatusQueryHandler(c.repo)
}

// Router returns the HTTP handler tree.
func (c *CompositionRoot) Router() *echo.Echo {
	return c.router
}

// Acceptor returns the order acceptor shared with the HTTP server.
func (c *CompositionRoot) Acceptor() commands.CreateOrderCommandHandler {
	return c.acceptor
}

// Repository returns the order repository.
func (c *CompositionRoot) Repository() *eventlog.FileOrderRepository {
	return c.repo
}

// Start recovers the event log, then starts the workers and the scheduled jobs.
// Workers are detached from ctx: they stop only through Shutdown, after
// intake has been closed.
func (c *CompositionRoot) Start(ctx context.Context) error {
	stats, err := c.repo.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}
	c.logger.InfoContext(ctx, "Orders recovered",
		"active", stats.Active,
		"finalized", stats.Finalized,
		"skipped_lines", stats.Skipped,
		"next_id", stats.NextID.Int64(),
	)

	c.workers.Start(context.WithoutCancel(ctx))

	if err = c.jobManager.StartAll(); err != nil {
		c.workers.Stop()
		return errors.Join(err, c.repo.Close())
	}

	return nil
}

// Shutdown stops the application in dependency order:
//  1. stop accepting orders
//  2. stop the HTTP server
//  3. stop the workers
//  4. discard whatever is left in the queue and the warehouse
//  5. stop the scheduled jobs
//  6. close the event log
func (c *CompositionRoot) Shutdown(ctx context.Context) error {
	c.logger.InfoContext(ctx, "Shutting down")

	c.acceptor.StopAccepting()

	var problems []error
	if err := c.router.Shutdown(ctx); err != nil {
		problems = append(problems, fmt.Errorf("failed to stop HTTP server: %w", err))
	}

	if stuck := c.workers.Stop(); len(stuck) > 0 {
		c.logger.WarnContext(ctx, "Some workers are still running", "workers", stuck)
	}

	workers.DiscardLeftovers(ctx, c.queue, c.warehouse, c.repo, c.logger)

	c.jobManager.StopAll()

	if err := c.repo.Close(); err != nil {
		problems = append(problems, err)
	}

	if err := errors.Join(problems...); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "Shutdown complete")
	return nil
}

func (c *CompositionRoot) createWorkers(logger *slog.Logger) ([]workers.Worker, error) {
	staff := make([]workers.Worker, 0, len(c.cfg.Bakers)+len(c.cfg.Couriers))

	for i, b := range c.cfg.Bakers {
		estimator, err := services.NewCookTimeEstimator(services.CookTimeEstimatorConfig{
			BaseTime:             b.CookTime,
			IngredientMultiplier: c.cfg.IngredientMultiplier,
			BaselineAverage:      c.cfg.BaselineAverageCookTime,
			MinCookTime:          c.cfg.MinCookTime,
		})
		if err != nil {
			return nil, fmt.Errorf("baker %d: %w", i+1, err)
		}
		staff = append(staff, workers.NewBaker(i+1, estimator, c.queue, c.warehouse, c.repo, logger))
	}

	for i, cr := range c.cfg.Couriers {
		sampler := services.NewDeliveryTimeSampler(cr.DeliveryTime)
		staff = append(staff, workers.NewCourier(i+1, cr.Capacity, sampler, c.warehouse, c.repo, logger))
	}

	return staff, nil
}
