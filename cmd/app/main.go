package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pizzeria/cmd"
	"pizzeria/internal/pkg/logging"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

var errWorkTimeElapsed = errors.New("scheduled work time elapsed")

func main() {
	if err := run(); err != nil {
		log.Fatalf("Pizzeria stopped with error: %v", err)
	}
}

func run() error {
	loadDotEnv()

	config, err := cmd.LoadConfig(os.LookupEnv)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closer, err := logging.New(logging.Config{
		Level:    config.LogLevel,
		Format:   config.LogFormat,
		FilePath: config.LogFile,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if config.WorkTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, config.WorkTime, errWorkTimeElapsed)
		defer cancel()
	}

	app, err := cmd.NewCompositionRoot(config, logger)
	if err != nil {
		return err
	}
	if err = app.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf("0.0.0.0:%s", config.HTTPPort)
		logger.Info("HTTP server listening", "addr", addr)
		if err := app.Router().Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Stopping pizzeria", "cause", context.Cause(gctx))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// loadDotEnv reads .env once. A missing file is fine; configuration then comes
// from the process environment and defaults.
func loadDotEnv() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}
}
