package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iho/bookkeeper/internal/infrastructure/config"
	"github.com/iho/bookkeeper/internal/infrastructure/logger"
)

const limiterCleanupInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	app, err := newApplication(ctx, cfg, logger, newRegistry())
	if err != nil {
		return err
	}
	defer app.close()

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	publisherDone := make(chan struct{})
	go func() {
		defer close(publisherDone)
		_ = app.publisher.Start(workerCtx)
	}()

	if app.rateLimiter != nil {
		go func() {
			ticker := time.NewTicker(limiterCleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-workerCtx.Done():
					return
				case <-ticker.C:
					app.rateLimiter.CleanupLimiters(limiterCleanupInterval)
				}
			}
		}()
	}

	server := newHTTPServer(cfg, app.handler)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.HTTPPort).
			Str("storage", cfg.StorageDriver).
			Bool("redis", cfg.RedisEnabled).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// Outbox events committed by the last requests are picked up on restart.
	cancelWorkers()
	<-publisherDone

	logger.Info().Msg("server stopped")
	return nil
}
