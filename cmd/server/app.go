package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/bookkeeper/internal/adapter/http"
	"github.com/iho/bookkeeper/internal/adapter/http/handler"
	"github.com/iho/bookkeeper/internal/adapter/http/middleware"
	"github.com/iho/bookkeeper/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/bookkeeper/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bookkeeper/internal/adapter/repository/redis"
	"github.com/iho/bookkeeper/internal/infrastructure/config"
	"github.com/iho/bookkeeper/internal/infrastructure/eventpublisher"
	"github.com/iho/bookkeeper/internal/infrastructure/idgen"
	"github.com/iho/bookkeeper/internal/infrastructure/metrics"
	"github.com/iho/bookkeeper/internal/infrastructure/postgres"
	"github.com/iho/bookkeeper/internal/infrastructure/redis"
	"github.com/iho/bookkeeper/internal/usecase"
)

// storage is the set of repositories behind one storage driver.
type storage struct {
	txManager usecase.TransactionManager
	accounts  usecase.AccountRepository
	entries   usecase.EntryRepository
	periods   usecase.PeriodRepository
	outbox    usecase.OutboxRepository
	retrier   usecase.Retrier
	checker   handler.Checker
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		store := memory.NewStore()
		return &storage{
			txManager: memory.NewTxManager(store),
			accounts:  memory.NewAccountRepository(store),
			entries:   memory.NewEntryRepository(store),
			periods:   memory.NewPeriodRepository(store),
			outbox:    memory.NewOutboxRepository(store),
			close:     func() {},
		}, nil

	case config.StoragePostgres:
		if cfg.AutoMigrate {
			if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, logger).Up(); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:      cfg.DatabaseURL,
			MaxConns:         cfg.DatabaseMaxConns,
			MinConns:         cfg.DatabaseMinConns,
			ConnectTimeout:   cfg.DatabaseTimeout,
			StatementTimeout: cfg.StatementTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info().Msg("connected to postgres")

		return &storage{
			txManager: postgresRepo.NewTxManager(pool).WithLockTimeout(cfg.LedgerLockWait),
			accounts:  postgresRepo.NewAccountRepository(pool),
			entries:   postgresRepo.NewEntryRepository(pool),
			periods:   postgresRepo.NewPeriodRepository(pool),
			outbox:    postgresRepo.NewOutboxRepository(pool),
			retrier:   postgresRepo.NewRetrier(logger),
			checker:   poolChecker(pool),
			close:     pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func poolChecker(pool *pgxpool.Pool) handler.Checker {
	return handler.CheckerFunc(pool.Ping)
}

func redisChecker(client goredis.UniversalClient) handler.Checker {
	return handler.CheckerFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// application is the fully wired server.
type application struct {
	handler     http.Handler
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	close       func()
}

func newApplication(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg *prometheus.Registry) (*application, error) {
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	closers := []func(){store.close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	m := metrics.New(reg)
	checks := map[string]handler.Checker{}
	if store.checker != nil {
		checks["postgres"] = store.checker
	}

	var (
		cache       usecase.Cache
		idempotency usecase.IdempotencyStore
		publisher   eventpublisher.Publisher = eventpublisher.NewLogPublisher(logger)
	)

	if cfg.RedisEnabled {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		logger.Info().Msg("connected to redis")

		cache = redisRepo.NewCache(client).WithObserver(m)
		idempotency = redisRepo.NewIdempotencyStore(client)
		publisher = eventpublisher.NewStreamPublisher(client, cfg.EventStream, cfg.EventStreamLen)
		checks["redis"] = redisChecker(client)
	}

	ids := idgen.NewULIDGenerator()

	accountUC := usecase.NewAccountUseCase(store.txManager, store.accounts, store.outbox, ids).WithMetrics(m)
	entryUC := usecase.NewEntryUseCase(store.txManager, store.accounts, store.entries, store.periods, store.outbox, ids).WithMetrics(m)
	closingUC := usecase.NewClosingUseCase(store.txManager, store.accounts, store.entries, store.periods, store.outbox, ids).WithMetrics(m)
	if store.retrier != nil {
		entryUC = entryUC.WithRetrier(store.retrier)
		closingUC = closingUC.WithRetrier(store.retrier)
	}
	balanceUC := usecase.NewBalanceUseCase(store.accounts, store.entries, cache).WithCacheTTL(cfg.BalanceCacheTTL)
	reportUC := usecase.NewReportUseCase(store.accounts, store.entries, store.periods, cfg.RequireClosedPeriod)
	ledgerUC := usecase.NewLedgerUseCase(store.accounts, store.entries)
	importUC := usecase.NewImportUseCase(store.txManager, accountUC, entryUC)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithHitCounter(m.RateLimitHits)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		BalanceHandler:   handler.NewBalanceHandler(balanceUC, accountUC),
		EntryHandler:     handler.NewEntryHandler(entryUC),
		PeriodHandler:    handler.NewPeriodHandler(closingUC),
		ReportHandler:    handler.NewReportHandler(reportUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		ImportHandler:    handler.NewImportHandler(importUC),
		HealthHandler:    handler.NewHealthHandler(checks),
		IdempotencyStore: idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:           logger,
	})

	return &application{
		handler: router,
		publisher: eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: store.outbox,
			Publisher:  publisher,
			Observer:   m,
			Logger:     logger,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  cfg.OutboxRetention,
		}),
		rateLimiter: rateLimiter,
		close:       closeAll,
	}, nil
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}
