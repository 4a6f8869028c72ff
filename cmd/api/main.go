package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/calculator"
	commissionrepo "github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/repository"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/events"
	apphttp "github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/http"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/http/router"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads"
	leadrepo "github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/repository"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification/devices"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification/messages"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification/push"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/scheduler"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/migrations"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/config"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/db"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/logger"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/metrics"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if cfg.GetMigrateOnStart() {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, pool, migrations.FS)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	queue, closeQueue := initNotificationQueue(ctx, cfg, pool, m, log)
	defer closeQueue()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(queue, log)
	notificationModule.RegisterHandlers(eventBus)

	tx := db.NewTransactor(pool)
	leadStore := leadrepo.New(pool)
	commissionStore := commissionrepo.New(pool)
	calc := calculator.New(commissionStore, commissionStore, cfg.GetDefaultCommissionPercentage())

	leadsModule, err := leads.NewModule(tx, leadStore, commissionStore, calc, eventBus, val, m, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}
	commissionsModule := commissions.NewModule(tx, commissionStore, leadStore, eventBus, val, m, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		Metrics:  registry,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			commissionsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initNotificationQueue prefers the Redis-backed asynq queue and falls back
// to an in-process worker pool when Redis is not configured.
func initNotificationQueue(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, m *metrics.Metrics, log *logger.Logger) (notification.Queue, func()) {
	if cfg.GetRedisURL() != "" {
		client, err := scheduler.NewClient(cfg)
		if err == nil {
			log.Info("push notifications queued through redis", "queue", cfg.GetAsynqQueueName())
			return client, func() { _ = client.Close() }
		}
		log.Error("failed to initialize notification queue client; using local executor", "error", err)
	} else {
		log.Warn("REDIS_URL not configured; push notifications run in-process")
	}

	catalog, err := messages.Load()
	if err != nil {
		panic("failed to load notification messages: " + err.Error())
	}
	dispatcher := notification.NewDispatcher(devices.New(pool), newPushSender(ctx, cfg, log), m, log)
	local := notification.NewLocalQueue(notification.NewProcessor(catalog, dispatcher), cfg, m, log)
	local.Start(ctx)
	return local, local.Close
}

func newPushSender(ctx context.Context, cfg config.PushConfig, log *logger.Logger) push.Sender {
	if !cfg.IsPushEnabled() {
		log.Warn("firebase not configured; push notifications disabled")
		return push.Disabled{}
	}
	sender, err := push.NewFCM(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize firebase messaging", "error", err)
		return push.Disabled{}
	}
	return sender
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
