package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification/devices"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification/messages"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification/push"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/scheduler"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/config"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/db"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/logger"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	catalog, err := messages.Load()
	if err != nil {
		log.Error("failed to load notification messages", "error", err)
		panic("failed to load notification messages: " + err.Error())
	}

	var sender push.Sender = push.Disabled{}
	if cfg.IsPushEnabled() {
		fcm, err := push.NewFCM(ctx, cfg)
		if err != nil {
			log.Error("failed to initialize firebase messaging", "error", err)
			panic("failed to initialize firebase messaging: " + err.Error())
		}
		sender = fcm
	} else {
		log.Warn("firebase not configured; push jobs will fail and retry")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	dispatcher := notification.NewDispatcher(devices.New(pool), sender, m, log)
	processor := notification.NewProcessor(catalog, dispatcher)

	worker, err := scheduler.NewWorker(cfg, processor, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
