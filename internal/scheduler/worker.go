package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification/push"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/config"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/logger"

	"github.com/hibiken/asynq"
)

// errDeliveryFailed makes asynq retry a job whose every batch failed.
var errDeliveryFailed = errors.New("push delivery failed")

// JobProcessor runs one push job.
type JobProcessor interface {
	Process(ctx context.Context, job notification.Job) notification.Outcome
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor JobProcessor
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, processor JobProcessor, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		processor: processor,
		log:       log,
	}

	mux.HandleFunc(TaskPushNotification, w.handlePushNotification)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handlePushNotification retries only when nothing was delivered; partial
// delivery is final so devices that succeeded are not notified twice. A job
// that failed because push is not configured is never retried.
func (w *Worker) handlePushNotification(ctx context.Context, task *asynq.Task) error {
	job, err := ParsePushNotificationPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	out := w.processor.Process(ctx, job)
	if errors.Is(out.Err, push.ErrPushDisabled) {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, out.Err)
	}
	if out.Status == notification.OutcomeFailed && out.SuccessCount == 0 {
		return fmt.Errorf("%w: %s", errDeliveryFailed, out.Reason)
	}
	return nil
}
