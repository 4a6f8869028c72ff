package notification

import (
	"context"
	"sync"
	"time"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/config"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/logger"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/metrics"

	"golang.org/x/sync/errgroup"
)

// LocalQueue runs jobs on a fixed pool of in-process workers. It is used
// when no Redis queue is configured. Jobs that do not fit are dropped.
type LocalQueue struct {
	processor *Processor
	jobs      chan Job
	workers   int
	timeout   time.Duration
	metrics   *metrics.Metrics
	log       *logger.Logger

	mu     sync.RWMutex
	closed bool
	group  *errgroup.Group
}

func NewLocalQueue(processor *Processor, cfg config.NotificationConfig, m *metrics.Metrics, log *logger.Logger) *LocalQueue {
	workers := max(cfg.GetNotificationWorkers(), 1)
	size := max(cfg.GetNotificationQueueSize(), 1)
	return &LocalQueue{
		processor: processor,
		jobs:      make(chan Job, size),
		workers:   workers,
		timeout:   cfg.GetNotificationTimeout(),
		metrics:   m,
		log:       log,
	}
}

// Start launches the workers. They stop once Close drains the queue.
func (q *LocalQueue) Start(ctx context.Context) {
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	for range q.workers {
		g.Go(func() error {
			for job := range q.jobs {
				q.run(gctx, job)
			}
			return nil
		})
	}
	q.group = g
}

func (q *LocalQueue) run(ctx context.Context, job Job) {
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}
	q.processor.Process(ctx, job)
}

// Enqueue never blocks.
func (q *LocalQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueFull
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		q.metrics.IncrementNotificationsDropped()
		q.log.Warn("notification dropped", "template", job.Template, "recipientId", job.RecipientID)
		return ErrQueueFull
	}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (q *LocalQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	if q.group != nil {
		_ = q.group.Wait()
	}
}
