package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const defaultPushMaxRetry = 3

// Client enqueues push jobs on the asynq queue. It implements
// notification.Queue.
type Client struct {
	client   *asynq.Client
	queue    string
	maxRetry int
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return newClient(opt, cfg), nil
}

func newClient(opt asynq.RedisConnOpt, cfg config.SchedulerConfig) *Client {
	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	maxRetry := cfg.GetPushMaxRetry()
	if maxRetry < 0 {
		maxRetry = defaultPushMaxRetry
	}

	return &Client{
		client:   asynq.NewClient(opt),
		queue:    queue,
		maxRetry: maxRetry,
	}
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Enqueue schedules job for immediate delivery.
func (c *Client) Enqueue(ctx context.Context, job notification.Job) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewPushNotificationTask(job)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(c.maxRetry))
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
