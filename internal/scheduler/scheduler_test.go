package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification/messages"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification/push"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
	retry    int
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "notifications" }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }
func (c testSchedulerConfig) GetPushMaxRetry() int      { return c.retry }

type stubProcessor struct {
	out  notification.Outcome
	jobs []notification.Job
}

func (p *stubProcessor) Process(_ context.Context, job notification.Job) notification.Outcome {
	p.jobs = append(p.jobs, job)
	return p.out
}

func TestClientEnqueuesPushTask(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr(), retry: 3})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	job := notification.Job{
		Template:    messages.CommissionPaid,
		RecipientID: uuid.New(),
		Message:     messages.Data{StudentName: "Ravi", CommissionAmount: 6000},
		Data:        map[string]string{"type": "commission_paid"},
	}
	if err := client.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	pending, err := mr.List("asynq:{notifications}:pending")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(pending))
	}
}

func TestNewClientRetryFallsBackToConfigDefault(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr(), retry: -1})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	if client.maxRetry != 3 {
		t.Fatalf("expected max retry 3, got %d", client.maxRetry)
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error without redis url")
	}
}

func TestPushTaskRoundTrip(t *testing.T) {
	job := notification.Job{Template: messages.LeadStatusChanged, RecipientID: uuid.New(), Message: messages.Data{NewStatus: "HOT"}}
	task, err := NewPushNotificationTask(job)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskPushNotification {
		t.Fatalf("unexpected type %s", task.Type())
	}
	got, err := ParsePushNotificationPayload(task)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.RecipientID != job.RecipientID || got.Message.NewStatus != "HOT" {
		t.Fatalf("unexpected job %+v", got)
	}
}

func TestHandlePushNotificationRetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		out       notification.Outcome
		wantRetry bool
	}{
		{name: "sent", out: notification.Outcome{Status: notification.OutcomeSent, SuccessCount: 2}},
		{name: "no recipients", out: notification.Outcome{Status: notification.OutcomeNoRecipients}},
		{name: "whole batch failed", out: notification.Outcome{Status: notification.OutcomeFailed, Reason: "unavailable"}, wantRetry: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &stubProcessor{out: tt.out}
			w := &Worker{processor: proc, log: logger.New("development")}
			task, err := NewPushNotificationTask(notification.Job{Template: messages.LeadStatusChanged, RecipientID: uuid.New()})
			if err != nil {
				t.Fatalf("new task: %v", err)
			}

			err = w.handlePushNotification(context.Background(), task)
			if tt.wantRetry != (err != nil) {
				t.Fatalf("retry = %v, err = %v", tt.wantRetry, err)
			}
			if tt.wantRetry && !errors.Is(err, errDeliveryFailed) {
				t.Fatalf("expected errDeliveryFailed, got %v", err)
			}
			if len(proc.jobs) != 1 {
				t.Fatalf("expected 1 processed job, got %d", len(proc.jobs))
			}
		})
	}
}

func TestHandlePushNotificationDisabledPushSkipsRetry(t *testing.T) {
	disabled := fmt.Errorf("batch 1: %w", push.ErrPushDisabled)
	proc := &stubProcessor{out: notification.Outcome{
		Status:       notification.OutcomeFailed,
		FailureCount: 2,
		Reason:       disabled.Error(),
		Err:          disabled,
	}}
	w := &Worker{processor: proc, log: logger.New("development")}
	task, err := NewPushNotificationTask(notification.Job{Template: messages.CommissionApproved, RecipientID: uuid.New()})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}

	err = w.handlePushNotification(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestDisabledSenderOutcomeSkipsRetry(t *testing.T) {
	tokens := tokenMap{}
	recipient := uuid.New()
	tokens[recipient] = []string{"device-a", "device-b"}
	dispatcher := notification.NewDispatcher(tokens, push.Disabled{}, nil, logger.New("development"))

	out := dispatcher.Notify(context.Background(), recipient, "title", "body", nil)
	if out.Status != notification.OutcomeFailed || !errors.Is(out.Err, push.ErrPushDisabled) {
		t.Fatalf("expected failed outcome carrying ErrPushDisabled, got %+v", out)
	}

	w := &Worker{processor: &stubProcessor{out: out}, log: logger.New("development")}
	task, err := NewPushNotificationTask(notification.Job{Template: messages.CommissionPaid, RecipientID: recipient})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := w.handlePushNotification(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

type tokenMap map[uuid.UUID][]string

func (m tokenMap) ListTokens(_ context.Context, owner uuid.UUID) ([]string, error) {
	return m[owner], nil
}

func TestHandlePushNotificationBadPayloadSkipsRetry(t *testing.T) {
	w := &Worker{processor: &stubProcessor{}, log: logger.New("development")}
	err := w.handlePushNotification(context.Background(), asynq.NewTask(TaskPushNotification, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}
