package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification/push"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/logger"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/metrics"

	"github.com/google/uuid"
)

// OutcomeStatus classifies a Notify attempt.
type OutcomeStatus string

const (
	OutcomeSent         OutcomeStatus = "sent"
	OutcomeNoRecipients OutcomeStatus = "no_recipients"
	OutcomeFailed       OutcomeStatus = "failed"
)

// Outcome is the informational result of a Notify call.
type Outcome struct {
	Status       OutcomeStatus `json:"status"`
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"`
	Reason       string        `json:"reason,omitempty"`
	// Err carries the underlying failures so callers can classify them.
	Err error `json:"-"`
}

// TokenStore lists the device tokens registered to a recipient.
type TokenStore interface {
	ListTokens(ctx context.Context, ownerID uuid.UUID) ([]string, error)
}

// Dispatcher fans one message out to every device of a recipient.
type Dispatcher struct {
	tokens  TokenStore
	sender  push.Sender
	metrics *metrics.Metrics
	log     *logger.Logger
}

func NewDispatcher(tokens TokenStore, sender push.Sender, m *metrics.Metrics, log *logger.Logger) *Dispatcher {
	return &Dispatcher{tokens: tokens, sender: sender, metrics: m, log: log}
}

// Notify never returns an error. Token lookup failures, transport errors
// and panics all come back as a failed Outcome.
func (d *Dispatcher) Notify(ctx context.Context, recipientID uuid.UUID, title, body string, data map[string]string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Status: OutcomeFailed, FailureCount: out.FailureCount, Reason: fmt.Sprintf("panic: %v", r)}
		}
		d.record(ctx, recipientID, data, out)
	}()

	tokens, err := d.tokens.ListTokens(ctx, recipientID)
	if err != nil {
		return Outcome{Status: OutcomeFailed, Reason: "load device tokens: " + err.Error(), Err: err}
	}
	if len(tokens) == 0 {
		return Outcome{Status: OutcomeNoRecipients}
	}

	msg := push.Message{Title: title, Body: body, Data: data}
	var (
		sendErrs   []error
		okBatches  int
		totalBatch int
	)
	for start := 0; start < len(tokens); start += push.MaxTokensPerCall {
		end := min(start+push.MaxTokensPerCall, len(tokens))
		batch := tokens[start:end]
		totalBatch++

		res, err := d.sender.SendMulticast(ctx, batch, msg)
		if err != nil {
			sendErrs = append(sendErrs, err)
			out.FailureCount += len(batch)
			continue
		}
		okBatches++
		out.SuccessCount += res.SuccessCount
		out.FailureCount += res.FailureCount
	}

	out.Status = OutcomeSent
	if okBatches == 0 {
		out.Status = OutcomeFailed
	}
	if len(sendErrs) > 0 {
		out.Err = errors.Join(sendErrs...)
		out.Reason = out.Err.Error()
	}
	return out
}

func (d *Dispatcher) record(ctx context.Context, recipientID uuid.UUID, data map[string]string, out Outcome) {
	kind := data["type"]
	d.log.WithContext(ctx).NotificationOutcome(recipientID.String(), kind, string(out.Status), out.SuccessCount, out.FailureCount)
	if out.Reason != "" {
		d.log.WithContext(ctx).Warn("push delivery problem", "recipientId", recipientID, "type", kind, "reason", out.Reason)
	}
	d.metrics.ObserveNotification(string(out.Status), out.SuccessCount, out.FailureCount)
}
