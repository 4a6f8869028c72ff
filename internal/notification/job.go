package notification

import (
	"context"
	"errors"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification/messages"

	"github.com/google/uuid"
)

// ErrQueueFull is returned when the local executor has no room for a job.
var ErrQueueFull = errors.New("notification queue full")

// Job is one push fan-out waiting to run. It is serialized as the asynq
// task payload, so it carries only plain values.
type Job struct {
	Template    string            `json:"template"`
	RecipientID uuid.UUID         `json:"recipientId"`
	Message     messages.Data     `json:"message"`
	Data        map[string]string `json:"data"`
}

// Queue hands jobs to an executor that runs them off the request path.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}

// Processor renders a job's message and dispatches it.
type Processor struct {
	catalog    *messages.Catalog
	dispatcher *Dispatcher
}

func NewProcessor(catalog *messages.Catalog, dispatcher *Dispatcher) *Processor {
	return &Processor{catalog: catalog, dispatcher: dispatcher}
}

// Process runs job once. Rendering errors become a failed outcome.
func (p *Processor) Process(ctx context.Context, job Job) Outcome {
	title, body, err := p.catalog.Render(job.Template, job.Message)
	if err != nil {
		out := Outcome{Status: OutcomeFailed, Reason: err.Error()}
		p.dispatcher.record(ctx, job.RecipientID, job.Data, out)
		return out
	}
	return p.dispatcher.Notify(ctx, job.RecipientID, title, body, job.Data)
}
