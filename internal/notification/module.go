// Package notification pushes lead and commission updates to franchise devices.
// It subscribes to domain events and hands each push to a Queue so delivery
// never runs on the request path.
package notification

import (
	"context"
	"strconv"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/events"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification/messages"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/logger"
)

// Module handles all notification-related event subscriptions.
type Module struct {
	queue Queue
	log   *logger.Logger
}

func New(queue Queue, log *logger.Logger) *Module {
	return &Module{queue: queue, log: log}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	// Lead events
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), m)
	bus.Subscribe(events.LeadEnrolled{}.EventName(), m)

	// Commission events
	bus.Subscribe(events.CommissionApproved{}.EventName(), m)
	bus.Subscribe(events.CommissionPaid{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadStatusChanged:
		return m.handleLeadStatusChanged(ctx, e)
	case events.LeadEnrolled:
		return m.handleLeadEnrolled(ctx, e)
	case events.CommissionApproved:
		return m.handleCommissionApproved(ctx, e)
	case events.CommissionPaid:
		return m.handleCommissionPaid(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleLeadStatusChanged(ctx context.Context, e events.LeadStatusChanged) error {
	return m.enqueue(ctx, Job{
		Template:    messages.LeadStatusChanged,
		RecipientID: e.FranchiseID,
		Message:     messages.Data{StudentName: e.StudentName, NewStatus: e.NewStatus},
		Data: map[string]string{
			"type":   "lead_status_update",
			"leadId": e.LeadID.String(),
			"status": e.NewStatus,
		},
	})
}

func (m *Module) handleLeadEnrolled(ctx context.Context, e events.LeadEnrolled) error {
	return m.enqueue(ctx, Job{
		Template:    messages.LeadEnrolled,
		RecipientID: e.FranchiseID,
		Message:     messages.Data{StudentName: e.StudentName, CommissionAmount: e.CommissionAmount},
		Data: map[string]string{
			"type":         "lead_enrolled",
			"leadId":       e.LeadID.String(),
			"commissionId": e.CommissionID.String(),
			"amount":       formatAmount(e.CommissionAmount),
		},
	})
}

func (m *Module) handleCommissionApproved(ctx context.Context, e events.CommissionApproved) error {
	return m.enqueue(ctx, Job{
		Template:    messages.CommissionApproved,
		RecipientID: e.FranchiseID,
		Message:     messages.Data{StudentName: e.StudentName, CommissionAmount: e.CommissionAmount},
		Data: map[string]string{
			"type":         "commission_approved",
			"commissionId": e.CommissionID.String(),
			"amount":       formatAmount(e.CommissionAmount),
		},
	})
}

func (m *Module) handleCommissionPaid(ctx context.Context, e events.CommissionPaid) error {
	return m.enqueue(ctx, Job{
		Template:    messages.CommissionPaid,
		RecipientID: e.FranchiseID,
		Message:     messages.Data{StudentName: e.StudentName, CommissionAmount: e.CommissionAmount},
		Data: map[string]string{
			"type":         "commission_paid",
			"commissionId": e.CommissionID.String(),
			"amount":       formatAmount(e.CommissionAmount),
		},
	})
}

// enqueue logs a failed hand-off and reports it to the bus, which only logs.
func (m *Module) enqueue(ctx context.Context, job Job) error {
	if err := m.queue.Enqueue(ctx, job); err != nil {
		m.log.WithContext(ctx).Warn("failed to enqueue push notification",
			"template", job.Template,
			"recipientId", job.RecipientID,
			"error", err,
		)
		return err
	}
	return nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
