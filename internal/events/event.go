// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadSubmitted is published when a franchise submits a new referral.
type LeadSubmitted struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	FranchiseID uuid.UUID `json:"franchiseId"`
	StudentName string    `json:"studentName"`
}

func (e LeadSubmitted) EventName() string { return "leads.lead.submitted" }

// LeadStatusChanged is published after a status change commits.
type LeadStatusChanged struct {
	BaseEvent
	LeadID         uuid.UUID  `json:"leadId"`
	FranchiseID    uuid.UUID  `json:"franchiseId"`
	StudentName    string     `json:"studentName"`
	PreviousStatus string     `json:"previousStatus"`
	NewStatus      string     `json:"newStatus"`
	Remarks        string     `json:"remarks"`
	ActorID        *uuid.UUID `json:"actorId,omitempty"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status.changed" }

// LeadEnrolled is published after an enrollment and its commission commit.
type LeadEnrolled struct {
	BaseEvent
	LeadID           uuid.UUID  `json:"leadId"`
	FranchiseID      uuid.UUID  `json:"franchiseId"`
	StudentName      string     `json:"studentName"`
	PreviousStatus   string     `json:"previousStatus"`
	AdmissionAmount  float64    `json:"admissionAmount"`
	CommissionID     uuid.UUID  `json:"commissionId"`
	CommissionAmount float64    `json:"commissionAmount"`
	ActorID          *uuid.UUID `json:"actorId,omitempty"`
}

func (e LeadEnrolled) EventName() string { return "leads.lead.enrolled" }

// =============================================================================
// Commission Domain Events
// =============================================================================

// CommissionApproved is published when a commission moves to Approved.
type CommissionApproved struct {
	BaseEvent
	CommissionID     uuid.UUID `json:"commissionId"`
	LeadID           uuid.UUID `json:"leadId"`
	FranchiseID      uuid.UUID `json:"franchiseId"`
	StudentName      string    `json:"studentName"`
	CommissionAmount float64   `json:"commissionAmount"`
}

func (e CommissionApproved) EventName() string { return "commissions.commission.approved" }

// CommissionPaid is published when a commission moves to Paid.
type CommissionPaid struct {
	BaseEvent
	CommissionID     uuid.UUID `json:"commissionId"`
	LeadID           uuid.UUID `json:"leadId"`
	FranchiseID      uuid.UUID `json:"franchiseId"`
	StudentName      string    `json:"studentName"`
	CommissionAmount float64   `json:"commissionAmount"`
}

func (e CommissionPaid) EventName() string { return "commissions.commission.paid" }
