// Package domain holds the lead pipeline model and its transition rules.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrLeadNotFound is returned by stores when no lead matches.
var ErrLeadNotFound = errors.New("lead not found")

// Lead is a student referral submitted by a franchise partner.
type Lead struct {
	ID               uuid.UUID  `json:"id"`
	FranchiseID      uuid.UUID  `json:"franchiseId"`
	StudentName      string     `json:"studentName"`
	StudentPhone     string     `json:"studentPhone"`
	StudentEmail     *string    `json:"studentEmail,omitempty"`
	ParentName       *string    `json:"parentName,omitempty"`
	CourseInterested *string    `json:"courseInterested,omitempty"`
	CurrentClass     *string    `json:"currentClass,omitempty"`
	City             *string    `json:"city,omitempty"`
	Status           Status     `json:"status"`
	Remarks          string     `json:"remarks"`
	AdmissionAmount  *float64   `json:"admissionAmount,omitempty"`
	EnrollmentDate   *time.Time `json:"enrollmentDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Apply returns a copy of the lead with the transition and remarks applied.
func (l Lead) Apply(t Transition, remarks string, now time.Time) Lead {
	l.Status = t.To
	l.Remarks = remarks
	if t.EnrollmentDate != nil {
		l.EnrollmentDate = t.EnrollmentDate
	}
	l.UpdatedAt = now.UTC()
	return l
}

// HistoryEntry is one immutable record in a lead's status audit trail.
type HistoryEntry struct {
	ID             uuid.UUID  `json:"id"`
	Seq            int64      `json:"seq"`
	LeadID         uuid.UUID  `json:"leadId"`
	PreviousStatus *Status    `json:"previousStatus,omitempty"`
	NewStatus      Status     `json:"newStatus"`
	Remarks        string     `json:"remarks"`
	ChangedBy      *uuid.UUID `json:"changedBy,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}
