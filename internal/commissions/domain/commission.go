// Package domain holds the commission model and its settlement rules.
package domain

import (
	"errors"
	"time"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/apperr"

	"github.com/google/uuid"
)

var (
	// ErrCommissionNotFound is returned by stores when no commission matches.
	ErrCommissionNotFound = errors.New("commission not found")
	// ErrDuplicateCommission is returned when a lead already has a commission.
	ErrDuplicateCommission = errors.New("commission already exists for lead")
)

// Status is the settlement state of a commission.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusPaid     Status = "Paid"
)

var settlementOrder = map[Status]int{
	StatusPending:  0,
	StatusApproved: 1,
	StatusPaid:     2,
}

// ParseStatus matches raw against the settlement statuses exactly.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	_, ok := settlementOrder[s]
	return s, ok
}

// Commission is the reward owed to a franchise for one enrolled lead.
// The amount is fixed when the commission is created.
type Commission struct {
	ID                   uuid.UUID  `json:"id"`
	LeadID               uuid.UUID  `json:"leadId"`
	FranchiseID          uuid.UUID  `json:"franchiseId"`
	AdmissionAmount      float64    `json:"admissionAmount"`
	CommissionPercentage float64    `json:"commissionPercentage"`
	CommissionAmount     float64    `json:"commissionAmount"`
	Status               Status     `json:"status"`
	PaidDate             *time.Time `json:"paidDate,omitempty"`
	Remarks              string     `json:"remarks"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// Advance moves the commission to requested. Settlement only moves forward
// (Pending, Approved, Paid); skipping ahead and re-applying the current
// status are allowed. Reaching Paid stamps PaidDate once.
func (c Commission) Advance(requested, remarks string, now time.Time) (Commission, error) {
	to, ok := ParseStatus(requested)
	if !ok {
		return Commission{}, apperr.Validation("invalid commission status").
			WithCode(apperr.CodeInvalidStatus).
			WithDetails(map[string]any{
				"status":  requested,
				"allowed": []Status{StatusPending, StatusApproved, StatusPaid},
			})
	}
	if settlementOrder[to] < settlementOrder[c.Status] {
		return Commission{}, apperr.Validation("commission status cannot move backward").
			WithCode(apperr.CodeInvalidStatus).
			WithDetails(map[string]any{"from": c.Status, "to": to})
	}

	c.Status = to
	if remarks != "" {
		c.Remarks = remarks
	}
	if to == StatusPaid && c.PaidDate == nil {
		paid := now.UTC()
		c.PaidDate = &paid
	}
	c.UpdatedAt = now.UTC()
	return c, nil
}
