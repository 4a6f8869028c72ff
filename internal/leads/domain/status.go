package domain

import (
	"strings"
	"time"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/apperr"
)

// Status is a lead's position in the referral pipeline.
type Status string

const (
	StatusSubmitted        Status = "Submitted"
	StatusLeadAcknowledged Status = "Lead acknowledged"
	StatusHot              Status = "HOT"
	StatusWarm             Status = "WARM"
	StatusUnspoken         Status = "Unspoken"
	StatusCold             Status = "COLD"
	StatusVisited          Status = "Visited"
	StatusEnrolled         Status = "Enrolled"
)

var allStatuses = []Status{
	StatusSubmitted,
	StatusLeadAcknowledged,
	StatusHot,
	StatusWarm,
	StatusUnspoken,
	StatusCold,
	StatusVisited,
	StatusEnrolled,
}

// Statuses returns the pipeline statuses in display order.
func Statuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// ParseStatus matches raw against the enumeration exactly (case and spacing matter).
func ParseStatus(raw string) (Status, bool) {
	for _, s := range allStatuses {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// Transition is the outcome of validating a requested status change.
type Transition struct {
	From Status
	To   Status
	// EnrollmentDate is set when the change stamps the lead's first enrollment.
	EnrollmentDate *time.Time
}

// ValidateTransition checks a requested status against the enumeration and
// derives its side effects. The graph is open: every status may follow
// every other, including itself.
func ValidateTransition(lead Lead, requested string, now time.Time) (Transition, error) {
	to, ok := ParseStatus(requested)
	if !ok {
		return Transition{}, apperr.Validation("invalid status").
			WithCode(apperr.CodeInvalidStatus).
			WithDetails(map[string]any{
				"status":  strings.TrimSpace(requested),
				"allowed": allStatuses,
			})
	}

	t := Transition{From: lead.Status, To: to}
	if to == StatusEnrolled && lead.EnrollmentDate == nil {
		stamp := now.UTC()
		t.EnrollmentDate = &stamp
	}
	return t, nil
}
