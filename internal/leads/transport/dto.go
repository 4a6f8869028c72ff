package transport

import (
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/domain"

	"github.com/google/uuid"
)

// SubmitLeadRequest is a franchise's new referral. Admins must name the
// franchise; franchise callers default to their own.
type SubmitLeadRequest struct {
	FranchiseID      *uuid.UUID `json:"franchiseId"`
	StudentName      string     `json:"studentName" validate:"required,min=1,max=200"`
	StudentPhone     string     `json:"studentPhone" validate:"required,min=6,max=32"`
	StudentEmail     *string    `json:"studentEmail" validate:"omitempty,email,max=254"`
	ParentName       *string    `json:"parentName" validate:"omitempty,max=200"`
	CourseInterested *string    `json:"courseInterested" validate:"omitempty,max=200"`
	CurrentClass     *string    `json:"currentClass" validate:"omitempty,max=50"`
	City             *string    `json:"city" validate:"omitempty,max=100"`
	Remarks          string     `json:"remarks" validate:"max=2000"`
}

// ChangeStatusRequest moves a lead to another pipeline status.
type ChangeStatusRequest struct {
	Status  string `json:"status" validate:"required,leadstatus"`
	Remarks string `json:"remarks" validate:"max=2000"`
}

// RecordEnrollmentRequest marks a lead enrolled with its admission amount.
// The amount is checked by the service so callers get invalid_amount.
type RecordEnrollmentRequest struct {
	AdmissionAmount float64 `json:"admissionAmount"`
}

// HistoryResponse wraps a lead's status history.
type HistoryResponse struct {
	Items []domain.HistoryEntry `json:"items"`
	Order string                `json:"order"`
}
