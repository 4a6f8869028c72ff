// Package calculator derives commissions from enrollments.
package calculator

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/domain"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/apperr"

	"github.com/google/uuid"
)

const (
	// DefaultPercentage applies when neither the franchise nor config sets one.
	DefaultPercentage = 10.0

	// MaxAdmissionAmount is the largest value a NUMERIC(14,2) column holds.
	MaxAdmissionAmount = 999999999999.99
)

// CommissionStore is the commission persistence the calculator needs.
type CommissionStore interface {
	GetCommissionByLead(ctx context.Context, leadID uuid.UUID) (domain.Commission, error)
	CreateCommission(ctx context.Context, c domain.Commission) (domain.Commission, error)
}

// FranchiseReader looks up a franchise's configured percentage.
// A nil percentage means the franchise has none configured.
type FranchiseReader interface {
	GetCommissionPercentage(ctx context.Context, franchiseID uuid.UUID) (*float64, error)
}

// Input describes the enrollment a commission is derived from.
type Input struct {
	LeadID          uuid.UUID
	FranchiseID     uuid.UUID
	AdmissionAmount float64
	Remarks         string
}

type Calculator struct {
	commissions       CommissionStore
	franchises        FranchiseReader
	defaultPercentage float64
	now               func() time.Time
}

func New(commissions CommissionStore, franchises FranchiseReader, defaultPercentage float64) *Calculator {
	if defaultPercentage <= 0 {
		defaultPercentage = DefaultPercentage
	}
	return &Calculator{
		commissions:       commissions,
		franchises:        franchises,
		defaultPercentage: defaultPercentage,
		now:               time.Now,
	}
}

// Amount computes admission * percentage / 100 rounded half-to-even to 2 decimals.
func Amount(admission, percentage float64) float64 {
	return math.RoundToEven(admission*percentage) / 100
}

// RoundAmount rounds a money amount half-to-even to 2 decimals.
func RoundAmount(amount float64) float64 {
	return math.RoundToEven(amount*100) / 100
}

// ValidateAmount rejects admission amounts that are not finite, round to
// zero or less, or do not fit the stored precision.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || RoundAmount(amount) <= 0 {
		return invalidAmount("admission amount must be greater than zero", amount)
	}
	if RoundAmount(amount) > MaxAdmissionAmount {
		return invalidAmount("admission amount is too large", amount)
	}
	return nil
}

func invalidAmount(msg string, amount float64) error {
	return apperr.Validation(msg).
		WithCode(apperr.CodeInvalidAmount).
		WithDetails(map[string]any{"admissionAmount": amount, "max": MaxAdmissionAmount})
}

// Materialize creates the Pending commission for an enrollment. It fails with
// already_enrolled when the lead has a commission, including when a
// concurrent writer wins the unique constraint.
func (c *Calculator) Materialize(ctx context.Context, in Input) (domain.Commission, error) {
	if err := ValidateAmount(in.AdmissionAmount); err != nil {
		return domain.Commission{}, err
	}
	admission := RoundAmount(in.AdmissionAmount)

	if _, err := c.commissions.GetCommissionByLead(ctx, in.LeadID); err == nil {
		return domain.Commission{}, alreadyEnrolled(in.LeadID)
	} else if !errors.Is(err, domain.ErrCommissionNotFound) {
		return domain.Commission{}, apperr.Persistence("load commission", err)
	}

	pct, err := c.percentageFor(ctx, in.FranchiseID)
	if err != nil {
		return domain.Commission{}, err
	}

	now := c.now().UTC()
	created, err := c.commissions.CreateCommission(ctx, domain.Commission{
		ID:                   uuid.New(),
		LeadID:               in.LeadID,
		FranchiseID:          in.FranchiseID,
		AdmissionAmount:      admission,
		CommissionPercentage: pct,
		CommissionAmount:     Amount(admission, pct),
		Status:               domain.StatusPending,
		Remarks:              in.Remarks,
		CreatedAt:            now,
		UpdatedAt:            now,
	})
	if errors.Is(err, domain.ErrDuplicateCommission) {
		return domain.Commission{}, alreadyEnrolled(in.LeadID)
	}
	if err != nil {
		return domain.Commission{}, apperr.Persistence("create commission", err)
	}
	return created, nil
}

func (c *Calculator) percentageFor(ctx context.Context, franchiseID uuid.UUID) (float64, error) {
	pct, err := c.franchises.GetCommissionPercentage(ctx, franchiseID)
	if err != nil {
		return 0, apperr.Persistence("load franchise commission percentage", err)
	}
	if pct == nil || *pct <= 0 {
		return c.defaultPercentage, nil
	}
	return *pct, nil
}

func alreadyEnrolled(leadID uuid.UUID) error {
	return apperr.Conflict("lead already has a commission").
		WithCode(apperr.CodeAlreadyEnrolled).
		WithDetails(map[string]any{"leadId": leadID})
}
