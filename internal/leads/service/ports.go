package service

import (
	"context"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/calculator"
	commissiondomain "github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/domain"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/domain"

	"github.com/google/uuid"
)

// LeadStore persists leads. GetLeadForUpdate must lock the row for the
// duration of the surrounding transaction.
type LeadStore interface {
	CreateLead(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	GetLeadForUpdate(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	UpdateLead(ctx context.Context, lead domain.Lead) (domain.Lead, error)
}

// CommissionReader answers whether a lead already has a commission.
type CommissionReader interface {
	GetCommissionByLead(ctx context.Context, leadID uuid.UUID) (commissiondomain.Commission, error)
}

// CommissionMaterializer creates the commission for an enrollment.
type CommissionMaterializer interface {
	Materialize(ctx context.Context, in calculator.Input) (commissiondomain.Commission, error)
}

// Transactor runs fn atomically; stores called with the ctx it passes join the unit.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
