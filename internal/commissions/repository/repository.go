package repository

import (
	"context"
	"errors"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/domain"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the Postgres store for commissions and franchise rates.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const commissionColumns = `
	id, lead_id, franchise_id, admission_amount, commission_percentage,
	commission_amount, status, paid_date, remarks, created_at, updated_at`

func scanCommission(row pgx.Row) (domain.Commission, error) {
	var (
		c      domain.Commission
		status string
	)
	err := row.Scan(
		&c.ID, &c.LeadID, &c.FranchiseID, &c.AdmissionAmount, &c.CommissionPercentage,
		&c.CommissionAmount, &status, &c.PaidDate, &c.Remarks, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Commission{}, domain.ErrCommissionNotFound
	}
	if err != nil {
		return domain.Commission{}, err
	}
	c.Status = domain.Status(status)
	return c, nil
}

// CreateCommission inserts c. A second commission for the same lead
// violates uq_commissions_lead and returns ErrDuplicateCommission.
func (r *Repository) CreateCommission(ctx context.Context, c domain.Commission) (domain.Commission, error) {
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO commissions (
			id, lead_id, franchise_id, admission_amount, commission_percentage,
			commission_amount, status, remarks, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING`+commissionColumns,
		c.ID, c.LeadID, c.FranchiseID, c.AdmissionAmount, c.CommissionPercentage,
		c.CommissionAmount, string(c.Status), c.Remarks, c.CreatedAt,
	)
	created, err := scanCommission(row)
	if db.IsUniqueViolation(err) {
		return domain.Commission{}, domain.ErrDuplicateCommission
	}
	return created, err
}

func (r *Repository) GetCommission(ctx context.Context, id uuid.UUID) (domain.Commission, error) {
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT`+commissionColumns+` FROM commissions WHERE id = $1`, id)
	return scanCommission(row)
}

func (r *Repository) GetCommissionForUpdate(ctx context.Context, id uuid.UUID) (domain.Commission, error) {
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT`+commissionColumns+` FROM commissions WHERE id = $1 FOR UPDATE`, id)
	return scanCommission(row)
}

func (r *Repository) GetCommissionByLead(ctx context.Context, leadID uuid.UUID) (domain.Commission, error) {
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT`+commissionColumns+` FROM commissions WHERE lead_id = $1`, leadID)
	return scanCommission(row)
}

// UpdateCommission persists settlement fields; amounts are never rewritten.
func (r *Repository) UpdateCommission(ctx context.Context, c domain.Commission) (domain.Commission, error) {
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE commissions
		SET status = $2, paid_date = $3, remarks = $4, updated_at = $5
		WHERE id = $1
		RETURNING`+commissionColumns,
		c.ID, string(c.Status), c.PaidDate, c.Remarks, c.UpdatedAt,
	)
	return scanCommission(row)
}

// GetCommissionPercentage returns the franchise's configured rate, or nil
// when the franchise has none or does not exist.
func (r *Repository) GetCommissionPercentage(ctx context.Context, franchiseID uuid.UUID) (*float64, error) {
	var pct *float64
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT commission_percentage FROM franchises WHERE id = $1`, franchiseID,
	).Scan(&pct)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return pct, nil
}
