package repository

import (
	"context"
	"errors"
	"time"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/domain"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the Postgres store for leads and their status history.
// Every query runs on the transaction carried by ctx when there is one.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `
	id, franchise_id, student_name, student_phone, student_email, parent_name,
	course_interested, current_class, city, status, remarks, admission_amount,
	enrollment_date, created_at, updated_at`

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		lead   domain.Lead
		status string
	)
	err := row.Scan(
		&lead.ID, &lead.FranchiseID, &lead.StudentName, &lead.StudentPhone, &lead.StudentEmail, &lead.ParentName,
		&lead.CourseInterested, &lead.CurrentClass, &lead.City, &status, &lead.Remarks, &lead.AdmissionAmount,
		&lead.EnrollmentDate, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, domain.ErrLeadNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Status = domain.Status(status)
	return lead, nil
}

func (r *Repository) CreateLead(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO leads (
			id, franchise_id, student_name, student_phone, student_email, parent_name,
			course_interested, current_class, city, status, remarks, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING`+leadColumns,
		lead.ID, lead.FranchiseID, lead.StudentName, lead.StudentPhone, lead.StudentEmail, lead.ParentName,
		lead.CourseInterested, lead.CurrentClass, lead.City, string(lead.Status), lead.Remarks, lead.CreatedAt,
	)
	return scanLead(row)
}

func (r *Repository) GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT`+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

// GetLeadForUpdate locks the lead row until the surrounding transaction ends.
func (r *Repository) GetLeadForUpdate(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT`+leadColumns+` FROM leads WHERE id = $1 FOR UPDATE`, id)
	return scanLead(row)
}

// UpdateLead persists the mutable lifecycle fields.
func (r *Repository) UpdateLead(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	updatedAt := lead.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE leads
		SET status = $2, remarks = $3, admission_amount = $4, enrollment_date = $5, updated_at = $6
		WHERE id = $1
		RETURNING`+leadColumns,
		lead.ID, string(lead.Status), lead.Remarks, lead.AdmissionAmount, lead.EnrollmentDate, updatedAt,
	)
	return scanLead(row)
}
