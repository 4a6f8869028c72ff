package repository

import (
	"context"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/domain"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/db"

	"github.com/google/uuid"
)

func (r *Repository) AppendHistory(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	var previous *string
	if entry.PreviousStatus != nil {
		p := string(*entry.PreviousStatus)
		previous = &p
	}

	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO lead_status_history (id, lead_id, previous_status, new_status, remarks, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq
	`, entry.ID, entry.LeadID, previous, string(entry.NewStatus), entry.Remarks, entry.ChangedBy, entry.CreatedAt,
	).Scan(&entry.Seq)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	return entry, nil
}

// ListHistory returns a lead's entries oldest first; seq breaks timestamp ties.
func (r *Repository) ListHistory(ctx context.Context, leadID uuid.UUID) ([]domain.HistoryEntry, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT id, seq, lead_id, previous_status, new_status, remarks, changed_by, created_at
		FROM lead_status_history
		WHERE lead_id = $1
		ORDER BY created_at ASC, seq ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		var (
			entry     domain.HistoryEntry
			previous  *string
			newStatus string
		)
		if err := rows.Scan(&entry.ID, &entry.Seq, &entry.LeadID, &previous, &newStatus, &entry.Remarks, &entry.ChangedBy, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if previous != nil {
			p := domain.Status(*previous)
			entry.PreviousStatus = &p
		}
		entry.NewStatus = domain.Status(newStatus)
		entries = append(entries, entry)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return entries, nil
}
