// Package devices reads registered push tokens.
package devices

import (
	"context"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListTokens returns every token registered for ownerID, oldest first.
func (r *Repository) ListTokens(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx,
		`SELECT token FROM device_tokens WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := make([]string, 0)
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
