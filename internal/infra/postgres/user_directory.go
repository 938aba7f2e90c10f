package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-progress-service/internal/domain"
)

// UserDirectory reads display profiles from the users table owned by the account service.
type UserDirectory struct {
	pool *pgxpool.Pool
}

func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

func (d *UserDirectory) Profiles(ctx context.Context, userIDs []string) (map[string]domain.UserProfile, error) {
	out := make(map[string]domain.UserProfile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	rows, err := d.pool.Query(ctx, `SELECT id, name, COALESCE(photo, '') FROM users WHERE id = ANY($1)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.UserProfile
		if err := rows.Scan(&p.ID, &p.Name, &p.Photo); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}
