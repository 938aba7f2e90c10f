package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-progress-service/internal/domain"
)

const uniqueViolation = "23505"

// ActivityRepository stores one JSONB activity document per user. Updates lock the row with
// SELECT ... FOR UPDATE, which serializes writers for the same user across instances.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) Create(ctx context.Context, activity domain.Activity) error {
	doc, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO activities (user_id, doc, is_deleted, xp_total, created_at, updated_at)
		VALUES ($1, $2::jsonb, $3, $4, $5, $6)`,
		activity.UserID, string(doc), activity.IsDeleted, activity.XP.Total, activity.CreatedAt, activity.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrActivityExists
	}
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) Get(ctx context.Context, userID string) (domain.Activity, error) {
	return scanActivity(r.pool.QueryRow(ctx, `SELECT doc FROM activities WHERE user_id=$1`, userID))
}

func (r *ActivityRepository) Update(ctx context.Context, userID string, fn func(*domain.Activity) error) (domain.Activity, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	activity, err := scanActivity(tx.QueryRow(ctx, `SELECT doc FROM activities WHERE user_id=$1 FOR UPDATE`, userID))
	if err != nil {
		return domain.Activity{}, err
	}
	if err := fn(&activity); err != nil {
		return domain.Activity{}, err
	}

	doc, err := json.Marshal(activity)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("marshal activity: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE activities
		SET doc=$2::jsonb, is_deleted=$3, xp_total=$4, updated_at=$5, version=version+1
		WHERE user_id=$1`,
		userID, string(doc), activity.IsDeleted, activity.XP.Total, activity.UpdatedAt); err != nil {
		return domain.Activity{}, fmt.Errorf("update activity: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Activity{}, fmt.Errorf("commit: %w", err)
	}
	return activity, nil
}

func (r *ActivityRepository) List(ctx context.Context) ([]domain.Activity, error) {
	rows, err := r.pool.Query(ctx, `SELECT doc FROM activities WHERE NOT is_deleted ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var out []domain.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, activity)
	}
	return out, rows.Err()
}

func scanActivity(row pgx.Row) (domain.Activity, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Activity{}, domain.ErrActivityNotFound
		}
		return domain.Activity{}, fmt.Errorf("scan activity: %w", err)
	}
	var activity domain.Activity
	if err := json.Unmarshal(raw, &activity); err != nil {
		return domain.Activity{}, fmt.Errorf("unmarshal activity: %w", err)
	}
	return activity, nil
}
