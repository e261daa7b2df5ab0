package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InterestRepo struct {
	pool *pgxpool.Pool
}

func NewInterestRepo(pool *pgxpool.Pool) *InterestRepo {
	return &InterestRepo{pool: pool}
}

type InterestRecord struct {
	ID   int64
	Name string
}

func (r *InterestRepo) ListCatalog(ctx context.Context) ([]InterestRecord, error) {
	if r.pool == nil {
		return []InterestRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, name FROM interests ORDER BY name ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list interests: %w", err)
	}
	defer rows.Close()

	items := make([]InterestRecord, 0, 64)
	for rows.Next() {
		var rec InterestRecord
		if err := rows.Scan(&rec.ID, &rec.Name); err != nil {
			return nil, fmt.Errorf("scan interest: %w", err)
		}
		items = append(items, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate interests: %w", rows.Err())
	}

	return items, nil
}

func (r *InterestRepo) ListForUser(ctx context.Context, userID int64) ([]InterestRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []InterestRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT i.id, i.name
FROM user_interests ui
JOIN interests i ON i.id = ui.interest_id
WHERE ui.user_id = $1
ORDER BY i.name ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user interests: %w", err)
	}
	defer rows.Close()

	items := make([]InterestRecord, 0, 8)
	for rows.Next() {
		var rec InterestRecord
		if err := rows.Scan(&rec.ID, &rec.Name); err != nil {
			return nil, fmt.Errorf("scan user interest: %w", err)
		}
		items = append(items, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate user interests: %w", rows.Err())
	}

	return items, nil
}

// ReplaceForUser swaps the user's interest set wholesale. Unknown
// interest ids are rejected by the foreign key.
func (r *InterestRepo) ReplaceForUser(ctx context.Context, tx pgx.Tx, userID int64, interestIDs []int64) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
DELETE FROM user_interests WHERE user_id = $1
`, userID); err != nil {
		return fmt.Errorf("clear user interests: %w", err)
	}

	for _, interestID := range interestIDs {
		if _, err := tx.Exec(ctx, `
INSERT INTO user_interests (user_id, interest_id)
VALUES ($1, $2)
ON CONFLICT (user_id, interest_id) DO NOTHING
`, userID, interestID); err != nil {
			return fmt.Errorf("insert user interest: %w", err)
		}
	}

	return nil
}

// ListForUsers loads interest names for a batch of users in one query,
// keyed by user id. Used when decorating discovery candidates.
func (r *InterestRepo) ListForUsers(ctx context.Context, userIDs []int64) (map[int64][]string, error) {
	result := make(map[int64][]string, len(userIDs))
	if len(userIDs) == 0 || r.pool == nil {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT ui.user_id, i.name
FROM user_interests ui
JOIN interests i ON i.id = ui.interest_id
WHERE ui.user_id = ANY($1::bigint[])
ORDER BY ui.user_id, i.name ASC
`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list interests batch: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID int64
			name   string
		)
		if err := rows.Scan(&userID, &name); err != nil {
			return nil, fmt.Errorf("scan interest batch: %w", err)
		}
		result[userID] = append(result[userID], name)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate interest batch: %w", rows.Err())
	}

	return result, nil
}
