package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BlockRepo struct {
	pool *pgxpool.Pool
}

func NewBlockRepo(pool *pgxpool.Pool) *BlockRepo {
	return &BlockRepo{pool: pool}
}

func (r *BlockRepo) Upsert(ctx context.Context, tx pgx.Tx, blockerID, blockedID int64, now time.Time) error {
	if blockerID <= 0 || blockedID <= 0 || blockerID == blockedID {
		return fmt.Errorf("invalid block payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO user_blocks (blocker_id, blocked_id, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (blocker_id, blocked_id) DO NOTHING
`, blockerID, blockedID, now.UTC()); err != nil {
		return fmt.Errorf("insert block: %w", err)
	}

	return nil
}

// ListBlockedEitherWay returns every user the given user has blocked or
// been blocked by. Blocks hide both sides from each other.
func (r *BlockRepo) ListBlockedEitherWay(ctx context.Context, userID int64) ([]int64, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []int64{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT blocked_id FROM user_blocks WHERE blocker_id = $1
UNION
SELECT blocker_id FROM user_blocks WHERE blocked_id = $1
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, 16)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate blocks: %w", rows.Err())
	}

	return ids, nil
}
