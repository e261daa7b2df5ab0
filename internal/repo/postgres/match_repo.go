package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

type MatchRecord struct {
	ID            int64
	UserAID       int64
	UserBID       int64
	IsActive      bool
	MatchedAt     time.Time
	LastMessageAt *time.Time
}

type ActiveMatchRecord struct {
	ID            int64
	CounterpartID int64
	DisplayName   string
	PhotoURL      *string
	MatchedAt     time.Time
	LastMessageAt *time.Time
}

// CreateIfMutualLike inserts a match when the target has already
// liked the user back. Reports whether a new row was created.
func (r *MatchRepo) CreateIfMutualLike(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM swipes
WHERE swiper_id = $1 AND swiped_id = $2 AND decision IN ('like', 'super_like')
LIMIT 1
`, targetID, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	userA, userB := orderPair(userID, targetID)

	var matchID int64
	err = tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	is_active,
	matched_at
) VALUES ($1, $2, TRUE, NOW())
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id
`, userA, userB).Scan(&matchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("create match: %w", err)
	}

	return matchID > 0, nil
}

// GetByUsers looks up the match row for a pair inside the swipe
// transaction, covering the case where the match already existed before
// this swipe was recorded.
func (r *MatchRepo) GetByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64) (MatchRecord, error) {
	if userID <= 0 || targetID <= 0 {
		return MatchRecord{}, fmt.Errorf("invalid match lookup payload")
	}
	if tx == nil {
		return MatchRecord{}, fmt.Errorf("transaction is required")
	}

	userA, userB := orderPair(userID, targetID)

	var rec MatchRecord
	err := tx.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, is_active, matched_at, last_message_at
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
LIMIT 1
`, userA, userB).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.IsActive,
		&rec.MatchedAt,
		&rec.LastMessageAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, ErrMatchNotFound
		}
		return MatchRecord{}, fmt.Errorf("get match by users: %w", err)
	}

	return rec, nil
}

func (r *MatchRepo) GetActiveByID(ctx context.Context, matchID int64) (MatchRecord, error) {
	if matchID <= 0 {
		return MatchRecord{}, fmt.Errorf("invalid match id")
	}
	if r.pool == nil {
		return MatchRecord{}, ErrMatchNotFound
	}

	var rec MatchRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, is_active, matched_at, last_message_at
FROM matches
WHERE id = $1 AND is_active = TRUE
LIMIT 1
`, matchID).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.IsActive,
		&rec.MatchedAt,
		&rec.LastMessageAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, ErrMatchNotFound
		}
		return MatchRecord{}, fmt.Errorf("get match: %w", err)
	}

	return rec, nil
}

func (r *MatchRepo) ListActiveForUser(ctx context.Context, userID int64, limit int) ([]ActiveMatchRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []ActiveMatchRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END AS counterpart_id,
	COALESCE(p.display_name, ''),
	photo.photo_url,
	m.matched_at,
	m.last_message_at
FROM matches m
JOIN profiles p ON p.user_id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
LEFT JOIN LATERAL (
	SELECT photo_url
	FROM user_photos
	WHERE user_id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
	ORDER BY is_primary DESC, display_order ASC
	LIMIT 1
) photo ON TRUE
WHERE (m.user_a_id = $1 OR m.user_b_id = $1)
	AND m.is_active = TRUE
ORDER BY m.matched_at DESC, m.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list active matches: %w", err)
	}
	defer rows.Close()

	items := make([]ActiveMatchRecord, 0, limit)
	for rows.Next() {
		var item ActiveMatchRecord
		if err := rows.Scan(
			&item.ID,
			&item.CounterpartID,
			&item.DisplayName,
			&item.PhotoURL,
			&item.MatchedAt,
			&item.LastMessageAt,
		); err != nil {
			return nil, fmt.Errorf("scan active match: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate active matches: %w", rows.Err())
	}

	return items, nil
}

// Deactivate unmatches. The caller must be a participant.
func (r *MatchRepo) Deactivate(ctx context.Context, tx pgx.Tx, matchID, userID int64) (bool, error) {
	if matchID <= 0 || userID <= 0 {
		return false, fmt.Errorf("invalid unmatch payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE matches
SET is_active = FALSE
WHERE id = $1 AND (user_a_id = $2 OR user_b_id = $2) AND is_active = TRUE
`, matchID, userID)
	if err != nil {
		return false, fmt.Errorf("deactivate match: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *MatchRepo) DeactivateByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 {
		return false, fmt.Errorf("invalid unmatch payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	userA, userB := orderPair(userID, targetID)

	result, err := tx.Exec(ctx, `
UPDATE matches
SET is_active = FALSE
WHERE user_a_id = $1 AND user_b_id = $2 AND is_active = TRUE
`, userA, userB)
	if err != nil {
		return false, fmt.Errorf("deactivate match by users: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *MatchRepo) TouchLastMessage(ctx context.Context, tx pgx.Tx, matchID int64, at time.Time) error {
	if matchID <= 0 {
		return fmt.Errorf("invalid match id")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	if _, err := tx.Exec(ctx, `
UPDATE matches
SET last_message_at = $2
WHERE id = $1
`, matchID, at.UTC()); err != nil {
		return fmt.Errorf("touch last message: %w", err)
	}

	return nil
}

func orderPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
