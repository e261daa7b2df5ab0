package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

type SwipeRecord struct {
	ID        int64
	SwiperID  int64
	SwipedID  int64
	Decision  string
	CreatedAt time.Time
}

type IncomingLikeRecord struct {
	SwipeID     int64
	SwiperID    int64
	Decision    string
	DisplayName string
	PhotoURL    *string
	CreatedAt   time.Time
}

// Upsert records a decision. A repeated swipe on the same target from
// another device replaces the previous decision instead of inserting a
// duplicate row.
func (r *SwipeRepo) Upsert(ctx context.Context, tx pgx.Tx, swiperID, swipedID int64, decision string, now time.Time) (SwipeRecord, error) {
	if swiperID <= 0 || swipedID <= 0 || swiperID == swipedID || strings.TrimSpace(decision) == "" {
		return SwipeRecord{}, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec SwipeRecord
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (
	swiper_id,
	swiped_id,
	decision,
	created_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (swiper_id, swiped_id) DO UPDATE SET
	decision = EXCLUDED.decision,
	created_at = EXCLUDED.created_at
RETURNING id, swiper_id, swiped_id, decision, created_at
`, swiperID, swipedID, strings.TrimSpace(decision), now.UTC()).Scan(
		&rec.ID,
		&rec.SwiperID,
		&rec.SwipedID,
		&rec.Decision,
		&rec.CreatedAt,
	)
	if err != nil {
		return SwipeRecord{}, fmt.Errorf("upsert swipe: %w", err)
	}

	return rec, nil
}

func (r *SwipeRepo) ListSwipedIDs(ctx context.Context, swiperID int64) ([]int64, error) {
	if swiperID <= 0 {
		return nil, fmt.Errorf("invalid swiper id")
	}
	if r.pool == nil {
		return []int64{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT swiped_id
FROM swipes
WHERE swiper_id = $1
`, swiperID)
	if err != nil {
		return nil, fmt.Errorf("list swiped ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, 64)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan swiped id: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate swiped ids: %w", rows.Err())
	}

	return ids, nil
}

func (r *SwipeRepo) CountIncomingLikes(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return 0, nil
	}

	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM swipes s
WHERE s.swiped_id = $1
	AND s.decision IN ('like', 'super_like')
	AND NOT EXISTS (
		SELECT 1
		FROM matches m
		WHERE m.user_a_id = LEAST(s.swiper_id, s.swiped_id)
			AND m.user_b_id = GREATEST(s.swiper_id, s.swiped_id)
	)
`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count incoming likes: %w", err)
	}

	return count, nil
}

// ListIncomingLikes returns like/super_like swipes targeting the user,
// newest first, enriched with the swiper's display name and primary
// photo. Swipers the user has already matched with are excluded.
func (r *SwipeRepo) ListIncomingLikes(ctx context.Context, userID int64, limit int) ([]IncomingLikeRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []IncomingLikeRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	s.id,
	s.swiper_id,
	s.decision,
	COALESCE(p.display_name, ''),
	photo.photo_url,
	s.created_at
FROM swipes s
JOIN profiles p ON p.user_id = s.swiper_id
LEFT JOIN LATERAL (
	SELECT photo_url
	FROM user_photos
	WHERE user_id = s.swiper_id
	ORDER BY is_primary DESC, display_order ASC
	LIMIT 1
) photo ON TRUE
WHERE s.swiped_id = $1
	AND s.decision IN ('like', 'super_like')
	AND NOT EXISTS (
		SELECT 1
		FROM matches m
		WHERE m.user_a_id = LEAST(s.swiper_id, s.swiped_id)
			AND m.user_b_id = GREATEST(s.swiper_id, s.swiped_id)
	)
ORDER BY s.created_at DESC, s.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list incoming likes: %w", err)
	}
	defer rows.Close()

	items := make([]IncomingLikeRecord, 0, limit)
	for rows.Next() {
		var item IncomingLikeRecord
		if err := rows.Scan(
			&item.SwipeID,
			&item.SwiperID,
			&item.Decision,
			&item.DisplayName,
			&item.PhotoURL,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan incoming like: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate incoming likes: %w", rows.Err())
	}

	return items, nil
}
