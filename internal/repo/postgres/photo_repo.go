package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPhotoNotFound = errors.New("photo not found")

type PhotoRepo struct {
	pool *pgxpool.Pool
}

func NewPhotoRepo(pool *pgxpool.Pool) *PhotoRepo {
	return &PhotoRepo{pool: pool}
}

type PhotoRecord struct {
	ID           int64
	UserID       int64
	PhotoURL     string
	StorageKey   string
	IsPrimary    bool
	DisplayOrder int
	CreatedAt    time.Time
}

// Insert appends a photo at the end of the user's ordering. The first
// photo a user uploads always becomes primary; an explicit primary
// demotes the previous one.
func (r *PhotoRepo) Insert(ctx context.Context, tx pgx.Tx, userID int64, photoURL, storageKey string, primary bool, now time.Time) (PhotoRecord, error) {
	if userID <= 0 || photoURL == "" {
		return PhotoRecord{}, fmt.Errorf("invalid photo payload")
	}
	if tx == nil {
		return PhotoRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var count int
	if err := tx.QueryRow(ctx, `
SELECT COUNT(*) FROM user_photos WHERE user_id = $1
`, userID).Scan(&count); err != nil {
		return PhotoRecord{}, fmt.Errorf("count photos: %w", err)
	}

	if count == 0 {
		primary = true
	}
	if primary {
		if _, err := tx.Exec(ctx, `
UPDATE user_photos SET is_primary = FALSE WHERE user_id = $1 AND is_primary = TRUE
`, userID); err != nil {
			return PhotoRecord{}, fmt.Errorf("demote primary photo: %w", err)
		}
	}

	var rec PhotoRecord
	err := tx.QueryRow(ctx, `
INSERT INTO user_photos (
	user_id,
	photo_url,
	storage_key,
	is_primary,
	display_order,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, photo_url, storage_key, is_primary, display_order, created_at
`, userID, photoURL, storageKey, primary, count, now.UTC()).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.PhotoURL,
		&rec.StorageKey,
		&rec.IsPrimary,
		&rec.DisplayOrder,
		&rec.CreatedAt,
	)
	if err != nil {
		return PhotoRecord{}, fmt.Errorf("insert photo: %w", err)
	}

	return rec, nil
}

func (r *PhotoRepo) ListByUser(ctx context.Context, userID int64) ([]PhotoRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []PhotoRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, photo_url, storage_key, is_primary, display_order, created_at
FROM user_photos
WHERE user_id = $1
ORDER BY display_order ASC, id ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	items := make([]PhotoRecord, 0, 8)
	for rows.Next() {
		var rec PhotoRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.PhotoURL,
			&rec.StorageKey,
			&rec.IsPrimary,
			&rec.DisplayOrder,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		items = append(items, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate photos: %w", rows.Err())
	}

	return items, nil
}

func (r *PhotoRepo) Get(ctx context.Context, photoID, userID int64) (PhotoRecord, error) {
	if photoID <= 0 || userID <= 0 {
		return PhotoRecord{}, fmt.Errorf("invalid photo lookup")
	}
	if r.pool == nil {
		return PhotoRecord{}, ErrPhotoNotFound
	}

	var rec PhotoRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, photo_url, storage_key, is_primary, display_order, created_at
FROM user_photos
WHERE id = $1 AND user_id = $2
`, photoID, userID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.PhotoURL,
		&rec.StorageKey,
		&rec.IsPrimary,
		&rec.DisplayOrder,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return PhotoRecord{}, ErrPhotoNotFound
	}
	if err != nil {
		return PhotoRecord{}, fmt.Errorf("get photo: %w", err)
	}

	return rec, nil
}

// Delete removes the photo and, when it was primary, promotes the first
// remaining photo by display order.
func (r *PhotoRepo) Delete(ctx context.Context, tx pgx.Tx, photoID, userID int64) (PhotoRecord, error) {
	if photoID <= 0 || userID <= 0 {
		return PhotoRecord{}, fmt.Errorf("invalid photo lookup")
	}
	if tx == nil {
		return PhotoRecord{}, fmt.Errorf("transaction is required")
	}

	var rec PhotoRecord
	err := tx.QueryRow(ctx, `
DELETE FROM user_photos
WHERE id = $1 AND user_id = $2
RETURNING id, user_id, photo_url, storage_key, is_primary, display_order, created_at
`, photoID, userID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.PhotoURL,
		&rec.StorageKey,
		&rec.IsPrimary,
		&rec.DisplayOrder,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return PhotoRecord{}, ErrPhotoNotFound
	}
	if err != nil {
		return PhotoRecord{}, fmt.Errorf("delete photo: %w", err)
	}

	if _, err := tx.Exec(ctx, `
UPDATE user_photos
SET display_order = display_order - 1
WHERE user_id = $1 AND display_order > $2
`, userID, rec.DisplayOrder); err != nil {
		return PhotoRecord{}, fmt.Errorf("compact photo order: %w", err)
	}

	if rec.IsPrimary {
		if _, err := tx.Exec(ctx, `
UPDATE user_photos
SET is_primary = TRUE
WHERE id = (
	SELECT id FROM user_photos
	WHERE user_id = $1
	ORDER BY display_order ASC, id ASC
	LIMIT 1
)
`, userID); err != nil {
			return PhotoRecord{}, fmt.Errorf("promote photo: %w", err)
		}
	}

	return rec, nil
}

func (r *PhotoRepo) SetPrimary(ctx context.Context, tx pgx.Tx, photoID, userID int64) error {
	if photoID <= 0 || userID <= 0 {
		return fmt.Errorf("invalid photo lookup")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE user_photos SET is_primary = (id = $1)
WHERE user_id = $2
`, photoID, userID)
	if err != nil {
		return fmt.Errorf("set primary photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPhotoNotFound
	}

	var exists bool
	if err := tx.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM user_photos WHERE id = $1 AND user_id = $2)
`, photoID, userID).Scan(&exists); err != nil {
		return fmt.Errorf("check photo: %w", err)
	}
	if !exists {
		return ErrPhotoNotFound
	}

	return nil
}

func (r *PhotoRepo) CountForUser(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return 0, nil
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM user_photos WHERE user_id = $1
`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count photos: %w", err)
	}

	return count, nil
}
