package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

type MessageRecord struct {
	ID        int64
	MatchID   int64
	SenderID  int64
	Content   string
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}

type ConversationRecord struct {
	MatchID       int64
	CounterpartID int64
	DisplayName   string
	PhotoURL      *string
	MatchedAt     time.Time
	LastMessage   *MessageRecord
	UnreadCount   int
}

func (r *MessageRepo) Insert(ctx context.Context, tx pgx.Tx, matchID, senderID int64, content string, now time.Time) (MessageRecord, error) {
	if matchID <= 0 || senderID <= 0 || strings.TrimSpace(content) == "" {
		return MessageRecord{}, fmt.Errorf("invalid message payload")
	}
	if tx == nil {
		return MessageRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec MessageRecord
	err := tx.QueryRow(ctx, `
INSERT INTO messages (
	match_id,
	sender_id,
	content,
	is_read,
	created_at
) VALUES ($1, $2, $3, FALSE, $4)
RETURNING id, match_id, sender_id, content, is_read, read_at, created_at
`, matchID, senderID, content, now.UTC()).Scan(
		&rec.ID,
		&rec.MatchID,
		&rec.SenderID,
		&rec.Content,
		&rec.IsRead,
		&rec.ReadAt,
		&rec.CreatedAt,
	)
	if err != nil {
		return MessageRecord{}, fmt.Errorf("insert message: %w", err)
	}

	return rec, nil
}

func (r *MessageRepo) ListByMatch(ctx context.Context, matchID int64) ([]MessageRecord, error) {
	if matchID <= 0 {
		return nil, fmt.Errorf("invalid match id")
	}
	if r.pool == nil {
		return []MessageRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, match_id, sender_id, content, is_read, read_at, created_at
FROM messages
WHERE match_id = $1
ORDER BY created_at ASC, id ASC
`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]MessageRecord, 0, 64)
	for rows.Next() {
		var rec MessageRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.MatchID,
			&rec.SenderID,
			&rec.Content,
			&rec.IsRead,
			&rec.ReadAt,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}

// MarkThreadRead flags every message from the counterpart as read. Only
// unread rows are touched, so a second call never moves read_at.
func (r *MessageRepo) MarkThreadRead(ctx context.Context, matchID, readerID int64, at time.Time) (int64, error) {
	if matchID <= 0 || readerID <= 0 {
		return 0, fmt.Errorf("invalid read receipt payload")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	if r.pool == nil {
		return 0, nil
	}

	result, err := r.pool.Exec(ctx, `
UPDATE messages
SET is_read = TRUE, read_at = $3
WHERE match_id = $1 AND sender_id <> $2 AND is_read = FALSE
`, matchID, readerID, at.UTC())
	if err != nil {
		return 0, fmt.Errorf("mark thread read: %w", err)
	}

	return result.RowsAffected(), nil
}

// ListConversations projects the user's active matches into summaries:
// counterpart identity, last message and unread count, ordered by the
// later of the last message time and the match time.
func (r *MessageRepo) ListConversations(ctx context.Context, userID int64, limit int) ([]ConversationRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []ConversationRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END AS counterpart_id,
	COALESCE(p.display_name, ''),
	photo.photo_url,
	m.matched_at,
	lm.id,
	lm.sender_id,
	lm.content,
	lm.is_read,
	lm.read_at,
	lm.created_at,
	COALESCE(unread.count, 0)
FROM matches m
JOIN profiles p ON p.user_id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
LEFT JOIN LATERAL (
	SELECT photo_url
	FROM user_photos
	WHERE user_id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
	ORDER BY is_primary DESC, display_order ASC
	LIMIT 1
) photo ON TRUE
LEFT JOIN LATERAL (
	SELECT id, sender_id, content, is_read, read_at, created_at
	FROM messages
	WHERE match_id = m.id
	ORDER BY created_at DESC, id DESC
	LIMIT 1
) lm ON TRUE
LEFT JOIN LATERAL (
	SELECT COUNT(*) AS count
	FROM messages
	WHERE match_id = m.id AND sender_id <> $1 AND is_read = FALSE
) unread ON TRUE
WHERE (m.user_a_id = $1 OR m.user_b_id = $1)
	AND m.is_active = TRUE
ORDER BY GREATEST(COALESCE(lm.created_at, m.matched_at), m.matched_at) DESC, m.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	items := make([]ConversationRecord, 0, limit)
	for rows.Next() {
		var (
			rec           ConversationRecord
			lastID        *int64
			lastSenderID  *int64
			lastContent   *string
			lastIsRead    *bool
			lastReadAt    *time.Time
			lastCreatedAt *time.Time
		)
		if err := rows.Scan(
			&rec.MatchID,
			&rec.CounterpartID,
			&rec.DisplayName,
			&rec.PhotoURL,
			&rec.MatchedAt,
			&lastID,
			&lastSenderID,
			&lastContent,
			&lastIsRead,
			&lastReadAt,
			&lastCreatedAt,
			&rec.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		if lastID != nil {
			rec.LastMessage = &MessageRecord{
				ID:        *lastID,
				MatchID:   rec.MatchID,
				SenderID:  *lastSenderID,
				Content:   *lastContent,
				IsRead:    *lastIsRead,
				ReadAt:    lastReadAt,
				CreatedAt: *lastCreatedAt,
			}
		}
		items = append(items, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate conversations: %w", rows.Err())
	}

	return items, nil
}
