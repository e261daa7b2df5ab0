package messages

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
	redrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/redis"
)

const (
	defaultMaxLength         = 2000
	defaultConversationLimit = 100
)

var (
	ErrValidation     = errors.New("validation error")
	ErrMatchNotFound  = errors.New("match not found")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message is too long")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type MessageStore interface {
	Insert(ctx context.Context, tx pgx.Tx, matchID, senderID int64, content string, now time.Time) (pgrepo.MessageRecord, error)
	ListByMatch(ctx context.Context, matchID int64) ([]pgrepo.MessageRecord, error)
	MarkThreadRead(ctx context.Context, matchID, readerID int64, at time.Time) (int64, error)
	ListConversations(ctx context.Context, userID int64, limit int) ([]pgrepo.ConversationRecord, error)
}

type MatchStore interface {
	GetActiveByID(ctx context.Context, matchID int64) (pgrepo.MatchRecord, error)
	TouchLastMessage(ctx context.Context, tx pgx.Tx, matchID int64, at time.Time) error
}

type RateLimiter interface {
	AllowMessage(ctx context.Context, userID int64) (int64, bool, error)
}

type Broadcaster interface {
	PublishMessage(ctx context.Context, event redrepo.MessageEvent) error
	SubscribeMessages(ctx context.Context, handle func(redrepo.MessageEvent)) error
}

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Config struct {
	MaxMessageLength  int
	ConversationLimit int
	CacheTTL          time.Duration
}

type Message struct {
	ID        int64      `json:"id"`
	MatchID   int64      `json:"match_id"`
	SenderID  int64      `json:"sender_id"`
	Content   string     `json:"content"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type Conversation struct {
	MatchID       int64     `json:"match_id"`
	CounterpartID int64     `json:"counterpart_id"`
	DisplayName   string    `json:"display_name"`
	PhotoURL      *string   `json:"photo_url,omitempty"`
	MatchedAt     time.Time `json:"matched_at"`
	LastMessage   *Message  `json:"last_message,omitempty"`
	UnreadCount   int       `json:"unread_count"`
}

type Service struct {
	messageStore MessageStore
	matchStore   MatchStore
	rateLimiter  RateLimiter
	broadcaster  Broadcaster
	cache        Cache
	logger       *zap.Logger
	cfg          Config
	withTx       func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
	now          func() time.Time
}

type Dependencies struct {
	Pool         *pgxpool.Pool
	MessageStore MessageStore
	MatchStore   MatchStore
	RateLimiter  RateLimiter
	Broadcaster  Broadcaster
	Cache        Cache
	Logger       *zap.Logger
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = defaultMaxLength
	}
	if cfg.ConversationLimit <= 0 {
		cfg.ConversationLimit = defaultConversationLimit
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Service{
		messageStore: deps.MessageStore,
		matchStore:   deps.MatchStore,
		rateLimiter:  deps.RateLimiter,
		broadcaster:  deps.Broadcaster,
		cache:        deps.Cache,
		logger:       deps.Logger,
		cfg:          cfg,
		withTx: func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
		now: time.Now,
	}
}

// Conversations lists the user's active matches newest-activity first:
// a conversation with messages sorts by its last message, one without
// by the match time.
func (s *Service) Conversations(ctx context.Context, userID int64) ([]Conversation, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.messageStore == nil {
		return nil, fmt.Errorf("message store is nil")
	}

	if s.cache != nil {
		var cached []Conversation
		found, err := s.cache.GetJSON(ctx, redrepo.ConversationsKey(userID), &cached)
		if err != nil {
			s.logger.Warn("conversations cache read failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		if found {
			return cached, nil
		}
	}

	records, err := s.messageStore.ListConversations(ctx, userID, s.cfg.ConversationLimit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	conversations := make([]Conversation, 0, len(records))
	for _, rec := range records {
		conversations = append(conversations, mapConversation(rec))
	}
	sort.SliceStable(conversations, func(i, j int) bool {
		return lastActivity(conversations[i]).After(lastActivity(conversations[j]))
	})

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, redrepo.ConversationsKey(userID), conversations, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("conversations cache write failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}

	return conversations, nil
}

// Thread returns the full message history, oldest first. Reading a
// thread never changes read state; clients call MarkThreadRead
// explicitly.
func (s *Service) Thread(ctx context.Context, userID, matchID int64) ([]Message, error) {
	if userID <= 0 || matchID <= 0 {
		return nil, ErrValidation
	}
	if s.messageStore == nil || s.matchStore == nil {
		return nil, fmt.Errorf("message dependencies are not configured")
	}

	if _, err := s.requireMembership(ctx, userID, matchID); err != nil {
		return nil, err
	}

	records, err := s.messageStore.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list thread: %w", err)
	}

	messages := make([]Message, 0, len(records))
	for _, rec := range records {
		messages = append(messages, mapMessage(rec))
	}
	return messages, nil
}

// MarkThreadRead flags the counterpart's unread messages as read and
// reports how many changed. Calling it again is a no-op.
func (s *Service) MarkThreadRead(ctx context.Context, userID, matchID int64) (int64, error) {
	if userID <= 0 || matchID <= 0 {
		return 0, ErrValidation
	}
	if s.messageStore == nil || s.matchStore == nil {
		return 0, fmt.Errorf("message dependencies are not configured")
	}

	if _, err := s.requireMembership(ctx, userID, matchID); err != nil {
		return 0, err
	}

	updated, err := s.messageStore.MarkThreadRead(ctx, matchID, userID, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("mark thread read: %w", err)
	}

	if updated > 0 && s.cache != nil {
		_ = s.cache.Delete(ctx, redrepo.ConversationsKey(userID))
	}

	return updated, nil
}

func (s *Service) Send(ctx context.Context, userID, matchID int64, content string) (Message, error) {
	if userID <= 0 || matchID <= 0 {
		return Message{}, ErrValidation
	}
	if s.messageStore == nil || s.matchStore == nil {
		return Message{}, fmt.Errorf("message dependencies are not configured")
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Message{}, ErrEmptyMessage
	}
	if len([]rune(trimmed)) > s.cfg.MaxMessageLength {
		return Message{}, ErrMessageTooLong
	}

	match, err := s.requireMembership(ctx, userID, matchID)
	if err != nil {
		return Message{}, err
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowMessage(ctx, userID)
		if err != nil {
			return Message{}, fmt.Errorf("apply message rate limiter: %w", err)
		}
		if !allowed {
			return Message{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	now := s.now().UTC()
	var record pgrepo.MessageRecord
	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		rec, err := s.messageStore.Insert(txCtx, tx, matchID, userID, trimmed, now)
		if err != nil {
			return err
		}
		if err := s.matchStore.TouchLastMessage(txCtx, tx, matchID, now); err != nil {
			return err
		}
		record = rec
		return nil
	}); err != nil {
		return Message{}, err
	}

	recipientID := match.UserAID
	if recipientID == userID {
		recipientID = match.UserBID
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx,
			redrepo.ConversationsKey(userID),
			redrepo.ConversationsKey(recipientID),
		)
	}

	if s.broadcaster != nil {
		event := redrepo.MessageEvent{
			MatchID:     matchID,
			MessageID:   record.ID,
			SenderID:    userID,
			RecipientID: recipientID,
			SentAt:      now,
		}
		if err := s.broadcaster.PublishMessage(ctx, event); err != nil {
			s.logger.Warn("publish message event failed",
				zap.Int64("match_id", matchID),
				zap.Int64("message_id", record.ID),
				zap.Error(err))
		}
	}

	return mapMessage(record), nil
}

// Run consumes message events published by other instances and drops
// the affected conversation caches. Blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.broadcaster == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	return s.broadcaster.SubscribeMessages(ctx, func(event redrepo.MessageEvent) {
		if s.cache == nil {
			return
		}
		keys := []string{redrepo.ConversationsKey(event.SenderID)}
		if event.RecipientID > 0 {
			keys = append(keys, redrepo.ConversationsKey(event.RecipientID))
		}
		if err := s.cache.Delete(ctx, keys...); err != nil {
			s.logger.Warn("drop conversation caches failed",
				zap.Int64("match_id", event.MatchID),
				zap.Error(err))
		}
	})
}

func (s *Service) requireMembership(ctx context.Context, userID, matchID int64) (pgrepo.MatchRecord, error) {
	match, err := s.matchStore.GetActiveByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return pgrepo.MatchRecord{}, ErrMatchNotFound
		}
		return pgrepo.MatchRecord{}, fmt.Errorf("load match: %w", err)
	}
	if match.UserAID != userID && match.UserBID != userID {
		return pgrepo.MatchRecord{}, ErrMatchNotFound
	}
	return match, nil
}

// lastActivity is the timestamp a conversation sorts by: its last
// message when one exists, the match time otherwise.
func lastActivity(c Conversation) time.Time {
	if c.LastMessage != nil && c.LastMessage.CreatedAt.After(c.MatchedAt) {
		return c.LastMessage.CreatedAt
	}
	return c.MatchedAt
}

func mapMessage(rec pgrepo.MessageRecord) Message {
	return Message{
		ID:        rec.ID,
		MatchID:   rec.MatchID,
		SenderID:  rec.SenderID,
		Content:   rec.Content,
		IsRead:    rec.IsRead,
		ReadAt:    rec.ReadAt,
		CreatedAt: rec.CreatedAt,
	}
}

func mapConversation(rec pgrepo.ConversationRecord) Conversation {
	conversation := Conversation{
		MatchID:       rec.MatchID,
		CounterpartID: rec.CounterpartID,
		DisplayName:   rec.DisplayName,
		PhotoURL:      rec.PhotoURL,
		MatchedAt:     rec.MatchedAt,
		UnreadCount:   rec.UnreadCount,
	}
	if rec.LastMessage != nil {
		message := mapMessage(*rec.LastMessage)
		conversation.LastMessage = &message
	}
	return conversation
}
