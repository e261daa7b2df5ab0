package likes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/domain/enums"
	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
	redrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/redis"
)

const defaultListLimit = 100

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

type TierStore interface {
	GetQuota(ctx context.Context, userID int64) (pgrepo.QuotaRecord, error)
}

type IncomingStore interface {
	CountIncomingLikes(ctx context.Context, userID int64) (int, error)
	ListIncomingLikes(ctx context.Context, userID int64, limit int) ([]pgrepo.IncomingLikeRecord, error)
}

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Config struct {
	ListLimit int
	CacheTTL  time.Duration
}

type IncomingLike struct {
	SwipeID     int64     `json:"swipe_id"`
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"display_name"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	SuperLike   bool      `json:"super_like"`
	LikedAt     time.Time `json:"liked_at"`
}

// Inbox is what every tier receives: the count is always present, the
// liker identities only when the tier can see them.
type Inbox struct {
	Likes  []IncomingLike `json:"likes"`
	CanSee bool           `json:"can_see"`
	Count  int            `json:"count"`
}

type Service struct {
	tiers    TierStore
	incoming IncomingStore
	cache    Cache
	logger   *zap.Logger
	cfg      Config
}

type Dependencies struct {
	Tiers    TierStore
	Incoming IncomingStore
	Cache    Cache
	Logger   *zap.Logger
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = defaultListLimit
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Service{
		tiers:    deps.Tiers,
		incoming: deps.Incoming,
		cache:    deps.Cache,
		logger:   deps.Logger,
		cfg:      cfg,
	}
}

// Incoming reports who liked the user before any swipe back. Free tier
// gets the count only; gold and platinum get the full list.
func (s *Service) Incoming(ctx context.Context, userID int64) (Inbox, error) {
	if userID <= 0 {
		return Inbox{}, ErrValidation
	}
	if s.tiers == nil || s.incoming == nil {
		return Inbox{}, fmt.Errorf("likes dependencies are not configured")
	}

	if s.cache != nil {
		var cached Inbox
		found, err := s.cache.GetJSON(ctx, redrepo.LikesKey(userID), &cached)
		if err != nil {
			s.logger.Warn("likes cache read failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		if found {
			return cached, nil
		}
	}

	quota, err := s.tiers.GetQuota(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return Inbox{}, ErrNotFound
		}
		return Inbox{}, fmt.Errorf("load subscription tier: %w", err)
	}

	canSee := enums.SubscriptionTier(quota.SubscriptionTier).CanSeeLikes()

	count, err := s.incoming.CountIncomingLikes(ctx, userID)
	if err != nil {
		return Inbox{}, fmt.Errorf("count incoming likes: %w", err)
	}

	inbox := Inbox{
		Likes:  []IncomingLike{},
		CanSee: canSee,
		Count:  count,
	}

	if canSee && count > 0 {
		records, err := s.incoming.ListIncomingLikes(ctx, userID, s.cfg.ListLimit)
		if err != nil {
			return Inbox{}, fmt.Errorf("list incoming likes: %w", err)
		}
		for _, rec := range records {
			inbox.Likes = append(inbox.Likes, IncomingLike{
				SwipeID:     rec.SwipeID,
				UserID:      rec.SwiperID,
				DisplayName: rec.DisplayName,
				PhotoURL:    rec.PhotoURL,
				SuperLike:   rec.Decision == string(enums.DecisionSuperLike),
				LikedAt:     rec.CreatedAt,
			})
		}
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, redrepo.LikesKey(userID), inbox, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("likes cache write failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}

	return inbox, nil
}
