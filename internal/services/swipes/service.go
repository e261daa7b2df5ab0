package swipes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/domain/enums"
	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/domain/rules"
	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
	redrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/redis"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidDecision    = errors.New("invalid swipe decision")
	ErrSwipeLimitReached  = errors.New("daily swipe limit reached")
	ErrSuperLikeExhausted = errors.New("daily super like limit reached")
)

type SwipeStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, swiperID, swipedID int64, decision string, now time.Time) (pgrepo.SwipeRecord, error)
}

type QuotaStore interface {
	ConsumeSwipeQuota(ctx context.Context, tx pgx.Tx, userID int64, superLike bool) (pgrepo.QuotaRecord, error)
}

type MatchStore interface {
	CreateIfMutualLike(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error)
	GetByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64) (pgrepo.MatchRecord, error)
}

type CacheInvalidator interface {
	Delete(ctx context.Context, keys ...string) error
}

type Result struct {
	Decision            enums.SwipeDecision
	MatchCreated        bool
	MatchID             int64
	SwipesRemaining     int
	SuperLikesRemaining int
	QuotaResetAt        time.Time
}

type Service struct {
	swipeStore SwipeStore
	quotaStore QuotaStore
	matchStore MatchStore
	cache      CacheInvalidator
	withTx     func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
	now        func() time.Time
}

type Dependencies struct {
	Pool       *pgxpool.Pool
	SwipeStore SwipeStore
	QuotaStore QuotaStore
	MatchStore MatchStore
	Cache      CacheInvalidator
}

func NewService(deps Dependencies) *Service {
	return &Service{
		swipeStore: deps.SwipeStore,
		quotaStore: deps.QuotaStore,
		matchStore: deps.MatchStore,
		cache:      deps.Cache,
		withTx: func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
		now: time.Now,
	}
}

// Record stores one swipe. Quota is consumed and the swipe written in a
// single transaction, so a failed write never burns an allowance. A
// repeated swipe on the same target overwrites the earlier decision
// instead of erroring. Passes are free.
func (s *Service) Record(ctx context.Context, userID, targetID int64, decision enums.SwipeDecision) (Result, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return Result{}, ErrValidation
	}
	if !decision.Valid() {
		return Result{}, ErrInvalidDecision
	}
	if s.swipeStore == nil || s.quotaStore == nil || s.matchStore == nil {
		return Result{}, fmt.Errorf("swipe dependencies are not configured")
	}

	now := s.now().UTC()
	result := Result{
		Decision:     decision,
		QuotaResetAt: rules.NextResetAt(now, time.UTC),
	}

	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if decision.ConsumesQuota() {
			quota, err := s.quotaStore.ConsumeSwipeQuota(txCtx, tx, userID, decision == enums.DecisionSuperLike)
			if err != nil {
				switch {
				case errors.Is(err, pgrepo.ErrSuperLikeQuotaExhausted):
					return ErrSuperLikeExhausted
				case errors.Is(err, pgrepo.ErrSwipeQuotaExhausted):
					return ErrSwipeLimitReached
				case errors.Is(err, pgrepo.ErrProfileNotFound):
					return ErrValidation
				}
				return err
			}
			result.SwipesRemaining = quota.SwipesRemaining
			result.SuperLikesRemaining = quota.SuperLikesRemaining
		}

		if _, err := s.swipeStore.Upsert(txCtx, tx, userID, targetID, string(decision), now); err != nil {
			return err
		}

		if decision == enums.DecisionPass {
			return nil
		}

		created, err := s.matchStore.CreateIfMutualLike(txCtx, tx, userID, targetID)
		if err != nil {
			return err
		}
		result.MatchCreated = created

		// The pair may already hold a match row from an earlier
		// exchange; report its presence either way.
		match, err := s.matchStore.GetByUsers(txCtx, tx, userID, targetID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrMatchNotFound) {
				return nil
			}
			return err
		}
		result.MatchID = match.ID

		return nil
	}); err != nil {
		return Result{}, err
	}

	s.invalidateCaches(ctx, userID, targetID, result.MatchCreated)

	return result, nil
}

// invalidateCaches drops the exact keys a swipe can stale: the swiper's
// discovery queue, the target's likes inbox, and both conversation
// lists when a match was created.
func (s *Service) invalidateCaches(ctx context.Context, userID, targetID int64, matchCreated bool) {
	if s.cache == nil {
		return
	}

	keys := []string{
		redrepo.DiscoveryKey(userID),
		redrepo.LikesKey(targetID),
	}
	if matchCreated {
		keys = append(keys,
			redrepo.LikesKey(userID),
			redrepo.ConversationsKey(userID),
			redrepo.ConversationsKey(targetID),
		)
	}

	_ = s.cache.Delete(ctx, keys...)
}
