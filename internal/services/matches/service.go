package matches

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/domain/enums"
	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
	redrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/redis"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrMatchNotFound       = errors.New("match not found")
	ErrInvalidReportReason = errors.New("invalid report reason")
)

type MatchStore interface {
	ListActiveForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.ActiveMatchRecord, error)
	GetActiveByID(ctx context.Context, matchID int64) (pgrepo.MatchRecord, error)
	Deactivate(ctx context.Context, tx pgx.Tx, matchID, userID int64) (bool, error)
	DeactivateByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error)
}

type BlockStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, blockerID, blockedID int64, now time.Time) error
}

type ReportStore interface {
	Create(ctx context.Context, tx pgx.Tx, reporterID, reportedID int64, reason, details string, now time.Time) (pgrepo.ReportRecord, error)
}

type CacheInvalidator interface {
	Delete(ctx context.Context, keys ...string) error
}

type MatchItem struct {
	ID            int64
	CounterpartID int64
	DisplayName   string
	PhotoURL      *string
	MatchedAt     time.Time
	LastMessageAt *time.Time
}

type Service struct {
	matchStore  MatchStore
	blockStore  BlockStore
	reportStore ReportStore
	cache       CacheInvalidator
	withTx      func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
	now         func() time.Time
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	MatchStore  MatchStore
	BlockStore  BlockStore
	ReportStore ReportStore
	Cache       CacheInvalidator
}

func NewService(deps Dependencies) *Service {
	return &Service{
		matchStore:  deps.MatchStore,
		blockStore:  deps.BlockStore,
		reportStore: deps.ReportStore,
		cache:       deps.Cache,
		withTx: func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
		now: time.Now,
	}
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]MatchItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("match store is nil")
	}

	rows, err := s.matchStore.ListActiveForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, MatchItem{
			ID:            row.ID,
			CounterpartID: row.CounterpartID,
			DisplayName:   row.DisplayName,
			PhotoURL:      row.PhotoURL,
			MatchedAt:     row.MatchedAt,
			LastMessageAt: row.LastMessageAt,
		})
	}
	return items, nil
}

// Unmatch deactivates the match rather than deleting it, so message
// history survives for moderation.
func (s *Service) Unmatch(ctx context.Context, userID, matchID int64) error {
	if userID <= 0 || matchID <= 0 {
		return ErrValidation
	}
	if s.matchStore == nil {
		return fmt.Errorf("match store is nil")
	}

	match, err := s.matchStore.GetActiveByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}
	if match.UserAID != userID && match.UserBID != userID {
		return ErrMatchNotFound
	}

	var deactivated bool
	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		ok, err := s.matchStore.Deactivate(txCtx, tx, matchID, userID)
		if err != nil {
			return err
		}
		deactivated = ok
		return nil
	}); err != nil {
		return err
	}
	if !deactivated {
		return ErrMatchNotFound
	}

	s.dropConversationCaches(ctx, match.UserAID, match.UserBID)
	return nil
}

// Block hides both users from each other: the block row is written and
// any active match between them is closed in the same transaction.
func (s *Service) Block(ctx context.Context, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return ErrValidation
	}
	if s.blockStore == nil || s.matchStore == nil {
		return fmt.Errorf("block dependencies are not configured")
	}

	now := s.now().UTC()
	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if err := s.blockStore.Upsert(txCtx, tx, userID, targetID, now); err != nil {
			return err
		}
		if _, err := s.matchStore.DeactivateByUsers(txCtx, tx, userID, targetID); err != nil {
			return err
		}
		return nil
	}); err != nil {
		return err
	}

	s.dropConversationCaches(ctx, userID, targetID)
	if s.cache != nil {
		_ = s.cache.Delete(ctx,
			redrepo.DiscoveryKey(userID),
			redrepo.DiscoveryKey(targetID),
			redrepo.LikesKey(userID),
			redrepo.LikesKey(targetID),
		)
	}
	return nil
}

func (s *Service) Report(ctx context.Context, userID, targetID int64, reason enums.ReportReason, details string, alsoBlock bool) error {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return ErrValidation
	}
	if !reason.Valid() {
		return ErrInvalidReportReason
	}
	if s.reportStore == nil {
		return fmt.Errorf("report store is nil")
	}

	now := s.now().UTC()
	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := s.reportStore.Create(txCtx, tx, userID, targetID, string(reason), strings.TrimSpace(details), now); err != nil {
			return err
		}
		if !alsoBlock {
			return nil
		}
		if s.blockStore == nil {
			return fmt.Errorf("block store is nil")
		}
		if err := s.blockStore.Upsert(txCtx, tx, userID, targetID, now); err != nil {
			return err
		}
		if _, err := s.matchStore.DeactivateByUsers(txCtx, tx, userID, targetID); err != nil {
			return err
		}
		return nil
	}); err != nil {
		return err
	}

	if alsoBlock {
		s.dropConversationCaches(ctx, userID, targetID)
		if s.cache != nil {
			_ = s.cache.Delete(ctx, redrepo.DiscoveryKey(userID), redrepo.DiscoveryKey(targetID))
		}
	}
	return nil
}

func (s *Service) dropConversationCaches(ctx context.Context, userA, userB int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx,
		redrepo.ConversationsKey(userA),
		redrepo.ConversationsKey(userB),
	)
}
