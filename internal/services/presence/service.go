package presence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/domain/rules"
	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

type Store interface {
	TouchLastActive(ctx context.Context, userID int64, at time.Time) error
	GetPresence(ctx context.Context, userID int64) (time.Time, error)
}

type Status struct {
	Online       bool
	LastActiveAt time.Time
}

type Service struct {
	store        Store
	onlineWindow time.Duration
	now          func() time.Time
}

func NewService(store Store, onlineWindow time.Duration) *Service {
	if onlineWindow <= 0 {
		onlineWindow = rules.DefaultOnlineWindow
	}

	return &Service{
		store:        store,
		onlineWindow: onlineWindow,
		now:          time.Now,
	}
}

func (s *Service) Touch(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("presence store is nil")
	}

	if err := s.store.TouchLastActive(ctx, userID, s.now().UTC()); err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("touch last active: %w", err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, userID int64) (Status, error) {
	if userID <= 0 {
		return Status{}, ErrValidation
	}
	if s.store == nil {
		return Status{}, fmt.Errorf("presence store is nil")
	}

	lastActiveAt, err := s.store.GetPresence(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return Status{}, ErrNotFound
		}
		return Status{}, fmt.Errorf("get presence: %w", err)
	}

	return Status{
		Online:       rules.IsOnline(lastActiveAt, s.now().UTC(), s.onlineWindow),
		LastActiveAt: lastActiveAt,
	}, nil
}
