package interests

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrTooManySelected = errors.New("too many interests selected")
)

const defaultMaxSelected = 5

type Store interface {
	ListCatalog(ctx context.Context) ([]pgrepo.InterestRecord, error)
	ListForUser(ctx context.Context, userID int64) ([]pgrepo.InterestRecord, error)
	ReplaceForUser(ctx context.Context, tx pgx.Tx, userID int64, interestIDs []int64) error
}

type Config struct {
	MaxSelected int
}

type Interest struct {
	ID   int64
	Name string
}

type Service struct {
	store  Store
	cfg    Config
	withTx func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

func NewService(pool *pgxpool.Pool, store Store, cfg Config) *Service {
	if cfg.MaxSelected <= 0 {
		cfg.MaxSelected = defaultMaxSelected
	}

	return &Service{
		store: store,
		cfg:   cfg,
		withTx: func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
	}
}

func (s *Service) Catalog(ctx context.Context) ([]Interest, error) {
	if s.store == nil {
		return nil, fmt.Errorf("interest store is nil")
	}

	records, err := s.store.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return mapInterests(records), nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Interest, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("interest store is nil")
	}

	records, err := s.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapInterests(records), nil
}

// Replace swaps the whole selection. Duplicate ids collapse to one.
func (s *Service) Replace(ctx context.Context, userID int64, interestIDs []int64) ([]Interest, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("interest store is nil")
	}

	deduped := make([]int64, 0, len(interestIDs))
	seen := make(map[int64]struct{}, len(interestIDs))
	for _, id := range interestIDs {
		if id <= 0 {
			return nil, ErrValidation
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}

	if len(deduped) > s.cfg.MaxSelected {
		return nil, ErrTooManySelected
	}

	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		return s.store.ReplaceForUser(txCtx, tx, userID, deduped)
	}); err != nil {
		return nil, err
	}

	return s.ListForUser(ctx, userID)
}

func mapInterests(records []pgrepo.InterestRecord) []Interest {
	out := make([]Interest, 0, len(records))
	for _, rec := range records {
		out = append(out, Interest{ID: rec.ID, Name: rec.Name})
	}
	return out
}
