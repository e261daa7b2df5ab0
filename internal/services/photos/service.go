package photos

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("photo not found")
	ErrPhotoLimitReached = errors.New("photo limit reached")
)

const defaultMaxPhotos = 6

type Store interface {
	Insert(ctx context.Context, tx pgx.Tx, userID int64, photoURL, storageKey string, primary bool, now time.Time) (pgrepo.PhotoRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]pgrepo.PhotoRecord, error)
	Get(ctx context.Context, photoID, userID int64) (pgrepo.PhotoRecord, error)
	Delete(ctx context.Context, tx pgx.Tx, photoID, userID int64) (pgrepo.PhotoRecord, error)
	SetPrimary(ctx context.Context, tx pgx.Tx, photoID, userID int64) error
	CountForUser(ctx context.Context, userID int64) (int, error)
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutPhoto(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
}

type Config struct {
	MaxPhotos int
}

type Photo struct {
	ID        int64
	URL       string
	IsPrimary bool
	Order     int
	CreatedAt time.Time
}

type Service struct {
	store   Store
	storage ObjectStorage
	cfg     Config
	withTx  func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
	now     func() time.Time
}

func NewService(pool *pgxpool.Pool, store Store, storage ObjectStorage, cfg Config) *Service {
	if cfg.MaxPhotos <= 0 {
		cfg.MaxPhotos = defaultMaxPhotos
	}

	return &Service{
		store:   store,
		storage: storage,
		cfg:     cfg,
		withTx: func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
		now: time.Now,
	}
}

// Upload stores the object first and records it inside a transaction.
// The object is removed again if the record cannot be written.
func (s *Service) Upload(ctx context.Context, userID int64, fileName, contentType string, body io.Reader, size int64, primary bool) (Photo, error) {
	if userID <= 0 || body == nil || size <= 0 {
		return Photo{}, ErrValidation
	}
	if s.store == nil || s.storage == nil {
		return Photo{}, fmt.Errorf("photo dependencies are not configured")
	}

	count, err := s.store.CountForUser(ctx, userID)
	if err != nil {
		return Photo{}, fmt.Errorf("count photos: %w", err)
	}
	if count >= s.cfg.MaxPhotos {
		return Photo{}, ErrPhotoLimitReached
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Photo{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey, err := buildPhotoObjectKey(userID, fileName)
	if err != nil {
		return Photo{}, fmt.Errorf("build object key: %w", err)
	}

	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	if err := s.storage.PutPhoto(ctx, objectKey, body, size, contentType); err != nil {
		return Photo{}, fmt.Errorf("put object: %w", err)
	}

	url := s.storage.PublicURL(objectKey)
	now := s.now().UTC()

	var record pgrepo.PhotoRecord
	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		rec, err := s.store.Insert(txCtx, tx, userID, url, objectKey, primary, now)
		if err != nil {
			return err
		}
		record = rec
		return nil
	}); err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return Photo{}, fmt.Errorf("record photo: %w", err)
	}

	return mapPhoto(record), nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]Photo, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("photo store is nil")
	}

	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list photo records: %w", err)
	}

	photos := make([]Photo, 0, len(records))
	for _, rec := range records {
		photos = append(photos, mapPhoto(rec))
	}

	return photos, nil
}

func (s *Service) Delete(ctx context.Context, userID, photoID int64) error {
	if userID <= 0 || photoID <= 0 {
		return ErrValidation
	}
	if s.store == nil || s.storage == nil {
		return fmt.Errorf("photo dependencies are not configured")
	}

	var removed pgrepo.PhotoRecord
	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		rec, err := s.store.Delete(txCtx, tx, photoID, userID)
		if err != nil {
			return err
		}
		removed = rec
		return nil
	}); err != nil {
		if errors.Is(err, pgrepo.ErrPhotoNotFound) {
			return ErrNotFound
		}
		return err
	}

	if removed.StorageKey != "" {
		_ = s.storage.Delete(ctx, removed.StorageKey)
	}

	return nil
}

func (s *Service) SetPrimary(ctx context.Context, userID, photoID int64) error {
	if userID <= 0 || photoID <= 0 {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("photo store is nil")
	}

	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		return s.store.SetPrimary(txCtx, tx, photoID, userID)
	}); err != nil {
		if errors.Is(err, pgrepo.ErrPhotoNotFound) {
			return ErrNotFound
		}
		return err
	}

	return nil
}

func buildPhotoObjectKey(userID int64, fileName string) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".jpg"
	}

	return fmt.Sprintf("photos/%d/%s%s", userID, hex.EncodeToString(rnd), ext), nil
}

func mapPhoto(rec pgrepo.PhotoRecord) Photo {
	return Photo{
		ID:        rec.ID,
		URL:       rec.PhotoURL,
		IsPrimary: rec.IsPrimary,
		Order:     rec.DisplayOrder,
		CreatedAt: rec.CreatedAt,
	}
}
