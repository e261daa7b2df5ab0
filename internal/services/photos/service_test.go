package photos

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
)

type photoStoreStub struct {
	photos    map[int64]pgrepo.PhotoRecord
	perUser   map[int64]int
	nextID    int64
	insertErr error
}

func newPhotoStoreStub() *photoStoreStub {
	return &photoStoreStub{
		photos:  map[int64]pgrepo.PhotoRecord{},
		perUser: map[int64]int{},
		nextID:  1,
	}
}

func (s *photoStoreStub) Insert(_ context.Context, _ pgx.Tx, userID int64, photoURL, storageKey string, primary bool, now time.Time) (pgrepo.PhotoRecord, error) {
	if s.insertErr != nil {
		return pgrepo.PhotoRecord{}, s.insertErr
	}
	if s.perUser[userID] == 0 {
		primary = true
	}
	rec := pgrepo.PhotoRecord{
		ID:           s.nextID,
		UserID:       userID,
		PhotoURL:     photoURL,
		StorageKey:   storageKey,
		IsPrimary:    primary,
		DisplayOrder: s.perUser[userID],
		CreatedAt:    now,
	}
	s.photos[rec.ID] = rec
	s.perUser[userID]++
	s.nextID++
	return rec, nil
}

func (s *photoStoreStub) ListByUser(_ context.Context, userID int64) ([]pgrepo.PhotoRecord, error) {
	out := []pgrepo.PhotoRecord{}
	for _, rec := range s.photos {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *photoStoreStub) Get(_ context.Context, photoID, userID int64) (pgrepo.PhotoRecord, error) {
	rec, ok := s.photos[photoID]
	if !ok || rec.UserID != userID {
		return pgrepo.PhotoRecord{}, pgrepo.ErrPhotoNotFound
	}
	return rec, nil
}

func (s *photoStoreStub) Delete(_ context.Context, _ pgx.Tx, photoID, userID int64) (pgrepo.PhotoRecord, error) {
	rec, ok := s.photos[photoID]
	if !ok || rec.UserID != userID {
		return pgrepo.PhotoRecord{}, pgrepo.ErrPhotoNotFound
	}
	delete(s.photos, photoID)
	s.perUser[userID]--
	return rec, nil
}

func (s *photoStoreStub) SetPrimary(_ context.Context, _ pgx.Tx, photoID, userID int64) error {
	rec, ok := s.photos[photoID]
	if !ok || rec.UserID != userID {
		return pgrepo.ErrPhotoNotFound
	}
	for id, other := range s.photos {
		if other.UserID == userID {
			other.IsPrimary = id == photoID
			s.photos[id] = other
		}
	}
	return nil
}

func (s *photoStoreStub) CountForUser(_ context.Context, userID int64) (int, error) {
	return s.perUser[userID], nil
}

type storageStub struct {
	objects map[string][]byte
	deleted []string
}

func newStorageStub() *storageStub {
	return &storageStub{objects: map[string][]byte{}}
}

func (s *storageStub) EnsureBucket(context.Context) error { return nil }

func (s *storageStub) PutPhoto(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *storageStub) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (s *storageStub) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	delete(s.objects, key)
	return nil
}

func newPhotoServiceForTest(store *photoStoreStub, storage *storageStub, maxPhotos int) *Service {
	svc := NewService(nil, store, storage, Config{MaxPhotos: maxPhotos})
	svc.withTx = func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	svc.now = func() time.Time {
		return time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestUploadFirstPhotoBecomesPrimary(t *testing.T) {
	store := newPhotoStoreStub()
	storage := newStorageStub()
	svc := newPhotoServiceForTest(store, storage, 6)

	photo, err := svc.Upload(context.Background(), 7, "me.png", "image/png", bytes.NewReader([]byte("img")), 3, false)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if !photo.IsPrimary {
		t.Fatal("first uploaded photo should be primary")
	}
	if !strings.HasPrefix(photo.URL, "https://cdn.test/photos/7/") {
		t.Fatalf("unexpected photo url %q", photo.URL)
	}
	if len(storage.objects) != 1 {
		t.Fatalf("expected one stored object, got %d", len(storage.objects))
	}
}

func TestUploadEnforcesPhotoLimit(t *testing.T) {
	store := newPhotoStoreStub()
	storage := newStorageStub()
	svc := newPhotoServiceForTest(store, storage, 2)

	for i := 0; i < 2; i++ {
		if _, err := svc.Upload(context.Background(), 8, "a.jpg", "image/jpeg", bytes.NewReader([]byte("img")), 3, false); err != nil {
			t.Fatalf("upload #%d: %v", i+1, err)
		}
	}

	_, err := svc.Upload(context.Background(), 8, "a.jpg", "image/jpeg", bytes.NewReader([]byte("img")), 3, false)
	if !errors.Is(err, ErrPhotoLimitReached) {
		t.Fatalf("expected ErrPhotoLimitReached, got %v", err)
	}
}

func TestUploadCleansUpObjectOnRecordFailure(t *testing.T) {
	store := newPhotoStoreStub()
	store.insertErr = errors.New("boom")
	storage := newStorageStub()
	svc := newPhotoServiceForTest(store, storage, 6)

	_, err := svc.Upload(context.Background(), 9, "a.jpg", "image/jpeg", bytes.NewReader([]byte("img")), 3, false)
	if err == nil {
		t.Fatal("expected upload to fail")
	}
	if len(storage.deleted) != 1 {
		t.Fatalf("expected orphaned object cleanup, deleted=%v", storage.deleted)
	}
	if len(storage.objects) != 0 {
		t.Fatalf("expected no stored objects, got %d", len(storage.objects))
	}
}

func TestDeleteRemovesObject(t *testing.T) {
	store := newPhotoStoreStub()
	storage := newStorageStub()
	svc := newPhotoServiceForTest(store, storage, 6)

	photo, err := svc.Upload(context.Background(), 10, "a.jpg", "image/jpeg", bytes.NewReader([]byte("img")), 3, false)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(context.Background(), 10, photo.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(storage.objects) != 0 {
		t.Fatal("expected stored object to be removed")
	}

	if err := svc.Delete(context.Background(), 10, photo.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
