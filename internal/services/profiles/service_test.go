package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
)

type profileStoreStub struct {
	records    map[int64]pgrepo.ProfileRecord
	lastCreate pgrepo.ProfileRecord
	lastUpdate pgrepo.ProfileUpdate
	getCalls   int
}

func newProfileStoreStub() *profileStoreStub {
	return &profileStoreStub{records: map[int64]pgrepo.ProfileRecord{}}
}

func (s *profileStoreStub) Get(_ context.Context, userID int64) (pgrepo.ProfileRecord, error) {
	s.getCalls++
	rec, ok := s.records[userID]
	if !ok {
		return pgrepo.ProfileRecord{}, pgrepo.ErrProfileNotFound
	}
	return rec, nil
}

func (s *profileStoreStub) Create(_ context.Context, rec pgrepo.ProfileRecord) (pgrepo.ProfileRecord, error) {
	if _, ok := s.records[rec.UserID]; ok {
		return pgrepo.ProfileRecord{}, pgrepo.ErrProfileExists
	}
	s.lastCreate = rec
	s.records[rec.UserID] = rec
	return rec, nil
}

func (s *profileStoreStub) Update(_ context.Context, userID int64, upd pgrepo.ProfileUpdate) (pgrepo.ProfileRecord, error) {
	rec, ok := s.records[userID]
	if !ok {
		return pgrepo.ProfileRecord{}, pgrepo.ErrProfileNotFound
	}
	s.lastUpdate = upd
	if upd.AgePrefMin != nil {
		rec.AgePrefMin = *upd.AgePrefMin
	}
	if upd.AgePrefMax != nil {
		rec.AgePrefMax = *upd.AgePrefMax
	}
	if upd.DisplayName != nil {
		rec.DisplayName = *upd.DisplayName
	}
	s.records[userID] = rec
	return rec, nil
}

func (s *profileStoreStub) GetQuota(_ context.Context, userID int64) (pgrepo.QuotaRecord, error) {
	rec, ok := s.records[userID]
	if !ok {
		return pgrepo.QuotaRecord{}, pgrepo.ErrProfileNotFound
	}
	return pgrepo.QuotaRecord{
		SubscriptionTier:    rec.SubscriptionTier,
		SwipesRemaining:     rec.SwipesRemaining,
		SuperLikesRemaining: rec.SuperLikesRemaining,
	}, nil
}

type cacheStub struct {
	data    map[string][]byte
	dropped []string
}

func newCacheStub() *cacheStub {
	return &cacheStub{data: map[string][]byte{}}
}

func (s *cacheStub) GetJSON(_ context.Context, key string, out any) (bool, error) {
	raw, ok := s.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (s *cacheStub) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.data[key] = raw
	return nil
}

func (s *cacheStub) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	s.dropped = append(s.dropped, keys...)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
}

func TestCreateRejectsUnderage(t *testing.T) {
	store := newProfileStoreStub()
	svc := NewService(Dependencies{Store: store})
	svc.now = fixedNow

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:      10,
		DisplayName: "Ada",
		Birthdate:   time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrUnderage) {
		t.Fatalf("expected ErrUnderage, got %v", err)
	}
}

func TestCreateSeedsFreeTierAllowances(t *testing.T) {
	store := newProfileStoreStub()
	svc := NewService(Dependencies{Store: store})
	svc.now = fixedNow

	profile, err := svc.Create(context.Background(), CreateInput{
		UserID:      11,
		DisplayName: "Chidi",
		Birthdate:   time.Date(1995, 6, 1, 0, 0, 0, 0, time.UTC),
		AgePrefMin:  30,
		AgePrefMax:  22,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if profile.SubscriptionTier != "free" {
		t.Fatalf("expected free tier, got %q", profile.SubscriptionTier)
	}
	if profile.SwipesRemaining != 50 || profile.SuperLikesRemaining != 1 {
		t.Fatalf("unexpected allowances: swipes=%d super=%d", profile.SwipesRemaining, profile.SuperLikesRemaining)
	}
	if profile.AgePrefMin != 22 || profile.AgePrefMax != 30 {
		t.Fatalf("inverted age preference not normalized: min=%d max=%d", profile.AgePrefMin, profile.AgePrefMax)
	}
}

func TestCreateRejectsDuplicate(t *testing.T) {
	store := newProfileStoreStub()
	svc := NewService(Dependencies{Store: store})
	svc.now = fixedNow

	input := CreateInput{
		UserID:      12,
		DisplayName: "Bola",
		Birthdate:   time.Date(1990, 2, 2, 0, 0, 0, 0, time.UTC),
	}
	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), input); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUpdateNormalizesAgePreferenceAndDropsCaches(t *testing.T) {
	store := newProfileStoreStub()
	store.records[13] = pgrepo.ProfileRecord{
		UserID:     13,
		AgePrefMin: 20,
		AgePrefMax: 28,
	}
	cache := newCacheStub()
	svc := NewService(Dependencies{
		Store: store,
		Cache: cache,
		CacheKeysFor: func(userID int64) []string {
			return []string{"cache:discovery:13"}
		},
	})
	svc.now = fixedNow

	newMin := 35
	if _, err := svc.Update(context.Background(), 13, UpdateInput{AgePrefMin: &newMin}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if store.lastUpdate.AgePrefMin == nil || store.lastUpdate.AgePrefMax == nil {
		t.Fatal("expected both age bounds to be written")
	}
	if *store.lastUpdate.AgePrefMin != 28 || *store.lastUpdate.AgePrefMax != 35 {
		t.Fatalf("inverted range not swapped: min=%d max=%d", *store.lastUpdate.AgePrefMin, *store.lastUpdate.AgePrefMax)
	}
	if len(cache.dropped) != 1 || cache.dropped[0] != "cache:discovery:13" {
		t.Fatalf("expected discovery cache drop, got %v", cache.dropped)
	}
}

func TestGetServesFromCache(t *testing.T) {
	store := newProfileStoreStub()
	store.records[15] = pgrepo.ProfileRecord{
		UserID:      15,
		DisplayName: "Ngozi",
		Birthdate:   time.Date(1994, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	cache := newCacheStub()
	svc := NewService(Dependencies{Store: store, Cache: cache})
	svc.now = fixedNow

	ctx := context.Background()
	first, err := svc.Get(ctx, 15)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	second, err := svc.Get(ctx, 15)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}

	if store.getCalls != 1 {
		t.Fatalf("expected one store read, got %d", store.getCalls)
	}
	if first.DisplayName != second.DisplayName || second.DisplayName != "Ngozi" {
		t.Fatalf("cache returned a different profile: %+v vs %+v", first, second)
	}
	if _, ok := cache.data["cache:profile:15"]; !ok {
		t.Fatalf("expected profile cache entry, got %v", cache.data)
	}
}

func TestGetQuotaReportsNextUTCReset(t *testing.T) {
	store := newProfileStoreStub()
	store.records[14] = pgrepo.ProfileRecord{
		UserID:              14,
		SubscriptionTier:    "gold",
		SwipesRemaining:     120,
		SuperLikesRemaining: 3,
	}
	svc := NewService(Dependencies{Store: store})
	svc.now = fixedNow

	quota, err := svc.GetQuota(context.Background(), 14)
	if err != nil {
		t.Fatalf("get quota: %v", err)
	}

	if quota.SwipesRemaining != 120 || quota.SuperLikesRemaining != 3 {
		t.Fatalf("unexpected quota: %+v", quota)
	}
	want := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	if !quota.ResetAt.Equal(want) {
		t.Fatalf("expected reset at %v, got %v", want, quota.ResetAt)
	}
}
