package swipes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/domain/enums"
	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
)

type swipeStoreStub struct {
	records  []pgrepo.SwipeRecord
	nextID   int64
	byTarget map[int64]string
}

func newSwipeStoreStub() *swipeStoreStub {
	return &swipeStoreStub{nextID: 1, byTarget: map[int64]string{}}
}

func (s *swipeStoreStub) Upsert(_ context.Context, _ pgx.Tx, swiperID, swipedID int64, decision string, now time.Time) (pgrepo.SwipeRecord, error) {
	s.byTarget[swipedID] = decision
	rec := pgrepo.SwipeRecord{
		ID:        s.nextID,
		SwiperID:  swiperID,
		SwipedID:  swipedID,
		Decision:  decision,
		CreatedAt: now,
	}
	s.nextID++
	s.records = append(s.records, rec)
	return rec, nil
}

type quotaStoreStub struct {
	swipes     int
	superLikes int
	calls      int
}

func (s *quotaStoreStub) ConsumeSwipeQuota(_ context.Context, _ pgx.Tx, _ int64, superLike bool) (pgrepo.QuotaRecord, error) {
	s.calls++
	if s.swipes <= 0 {
		return pgrepo.QuotaRecord{}, pgrepo.ErrSwipeQuotaExhausted
	}
	if superLike && s.superLikes <= 0 {
		return pgrepo.QuotaRecord{}, pgrepo.ErrSuperLikeQuotaExhausted
	}
	s.swipes--
	if superLike {
		s.superLikes--
	}
	return pgrepo.QuotaRecord{
		SubscriptionTier:    "free",
		SwipesRemaining:     s.swipes,
		SuperLikesRemaining: s.superLikes,
	}, nil
}

type matchStoreStub struct {
	reciprocal map[int64]bool
	existing   map[int64]int64
	created    []int64
}

func newMatchStoreStub() *matchStoreStub {
	return &matchStoreStub{
		reciprocal: map[int64]bool{},
		existing:   map[int64]int64{},
	}
}

func (s *matchStoreStub) CreateIfMutualLike(_ context.Context, _ pgx.Tx, _, targetID int64) (bool, error) {
	if !s.reciprocal[targetID] {
		return false, nil
	}
	if _, ok := s.existing[targetID]; ok {
		return false, nil
	}
	s.created = append(s.created, targetID)
	s.existing[targetID] = 500 + targetID
	return true, nil
}

func (s *matchStoreStub) GetByUsers(_ context.Context, _ pgx.Tx, _, targetID int64) (pgrepo.MatchRecord, error) {
	id, ok := s.existing[targetID]
	if !ok {
		return pgrepo.MatchRecord{}, pgrepo.ErrMatchNotFound
	}
	return pgrepo.MatchRecord{ID: id}, nil
}

type cacheStub struct {
	dropped []string
}

func (s *cacheStub) Delete(_ context.Context, keys ...string) error {
	s.dropped = append(s.dropped, keys...)
	return nil
}

func newSwipeServiceForTest(swipeStore *swipeStoreStub, quota *quotaStoreStub, matches *matchStoreStub, cache *cacheStub) *Service {
	deps := Dependencies{
		SwipeStore: swipeStore,
		QuotaStore: quota,
		MatchStore: matches,
	}
	// A typed nil pointer would defeat the service's nil-interface check.
	if cache != nil {
		deps.Cache = cache
	}
	svc := NewService(deps)
	svc.withTx = func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	svc.now = func() time.Time {
		return time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestRecordLikeConsumesQuota(t *testing.T) {
	quota := &quotaStoreStub{swipes: 2, superLikes: 1}
	svc := newSwipeServiceForTest(newSwipeStoreStub(), quota, newMatchStoreStub(), nil)

	result, err := svc.Record(context.Background(), 1, 2, enums.DecisionLike)
	if err != nil {
		t.Fatalf("record like: %v", err)
	}

	if result.SwipesRemaining != 1 {
		t.Fatalf("expected 1 swipe remaining, got %d", result.SwipesRemaining)
	}
	if result.MatchCreated {
		t.Fatal("one-sided like should not create a match")
	}
}

func TestRecordPassIsFree(t *testing.T) {
	quota := &quotaStoreStub{swipes: 0}
	svc := newSwipeServiceForTest(newSwipeStoreStub(), quota, newMatchStoreStub(), nil)

	if _, err := svc.Record(context.Background(), 1, 2, enums.DecisionPass); err != nil {
		t.Fatalf("pass with empty quota should succeed: %v", err)
	}
	if quota.calls != 0 {
		t.Fatalf("pass must not touch the quota, got %d calls", quota.calls)
	}
}

func TestRecordBlocksWhenQuotaExhausted(t *testing.T) {
	store := newSwipeStoreStub()
	quota := &quotaStoreStub{swipes: 0}
	svc := newSwipeServiceForTest(store, quota, newMatchStoreStub(), nil)

	_, err := svc.Record(context.Background(), 1, 2, enums.DecisionLike)
	if !errors.Is(err, ErrSwipeLimitReached) {
		t.Fatalf("expected ErrSwipeLimitReached, got %v", err)
	}
	if len(store.records) != 0 {
		t.Fatal("swipe must not be stored when the quota is exhausted")
	}
}

func TestRecordSuperLikeNeedsSuperLikeAllowance(t *testing.T) {
	quota := &quotaStoreStub{swipes: 10, superLikes: 0}
	svc := newSwipeServiceForTest(newSwipeStoreStub(), quota, newMatchStoreStub(), nil)

	_, err := svc.Record(context.Background(), 1, 2, enums.DecisionSuperLike)
	if !errors.Is(err, ErrSuperLikeExhausted) {
		t.Fatalf("expected ErrSuperLikeExhausted, got %v", err)
	}
}

func TestRecordMutualLikeCreatesMatchAndDropsCaches(t *testing.T) {
	matches := newMatchStoreStub()
	matches.reciprocal[2] = true
	cache := &cacheStub{}
	svc := newSwipeServiceForTest(newSwipeStoreStub(), &quotaStoreStub{swipes: 5, superLikes: 1}, matches, cache)

	result, err := svc.Record(context.Background(), 1, 2, enums.DecisionLike)
	if err != nil {
		t.Fatalf("record like: %v", err)
	}

	if !result.MatchCreated {
		t.Fatal("reciprocal like should create a match")
	}
	if result.MatchID != 502 {
		t.Fatalf("expected match id 502, got %d", result.MatchID)
	}

	want := map[string]bool{
		"cache:discovery:1":     true,
		"cache:likes:2":         true,
		"cache:likes:1":         true,
		"cache:conversations:1": true,
		"cache:conversations:2": true,
	}
	if len(cache.dropped) != len(want) {
		t.Fatalf("expected %d dropped keys, got %v", len(want), cache.dropped)
	}
	for _, key := range cache.dropped {
		if !want[key] {
			t.Fatalf("unexpected dropped key %q", key)
		}
	}
}

func TestRecordRepeatSwipeOverwritesDecision(t *testing.T) {
	store := newSwipeStoreStub()
	svc := newSwipeServiceForTest(store, &quotaStoreStub{swipes: 5, superLikes: 1}, newMatchStoreStub(), nil)

	if _, err := svc.Record(context.Background(), 1, 2, enums.DecisionPass); err != nil {
		t.Fatalf("first swipe: %v", err)
	}
	if _, err := svc.Record(context.Background(), 1, 2, enums.DecisionLike); err != nil {
		t.Fatalf("second swipe: %v", err)
	}

	if store.byTarget[2] != "like" {
		t.Fatalf("expected latest decision to win, got %q", store.byTarget[2])
	}
}

func TestRecordRepeatLikeReportsExistingMatch(t *testing.T) {
	matches := newMatchStoreStub()
	matches.reciprocal[2] = true
	matches.existing[2] = 777
	svc := newSwipeServiceForTest(newSwipeStoreStub(), &quotaStoreStub{swipes: 5, superLikes: 1}, matches, nil)

	result, err := svc.Record(context.Background(), 1, 2, enums.DecisionLike)
	if err != nil {
		t.Fatalf("repeat like: %v", err)
	}

	if result.MatchCreated {
		t.Fatal("a pre-existing match must not be reported as newly created")
	}
	if result.MatchID != 777 {
		t.Fatalf("expected existing match id 777, got %d", result.MatchID)
	}
	if len(matches.created) != 0 {
		t.Fatalf("no new match row expected, got %v", matches.created)
	}
}

func TestRecordRejectsSelfSwipe(t *testing.T) {
	svc := newSwipeServiceForTest(newSwipeStoreStub(), &quotaStoreStub{swipes: 5}, newMatchStoreStub(), nil)

	if _, err := svc.Record(context.Background(), 1, 1, enums.DecisionLike); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
