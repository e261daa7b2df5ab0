package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
	redrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/redis"
)

var testNow = time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

type profileStoreStub struct {
	viewer     pgrepo.ProfileRecord
	viewerErr  error
	candidates []pgrepo.CandidateRecord
	listCalls  int
}

func (s *profileStoreStub) Get(_ context.Context, _ int64) (pgrepo.ProfileRecord, error) {
	if s.viewerErr != nil {
		return pgrepo.ProfileRecord{}, s.viewerErr
	}
	return s.viewer, nil
}

func (s *profileStoreStub) ListActiveCandidates(_ context.Context, _ int64, _ []string, _ int) ([]pgrepo.CandidateRecord, error) {
	s.listCalls++
	return s.candidates, nil
}

type swipeStoreStub struct {
	swiped []int64
}

func (s *swipeStoreStub) ListSwipedIDs(_ context.Context, _ int64) ([]int64, error) {
	return s.swiped, nil
}

type blockStoreStub struct {
	blocked []int64
}

func (s *blockStoreStub) ListBlockedEitherWay(_ context.Context, _ int64) ([]int64, error) {
	return s.blocked, nil
}

type photoStoreStub struct {
	photos  map[int64][]pgrepo.PhotoRecord
	failFor map[int64]bool
}

func (s *photoStoreStub) ListByUser(_ context.Context, userID int64) ([]pgrepo.PhotoRecord, error) {
	if s.failFor[userID] {
		return nil, errors.New("photo backend down")
	}
	return s.photos[userID], nil
}

type interestStoreStub struct {
	byUser map[int64][]string
	err    error
}

func (s *interestStoreStub) ListForUsers(_ context.Context, _ []int64) (map[int64][]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byUser, nil
}

func viewerRecord() pgrepo.ProfileRecord {
	lat := 6.5244
	lng := 3.3792
	return pgrepo.ProfileRecord{
		UserID:           1,
		IsActive:         true,
		AgePrefMin:       20,
		AgePrefMax:       35,
		MaxDistanceKM:    100,
		LocationLat:      &lat,
		LocationLng:      &lng,
		GenderPreference: []string{"female"},
	}
}

func candidate(id int64, birthYear int, lastActive time.Time, boostUntil *time.Time) pgrepo.CandidateRecord {
	lat := 6.6
	lng := 3.35
	return pgrepo.CandidateRecord{
		UserID:       id,
		DisplayName:  "candidate",
		Birthdate:    time.Date(birthYear, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:       "female",
		LocationLat:  &lat,
		LocationLng:  &lng,
		LastActiveAt: lastActive,
		BoostUntil:   boostUntil,
	}
}

func newDiscoveryServiceForTest(profiles *profileStoreStub, swipes *swipeStoreStub, blocks *blockStoreStub, photos *photoStoreStub, interests *interestStoreStub, cache Cache) *Service {
	svc := NewService(Dependencies{
		Profiles:  profiles,
		Swipes:    swipes,
		Blocks:    blocks,
		Photos:    photos,
		Interests: interests,
		Cache:     cache,
	}, Config{PageSize: 20, CacheTTL: time.Minute})
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestComposeExcludesSwipedAndBlocked(t *testing.T) {
	profiles := &profileStoreStub{
		viewer: viewerRecord(),
		candidates: []pgrepo.CandidateRecord{
			candidate(2, 1996, testNow.Add(-time.Hour), nil),
			candidate(3, 1996, testNow.Add(-time.Hour), nil),
			candidate(4, 1996, testNow.Add(-time.Hour), nil),
			candidate(5, 1996, testNow.Add(-time.Hour), nil),
		},
	}
	svc := newDiscoveryServiceForTest(
		profiles,
		&swipeStoreStub{swiped: []int64{3}},
		&blockStoreStub{blocked: []int64{4}},
		&photoStoreStub{photos: map[int64][]pgrepo.PhotoRecord{}},
		&interestStoreStub{byUser: map[int64][]string{}},
		nil,
	)

	items, err := svc.Compose(context.Background(), 1)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	ids := map[int64]bool{}
	for _, item := range items {
		ids[item.UserID] = true
	}
	if len(items) != 2 || !ids[2] || !ids[5] {
		t.Fatalf("expected candidates {2,5}, got %v", ids)
	}
}

func TestComposeWithoutProfileYieldsEmptyQueue(t *testing.T) {
	profiles := &profileStoreStub{viewerErr: pgrepo.ErrProfileNotFound}
	svc := newDiscoveryServiceForTest(
		profiles,
		&swipeStoreStub{},
		&blockStoreStub{},
		&photoStoreStub{photos: map[int64][]pgrepo.PhotoRecord{}},
		&interestStoreStub{byUser: map[int64][]string{}},
		nil,
	)

	items, err := svc.Compose(context.Background(), 1)
	if err != nil {
		t.Fatalf("compose without profile: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty queue, got %+v", items)
	}
	if profiles.listCalls != 0 {
		t.Fatalf("candidate query should be skipped, got %d calls", profiles.listCalls)
	}
}

func TestComposeFiltersAgeAndDistance(t *testing.T) {
	farLat := 9.0765
	farLng := 7.3986
	tooFar := candidate(6, 1996, testNow.Add(-time.Hour), nil)
	tooFar.LocationLat = &farLat
	tooFar.LocationLng = &farLng

	profiles := &profileStoreStub{
		viewer: viewerRecord(),
		candidates: []pgrepo.CandidateRecord{
			candidate(2, 1996, testNow.Add(-time.Hour), nil),
			candidate(3, 2007, testNow.Add(-time.Hour), nil),
			candidate(4, 1985, testNow.Add(-time.Hour), nil),
			tooFar,
		},
	}
	svc := newDiscoveryServiceForTest(
		profiles,
		&swipeStoreStub{},
		&blockStoreStub{},
		&photoStoreStub{photos: map[int64][]pgrepo.PhotoRecord{}},
		&interestStoreStub{byUser: map[int64][]string{}},
		nil,
	)

	items, err := svc.Compose(context.Background(), 1)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	if len(items) != 1 || items[0].UserID != 2 {
		t.Fatalf("expected only candidate 2, got %+v", items)
	}
}

func TestComposeOrdersBoostedFirstThenRecency(t *testing.T) {
	boostEnd := testNow.Add(time.Hour)
	profiles := &profileStoreStub{
		viewer: viewerRecord(),
		candidates: []pgrepo.CandidateRecord{
			candidate(2, 1996, testNow.Add(-3*time.Hour), nil),
			candidate(3, 1996, testNow.Add(-time.Minute), nil),
			candidate(4, 1996, testNow.Add(-24*time.Hour), &boostEnd),
		},
	}
	svc := newDiscoveryServiceForTest(
		profiles,
		&swipeStoreStub{},
		&blockStoreStub{},
		&photoStoreStub{photos: map[int64][]pgrepo.PhotoRecord{}},
		&interestStoreStub{byUser: map[int64][]string{}},
		nil,
	)

	items, err := svc.Compose(context.Background(), 1)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(items))
	}
	if items[0].UserID != 4 {
		t.Fatalf("boosted candidate should rank first, got %d", items[0].UserID)
	}
	if items[1].UserID != 3 || items[2].UserID != 2 {
		t.Fatalf("expected recency order 3,2 after boost, got %d,%d", items[1].UserID, items[2].UserID)
	}
}

func TestComposeDropsOnlyFailingCandidate(t *testing.T) {
	profiles := &profileStoreStub{
		viewer: viewerRecord(),
		candidates: []pgrepo.CandidateRecord{
			candidate(2, 1996, testNow.Add(-time.Hour), nil),
			candidate(3, 1996, testNow.Add(-2*time.Hour), nil),
		},
	}
	svc := newDiscoveryServiceForTest(
		profiles,
		&swipeStoreStub{},
		&blockStoreStub{},
		&photoStoreStub{
			photos:  map[int64][]pgrepo.PhotoRecord{},
			failFor: map[int64]bool{2: true},
		},
		&interestStoreStub{byUser: map[int64][]string{}},
		nil,
	)

	items, err := svc.Compose(context.Background(), 1)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	if len(items) != 1 || items[0].UserID != 3 {
		t.Fatalf("expected only candidate 3 to survive, got %+v", items)
	}
}

func TestComposeServesFromCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	cache := redrepo.NewCacheRepo(client)

	profiles := &profileStoreStub{
		viewer: viewerRecord(),
		candidates: []pgrepo.CandidateRecord{
			candidate(2, 1996, testNow.Add(-time.Hour), nil),
		},
	}
	svc := newDiscoveryServiceForTest(
		profiles,
		&swipeStoreStub{},
		&blockStoreStub{},
		&photoStoreStub{photos: map[int64][]pgrepo.PhotoRecord{}},
		&interestStoreStub{byUser: map[int64][]string{}},
		cache,
	)

	ctx := context.Background()
	first, err := svc.Compose(ctx, 1)
	if err != nil {
		t.Fatalf("first compose: %v", err)
	}
	second, err := svc.Compose(ctx, 1)
	if err != nil {
		t.Fatalf("second compose: %v", err)
	}

	if profiles.listCalls != 1 {
		t.Fatalf("expected one candidate query, got %d", profiles.listCalls)
	}
	if len(first) != len(second) {
		t.Fatalf("cache returned different page: %d vs %d", len(first), len(second))
	}
}
