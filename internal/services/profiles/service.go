package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/domain/enums"
	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/domain/rules"
	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
	redrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/redis"
)

const profileCacheTTL = time.Minute

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("profile not found")
	ErrAlreadyExists = errors.New("profile already exists")
	ErrUnderage      = errors.New("user is below the minimum age")
)

type ProfileStore interface {
	Get(ctx context.Context, userID int64) (pgrepo.ProfileRecord, error)
	Create(ctx context.Context, rec pgrepo.ProfileRecord) (pgrepo.ProfileRecord, error)
	Update(ctx context.Context, userID int64, upd pgrepo.ProfileUpdate) (pgrepo.ProfileRecord, error)
	GetQuota(ctx context.Context, userID int64) (pgrepo.QuotaRecord, error)
}

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Profile struct {
	UserID              int64
	DisplayName         string
	Age                 int
	Gender              string
	Bio                 *string
	Occupation          string
	Education           string
	LocationCity        string
	LookingFor          []string
	AgePrefMin          int
	AgePrefMax          int
	MaxDistanceKM       int
	GenderPreference    []string
	VerificationStatus  string
	SubscriptionTier    string
	SwipesRemaining     int
	SuperLikesRemaining int
	BoostActive         bool
	LastActiveAt        time.Time
	CreatedAt           time.Time
}

type CreateInput struct {
	UserID           int64
	DisplayName      string
	Birthdate        time.Time
	Gender           string
	Bio              *string
	Occupation       string
	Education        string
	LocationCity     string
	LookingFor       []string
	AgePrefMin       int
	AgePrefMax       int
	MaxDistanceKM    int
	GenderPreference []string
}

type UpdateInput struct {
	DisplayName      *string
	Bio              *string
	Occupation       *string
	Education        *string
	LocationLat      *float64
	LocationLng      *float64
	LocationCity     *string
	LookingFor       []string
	AgePrefMin       *int
	AgePrefMax       *int
	MaxDistanceKM    *int
	GenderPreference []string
	IsActive         *bool
}

type Quota struct {
	SubscriptionTier    string
	SwipesRemaining     int
	SuperLikesRemaining int
	ResetAt             time.Time
}

type Service struct {
	store          ProfileStore
	cache          Cache
	cacheKeysFor   func(userID int64) []string
	defaultMaxDist int
	now            func() time.Time
}

type Dependencies struct {
	Store        ProfileStore
	Cache        Cache
	CacheKeysFor func(userID int64) []string
}

func NewService(deps Dependencies) *Service {
	return &Service{
		store:          deps.Store,
		cache:          deps.Cache,
		cacheKeysFor:   deps.CacheKeysFor,
		defaultMaxDist: 100,
		now:            time.Now,
	}
}

func (s *Service) Get(ctx context.Context, userID int64) (Profile, error) {
	if userID <= 0 {
		return Profile{}, ErrValidation
	}
	if s.store == nil {
		return Profile{}, fmt.Errorf("profile store is nil")
	}

	if s.cache != nil {
		var cached Profile
		if found, err := s.cache.GetJSON(ctx, redrepo.ProfileKey(userID), &cached); err == nil && found {
			return cached, nil
		}
	}

	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}

	profile := s.mapProfile(rec)
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, redrepo.ProfileKey(userID), profile, profileCacheTTL)
	}

	return profile, nil
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Profile, error) {
	if input.UserID <= 0 || strings.TrimSpace(input.DisplayName) == "" || input.Birthdate.IsZero() {
		return Profile{}, ErrValidation
	}
	if s.store == nil {
		return Profile{}, fmt.Errorf("profile store is nil")
	}

	now := s.now().UTC()
	if rules.Age(input.Birthdate, now) < rules.MinAge {
		return Profile{}, ErrUnderage
	}

	ageMin, ageMax := rules.NormalizeAgePreference(input.AgePrefMin, input.AgePrefMax)
	maxDist := input.MaxDistanceKM
	if maxDist <= 0 {
		maxDist = s.defaultMaxDist
	}

	rec := pgrepo.ProfileRecord{
		UserID:              input.UserID,
		DisplayName:         strings.TrimSpace(input.DisplayName),
		Birthdate:           input.Birthdate,
		Gender:              strings.ToLower(strings.TrimSpace(input.Gender)),
		Bio:                 input.Bio,
		Occupation:          strings.TrimSpace(input.Occupation),
		Education:           strings.TrimSpace(input.Education),
		LocationCity:        strings.TrimSpace(input.LocationCity),
		LookingFor:          input.LookingFor,
		AgePrefMin:          ageMin,
		AgePrefMax:          ageMax,
		MaxDistanceKM:       maxDist,
		GenderPreference:    normalizeGenderList(input.GenderPreference),
		VerificationStatus:  "pending",
		IsActive:            true,
		SubscriptionTier:    string(enums.TierFree),
		SwipesRemaining:     rules.FreeDailySwipes,
		SuperLikesRemaining: rules.FreeDailySuperLikes,
		LastActiveAt:        now,
	}

	created, err := s.store.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileExists) {
			return Profile{}, ErrAlreadyExists
		}
		return Profile{}, err
	}

	return s.mapProfile(created), nil
}

func (s *Service) Update(ctx context.Context, userID int64, input UpdateInput) (Profile, error) {
	if userID <= 0 {
		return Profile{}, ErrValidation
	}
	if s.store == nil {
		return Profile{}, fmt.Errorf("profile store is nil")
	}

	if input.DisplayName != nil && strings.TrimSpace(*input.DisplayName) == "" {
		return Profile{}, ErrValidation
	}

	if input.AgePrefMin != nil || input.AgePrefMax != nil {
		current, err := s.store.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrProfileNotFound) {
				return Profile{}, ErrNotFound
			}
			return Profile{}, err
		}
		ageMin := current.AgePrefMin
		ageMax := current.AgePrefMax
		if input.AgePrefMin != nil {
			ageMin = *input.AgePrefMin
		}
		if input.AgePrefMax != nil {
			ageMax = *input.AgePrefMax
		}
		ageMin, ageMax = rules.NormalizeAgePreference(ageMin, ageMax)
		input.AgePrefMin = &ageMin
		input.AgePrefMax = &ageMax
	}

	upd := pgrepo.ProfileUpdate{
		DisplayName:      input.DisplayName,
		Bio:              input.Bio,
		Occupation:       input.Occupation,
		Education:        input.Education,
		LocationLat:      input.LocationLat,
		LocationLng:      input.LocationLng,
		LocationCity:     input.LocationCity,
		LookingFor:       input.LookingFor,
		AgePrefMin:       input.AgePrefMin,
		AgePrefMax:       input.AgePrefMax,
		MaxDistanceKM:    input.MaxDistanceKM,
		GenderPreference: normalizeGenderList(input.GenderPreference),
		IsActive:         input.IsActive,
	}

	updated, err := s.store.Update(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}

	s.dropCaches(ctx, userID)

	return s.mapProfile(updated), nil
}

func (s *Service) GetQuota(ctx context.Context, userID int64) (Quota, error) {
	if userID <= 0 {
		return Quota{}, ErrValidation
	}
	if s.store == nil {
		return Quota{}, fmt.Errorf("profile store is nil")
	}

	rec, err := s.store.GetQuota(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return Quota{}, ErrNotFound
		}
		return Quota{}, err
	}

	return Quota{
		SubscriptionTier:    rec.SubscriptionTier,
		SwipesRemaining:     rec.SwipesRemaining,
		SuperLikesRemaining: rec.SuperLikesRemaining,
		ResetAt:             rules.NextResetAt(s.now().UTC(), time.UTC),
	}, nil
}

func (s *Service) dropCaches(ctx context.Context, userID int64) {
	if s.cache == nil || s.cacheKeysFor == nil {
		return
	}
	_ = s.cache.Delete(ctx, s.cacheKeysFor(userID)...)
}

func (s *Service) mapProfile(rec pgrepo.ProfileRecord) Profile {
	now := s.now().UTC()
	return Profile{
		UserID:              rec.UserID,
		DisplayName:         rec.DisplayName,
		Age:                 rules.Age(rec.Birthdate, now),
		Gender:              rec.Gender,
		Bio:                 rec.Bio,
		Occupation:          rec.Occupation,
		Education:           rec.Education,
		LocationCity:        rec.LocationCity,
		LookingFor:          append([]string(nil), rec.LookingFor...),
		AgePrefMin:          rec.AgePrefMin,
		AgePrefMax:          rec.AgePrefMax,
		MaxDistanceKM:       rec.MaxDistanceKM,
		GenderPreference:    append([]string(nil), rec.GenderPreference...),
		VerificationStatus:  rec.VerificationStatus,
		SubscriptionTier:    rec.SubscriptionTier,
		SwipesRemaining:     rec.SwipesRemaining,
		SuperLikesRemaining: rec.SuperLikesRemaining,
		BoostActive:         rules.BoostActive(rec.BoostUntil, now),
		LastActiveAt:        rec.LastActiveAt,
		CreatedAt:           rec.CreatedAt,
	}
}

func normalizeGenderList(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
