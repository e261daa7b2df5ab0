package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/domain/rules"
	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
	redrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/redis"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
	candidateFetch  = 200
)

var (
	ErrValidation      = errors.New("validation error")
	ErrViewerInactive  = errors.New("viewer profile is inactive")
	ErrDependenciesNil = errors.New("discovery dependencies are not configured")
)

type ProfileStore interface {
	Get(ctx context.Context, userID int64) (pgrepo.ProfileRecord, error)
	ListActiveCandidates(ctx context.Context, viewerID int64, genderPreference []string, limit int) ([]pgrepo.CandidateRecord, error)
}

type SwipeStore interface {
	ListSwipedIDs(ctx context.Context, swiperID int64) ([]int64, error)
}

type BlockStore interface {
	ListBlockedEitherWay(ctx context.Context, userID int64) ([]int64, error)
}

type PhotoStore interface {
	ListByUser(ctx context.Context, userID int64) ([]pgrepo.PhotoRecord, error)
}

type InterestStore interface {
	ListForUsers(ctx context.Context, userIDs []int64) (map[int64][]string, error)
}

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Config struct {
	PageSize     int
	CacheTTL     time.Duration
	OnlineWindow time.Duration
}

type Photo struct {
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
}

type Candidate struct {
	UserID       int64    `json:"user_id"`
	DisplayName  string   `json:"display_name"`
	Age          int      `json:"age"`
	Gender       string   `json:"gender"`
	Bio          *string  `json:"bio,omitempty"`
	Occupation   string   `json:"occupation,omitempty"`
	Education    string   `json:"education,omitempty"`
	LocationCity string   `json:"location_city,omitempty"`
	DistanceKM   *float64 `json:"distance_km,omitempty"`
	Interests    []string `json:"interests"`
	Photos       []Photo  `json:"photos"`
	Online       bool     `json:"online"`
	BoostActive  bool     `json:"boost_active"`
}

type Service struct {
	profiles  ProfileStore
	swipes    SwipeStore
	blocks    BlockStore
	photos    PhotoStore
	interests InterestStore
	cache     Cache
	logger    *zap.Logger
	cfg       Config
	now       func() time.Time
}

type Dependencies struct {
	Profiles  ProfileStore
	Swipes    SwipeStore
	Blocks    BlockStore
	Photos    PhotoStore
	Interests InterestStore
	Cache     Cache
	Logger    *zap.Logger
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.PageSize > maxPageSize {
		cfg.PageSize = maxPageSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	if cfg.OnlineWindow <= 0 {
		cfg.OnlineWindow = rules.DefaultOnlineWindow
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Service{
		profiles:  deps.Profiles,
		swipes:    deps.Swipes,
		blocks:    deps.Blocks,
		photos:    deps.Photos,
		interests: deps.Interests,
		cache:     deps.Cache,
		logger:    deps.Logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Compose builds the viewer's candidate queue: active profiles matching
// the viewer's gender and age preferences, within the viewer's distance
// limit, minus anyone already swiped and minus blocks in either
// direction. Boosted profiles come first, then the most recently
// active, with user id as the final tie break. A viewer without a
// profile gets an empty queue.
func (s *Service) Compose(ctx context.Context, viewerID int64) ([]Candidate, error) {
	if viewerID <= 0 {
		return nil, ErrValidation
	}
	if s.profiles == nil || s.swipes == nil || s.blocks == nil {
		return nil, ErrDependenciesNil
	}

	if s.cache != nil {
		var cached []Candidate
		found, err := s.cache.GetJSON(ctx, redrepo.DiscoveryKey(viewerID), &cached)
		if err != nil {
			s.logger.Warn("discovery cache read failed", zap.Int64("viewer_id", viewerID), zap.Error(err))
		}
		if found {
			return cached, nil
		}
	}

	viewer, err := s.profiles.Get(ctx, viewerID)
	if errors.Is(err, pgrepo.ErrProfileNotFound) {
		// No profile yet means nothing to show, not a failure.
		return []Candidate{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load viewer profile: %w", err)
	}
	if !viewer.IsActive {
		return nil, ErrViewerInactive
	}

	excluded, err := s.excludedIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	records, err := s.profiles.ListActiveCandidates(ctx, viewerID, viewer.GenderPreference, candidateFetch)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	now := s.now().UTC()
	ageMin, ageMax := rules.NormalizeAgePreference(viewer.AgePrefMin, viewer.AgePrefMax)

	filtered := make([]pgrepo.CandidateRecord, 0, len(records))
	for _, rec := range records {
		if _, skip := excluded[rec.UserID]; skip {
			continue
		}
		age := rules.Age(rec.Birthdate, now)
		if age < ageMin || age > ageMax {
			continue
		}
		if !withinDistance(viewer, rec) {
			continue
		}
		filtered = append(filtered, rec)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		left := filtered[i]
		right := filtered[j]
		leftBoost := rules.BoostActive(left.BoostUntil, now)
		rightBoost := rules.BoostActive(right.BoostUntil, now)
		if leftBoost != rightBoost {
			return leftBoost
		}
		if !left.LastActiveAt.Equal(right.LastActiveAt) {
			return left.LastActiveAt.After(right.LastActiveAt)
		}
		return left.UserID > right.UserID
	})

	if len(filtered) > s.cfg.PageSize {
		filtered = filtered[:s.cfg.PageSize]
	}

	candidates := s.enrich(ctx, viewer, filtered, now)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, redrepo.DiscoveryKey(viewerID), candidates, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("discovery cache write failed", zap.Int64("viewer_id", viewerID), zap.Error(err))
		}
	}

	return candidates, nil
}

func (s *Service) excludedIDs(ctx context.Context, viewerID int64) (map[int64]struct{}, error) {
	swiped, err := s.swipes.ListSwipedIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list swiped ids: %w", err)
	}
	blocked, err := s.blocks.ListBlockedEitherWay(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list blocked ids: %w", err)
	}

	excluded := make(map[int64]struct{}, len(swiped)+len(blocked)+1)
	excluded[viewerID] = struct{}{}
	for _, id := range swiped {
		excluded[id] = struct{}{}
	}
	for _, id := range blocked {
		excluded[id] = struct{}{}
	}
	return excluded, nil
}

// enrich attaches interests and photos. A failure while decorating one
// candidate drops only that candidate from the page.
func (s *Service) enrich(ctx context.Context, viewer pgrepo.ProfileRecord, records []pgrepo.CandidateRecord, now time.Time) []Candidate {
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.UserID)
	}

	interestsByUser := map[int64][]string{}
	if s.interests != nil {
		loaded, err := s.interests.ListForUsers(ctx, ids)
		if err != nil {
			s.logger.Warn("load candidate interests failed", zap.Error(err))
		} else {
			interestsByUser = loaded
		}
	}

	out := make([]Candidate, 0, len(records))
	for _, rec := range records {
		candidate := Candidate{
			UserID:       rec.UserID,
			DisplayName:  rec.DisplayName,
			Age:          rules.Age(rec.Birthdate, now),
			Gender:       rec.Gender,
			Bio:          rec.Bio,
			Occupation:   rec.Occupation,
			Education:    rec.Education,
			LocationCity: rec.LocationCity,
			DistanceKM:   distanceBetween(viewer, rec),
			Interests:    interestsByUser[rec.UserID],
			Photos:       []Photo{},
			Online:       rules.IsOnline(rec.LastActiveAt, now, s.cfg.OnlineWindow),
			BoostActive:  rules.BoostActive(rec.BoostUntil, now),
		}
		if candidate.Interests == nil {
			candidate.Interests = []string{}
		}

		if s.photos != nil {
			photoRecords, err := s.photos.ListByUser(ctx, rec.UserID)
			if err != nil {
				s.logger.Warn("load candidate photos failed",
					zap.Int64("candidate_id", rec.UserID),
					zap.Error(err))
				continue
			}
			for _, photo := range photoRecords {
				candidate.Photos = append(candidate.Photos, Photo{
					URL:       photo.PhotoURL,
					IsPrimary: photo.IsPrimary,
				})
			}
		}

		out = append(out, candidate)
	}

	return out
}

func withinDistance(viewer pgrepo.ProfileRecord, rec pgrepo.CandidateRecord) bool {
	if viewer.MaxDistanceKM <= 0 {
		return true
	}
	distance := distanceBetween(viewer, rec)
	if distance == nil {
		return true
	}
	return *distance <= float64(viewer.MaxDistanceKM)
}

func distanceBetween(viewer pgrepo.ProfileRecord, rec pgrepo.CandidateRecord) *float64 {
	if viewer.LocationLat == nil || viewer.LocationLng == nil || rec.LocationLat == nil || rec.LocationLng == nil {
		return nil
	}
	distance := rules.DistanceKM(*viewer.LocationLat, *viewer.LocationLng, *rec.LocationLat, *rec.LocationLng)
	return &distance
}
