package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrProfileNotFound         = errors.New("profile not found")
	ErrProfileExists           = errors.New("profile already exists")
	ErrSwipeQuotaExhausted     = errors.New("daily swipe quota exhausted")
	ErrSuperLikeQuotaExhausted = errors.New("daily super like quota exhausted")
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

type ProfileRecord struct {
	UserID              int64
	DisplayName         string
	Birthdate           time.Time
	Gender              string
	Bio                 *string
	Occupation          string
	Education           string
	LocationLat         *float64
	LocationLng         *float64
	LocationCity        string
	LookingFor          []string
	AgePrefMin          int
	AgePrefMax          int
	MaxDistanceKM       int
	GenderPreference    []string
	VerificationStatus  string
	IsActive            bool
	SubscriptionTier    string
	SwipesRemaining     int
	SuperLikesRemaining int
	BoostUntil          *time.Time
	LastActiveAt        time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type ProfileUpdate struct {
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

type CandidateRecord struct {
	UserID       int64
	DisplayName  string
	Birthdate    time.Time
	Gender       string
	Bio          *string
	Occupation   string
	Education    string
	LocationLat  *float64
	LocationLng  *float64
	LocationCity string
	LookingFor   []string
	BoostUntil   *time.Time
	LastActiveAt time.Time
}

type QuotaRecord struct {
	SubscriptionTier    string
	SwipesRemaining     int
	SuperLikesRemaining int
}

const profileColumns = `
	user_id,
	display_name,
	birthdate,
	COALESCE(gender, ''),
	bio,
	COALESCE(occupation, ''),
	COALESCE(education, ''),
	location_lat,
	location_lng,
	COALESCE(location_city, ''),
	COALESCE(looking_for, '{}'),
	age_pref_min,
	age_pref_max,
	max_distance_km,
	COALESCE(gender_preference, '{}'),
	COALESCE(verification_status, 'pending'),
	is_active,
	COALESCE(subscription_tier, 'free'),
	daily_swipes_remaining,
	daily_super_likes_remaining,
	boost_until,
	last_active_at,
	created_at,
	updated_at`

func (r *ProfileRepo) Get(ctx context.Context, userID int64) (ProfileRecord, error) {
	if userID <= 0 {
		return ProfileRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return ProfileRecord{}, ErrProfileNotFound
	}

	row := r.pool.QueryRow(ctx, `
SELECT`+profileColumns+`
FROM profiles
WHERE user_id = $1
LIMIT 1
`, userID)

	rec, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfileRecord{}, ErrProfileNotFound
		}
		return ProfileRecord{}, fmt.Errorf("get profile: %w", err)
	}
	return rec, nil
}

func (r *ProfileRepo) Create(ctx context.Context, rec ProfileRecord) (ProfileRecord, error) {
	if rec.UserID <= 0 || strings.TrimSpace(rec.DisplayName) == "" || rec.Birthdate.IsZero() {
		return ProfileRecord{}, fmt.Errorf("invalid profile payload")
	}
	if r.pool == nil {
		return ProfileRecord{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO profiles (
	user_id,
	display_name,
	birthdate,
	gender,
	bio,
	occupation,
	education,
	location_lat,
	location_lng,
	location_city,
	looking_for,
	age_pref_min,
	age_pref_max,
	max_distance_km,
	gender_preference,
	verification_status,
	is_active,
	subscription_tier,
	daily_swipes_remaining,
	daily_super_likes_remaining,
	last_active_at,
	created_at,
	updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
	$11, $12, $13, $14, $15, 'pending', TRUE, 'free', $16, $17,
	NOW(), NOW(), NOW()
)
ON CONFLICT (user_id) DO NOTHING
RETURNING`+profileColumns+`
`,
		rec.UserID,
		strings.TrimSpace(rec.DisplayName),
		rec.Birthdate,
		rec.Gender,
		rec.Bio,
		rec.Occupation,
		rec.Education,
		rec.LocationLat,
		rec.LocationLng,
		rec.LocationCity,
		rec.LookingFor,
		rec.AgePrefMin,
		rec.AgePrefMax,
		rec.MaxDistanceKM,
		rec.GenderPreference,
		rec.SwipesRemaining,
		rec.SuperLikesRemaining,
	)

	created, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfileRecord{}, ErrProfileExists
		}
		return ProfileRecord{}, fmt.Errorf("create profile: %w", err)
	}
	return created, nil
}

func (r *ProfileRepo) Update(ctx context.Context, userID int64, upd ProfileUpdate) (ProfileRecord, error) {
	if userID <= 0 {
		return ProfileRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return ProfileRecord{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE profiles SET
	display_name = COALESCE($2, display_name),
	bio = COALESCE($3, bio),
	occupation = COALESCE($4, occupation),
	education = COALESCE($5, education),
	location_lat = COALESCE($6, location_lat),
	location_lng = COALESCE($7, location_lng),
	location_city = COALESCE($8, location_city),
	looking_for = COALESCE($9, looking_for),
	age_pref_min = COALESCE($10, age_pref_min),
	age_pref_max = COALESCE($11, age_pref_max),
	max_distance_km = COALESCE($12, max_distance_km),
	gender_preference = COALESCE($13, gender_preference),
	is_active = COALESCE($14, is_active),
	updated_at = NOW()
WHERE user_id = $1
RETURNING`+profileColumns+`
`,
		userID,
		upd.DisplayName,
		upd.Bio,
		upd.Occupation,
		upd.Education,
		upd.LocationLat,
		upd.LocationLng,
		upd.LocationCity,
		upd.LookingFor,
		upd.AgePrefMin,
		upd.AgePrefMax,
		upd.MaxDistanceKM,
		upd.GenderPreference,
		upd.IsActive,
	)

	rec, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfileRecord{}, ErrProfileNotFound
		}
		return ProfileRecord{}, fmt.Errorf("update profile: %w", err)
	}
	return rec, nil
}

// ConsumeSwipeQuota decrements the daily swipe counter (and the super
// like counter when superLike is set) in a single conditional update, so
// the limit check and the decrement cannot race across sessions.
func (r *ProfileRepo) ConsumeSwipeQuota(ctx context.Context, tx pgx.Tx, userID int64, superLike bool) (QuotaRecord, error) {
	if userID <= 0 {
		return QuotaRecord{}, fmt.Errorf("invalid user id")
	}
	if tx == nil {
		return QuotaRecord{}, fmt.Errorf("transaction is required")
	}

	var rec QuotaRecord
	var err error
	if superLike {
		err = tx.QueryRow(ctx, `
UPDATE profiles SET
	daily_swipes_remaining = daily_swipes_remaining - 1,
	daily_super_likes_remaining = daily_super_likes_remaining - 1,
	updated_at = NOW()
WHERE user_id = $1
	AND daily_swipes_remaining > 0
	AND daily_super_likes_remaining > 0
RETURNING COALESCE(subscription_tier, 'free'), daily_swipes_remaining, daily_super_likes_remaining
`, userID).Scan(&rec.SubscriptionTier, &rec.SwipesRemaining, &rec.SuperLikesRemaining)
	} else {
		err = tx.QueryRow(ctx, `
UPDATE profiles SET
	daily_swipes_remaining = daily_swipes_remaining - 1,
	updated_at = NOW()
WHERE user_id = $1
	AND daily_swipes_remaining > 0
RETURNING COALESCE(subscription_tier, 'free'), daily_swipes_remaining, daily_super_likes_remaining
`, userID).Scan(&rec.SubscriptionTier, &rec.SwipesRemaining, &rec.SuperLikesRemaining)
	}
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return QuotaRecord{}, fmt.Errorf("consume swipe quota: %w", err)
	}

	// The conditional update matched nothing; read the counters to tell
	// which limit blocked it.
	current, err := r.getQuotaTx(ctx, tx, userID)
	if err != nil {
		return QuotaRecord{}, err
	}
	if superLike && current.SuperLikesRemaining <= 0 {
		return QuotaRecord{}, ErrSuperLikeQuotaExhausted
	}
	return QuotaRecord{}, ErrSwipeQuotaExhausted
}

func (r *ProfileRepo) GetQuota(ctx context.Context, userID int64) (QuotaRecord, error) {
	if userID <= 0 {
		return QuotaRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return QuotaRecord{}, ErrProfileNotFound
	}

	var rec QuotaRecord
	err := r.pool.QueryRow(ctx, `
SELECT COALESCE(subscription_tier, 'free'), daily_swipes_remaining, daily_super_likes_remaining
FROM profiles
WHERE user_id = $1
LIMIT 1
`, userID).Scan(&rec.SubscriptionTier, &rec.SwipesRemaining, &rec.SuperLikesRemaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return QuotaRecord{}, ErrProfileNotFound
		}
		return QuotaRecord{}, fmt.Errorf("get quota: %w", err)
	}
	return rec, nil
}

func (r *ProfileRepo) getQuotaTx(ctx context.Context, tx pgx.Tx, userID int64) (QuotaRecord, error) {
	var rec QuotaRecord
	err := tx.QueryRow(ctx, `
SELECT COALESCE(subscription_tier, 'free'), daily_swipes_remaining, daily_super_likes_remaining
FROM profiles
WHERE user_id = $1
LIMIT 1
`, userID).Scan(&rec.SubscriptionTier, &rec.SwipesRemaining, &rec.SuperLikesRemaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return QuotaRecord{}, ErrProfileNotFound
		}
		return QuotaRecord{}, fmt.Errorf("get quota in tx: %w", err)
	}
	return rec, nil
}

func (r *ProfileRepo) TouchLastActive(ctx context.Context, userID int64, at time.Time) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	if r.pool == nil {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE profiles
SET last_active_at = $2
WHERE user_id = $1
`, userID, at.UTC()); err != nil {
		return fmt.Errorf("touch last active: %w", err)
	}
	return nil
}

func (r *ProfileRepo) GetPresence(ctx context.Context, userID int64) (time.Time, error) {
	if userID <= 0 {
		return time.Time{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return time.Time{}, ErrProfileNotFound
	}

	var lastActive time.Time
	err := r.pool.QueryRow(ctx, `
SELECT last_active_at
FROM profiles
WHERE user_id = $1
LIMIT 1
`, userID).Scan(&lastActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, ErrProfileNotFound
		}
		return time.Time{}, fmt.Errorf("get presence: %w", err)
	}
	return lastActive, nil
}

// ListActiveCandidates fetches a bounded page of active profiles other
// than the viewer, optionally limited to a gender preference set. Swiped
// and blocked identities are excluded by the caller.
func (r *ProfileRepo) ListActiveCandidates(ctx context.Context, viewerID int64, genderPreference []string, limit int) ([]CandidateRecord, error) {
	if viewerID <= 0 {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []CandidateRecord{}, nil
	}

	applyGender := len(genderPreference) > 0

	rows, err := r.pool.Query(ctx, `
SELECT
	user_id,
	display_name,
	birthdate,
	COALESCE(gender, ''),
	bio,
	COALESCE(occupation, ''),
	COALESCE(education, ''),
	location_lat,
	location_lng,
	COALESCE(location_city, ''),
	COALESCE(looking_for, '{}'),
	boost_until,
	last_active_at
FROM profiles
WHERE user_id <> $1
	AND is_active = TRUE
	AND ($2::boolean = FALSE OR gender = ANY($3::text[]))
LIMIT $4
`, viewerID, applyGender, genderPreference, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]CandidateRecord, 0, limit)
	for rows.Next() {
		var c CandidateRecord
		if err := rows.Scan(
			&c.UserID,
			&c.DisplayName,
			&c.Birthdate,
			&c.Gender,
			&c.Bio,
			&c.Occupation,
			&c.Education,
			&c.LocationLat,
			&c.LocationLng,
			&c.LocationCity,
			&c.LookingFor,
			&c.BoostUntil,
			&c.LastActiveAt,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate candidates: %w", rows.Err())
	}

	return candidates, nil
}

// ResetDailyAllowances replenishes the daily counters for every active
// profile on the given tier and returns the number of rows touched.
func (r *ProfileRepo) ResetDailyAllowances(ctx context.Context, tier string, swipes, superLikes int) (int64, error) {
	if strings.TrimSpace(tier) == "" || swipes < 0 || superLikes < 0 {
		return 0, fmt.Errorf("invalid allowance payload")
	}
	if r.pool == nil {
		return 0, nil
	}

	result, err := r.pool.Exec(ctx, `
UPDATE profiles SET
	daily_swipes_remaining = $2,
	daily_super_likes_remaining = $3,
	updated_at = NOW()
WHERE COALESCE(subscription_tier, 'free') = $1
`, tier, swipes, superLikes)
	if err != nil {
		return 0, fmt.Errorf("reset daily allowances: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *ProfileRepo) ClearExpiredBoosts(ctx context.Context, now time.Time) (int64, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if r.pool == nil {
		return 0, nil
	}

	result, err := r.pool.Exec(ctx, `
UPDATE profiles
SET boost_until = NULL
WHERE boost_until IS NOT NULL AND boost_until <= $1
`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("clear expired boosts: %w", err)
	}
	return result.RowsAffected(), nil
}

type profileRow interface {
	Scan(dest ...any) error
}

func scanProfile(row profileRow) (ProfileRecord, error) {
	var rec ProfileRecord
	err := row.Scan(
		&rec.UserID,
		&rec.DisplayName,
		&rec.Birthdate,
		&rec.Gender,
		&rec.Bio,
		&rec.Occupation,
		&rec.Education,
		&rec.LocationLat,
		&rec.LocationLng,
		&rec.LocationCity,
		&rec.LookingFor,
		&rec.AgePrefMin,
		&rec.AgePrefMax,
		&rec.MaxDistanceKM,
		&rec.GenderPreference,
		&rec.VerificationStatus,
		&rec.IsActive,
		&rec.SubscriptionTier,
		&rec.SwipesRemaining,
		&rec.SuperLikesRemaining,
		&rec.BoostUntil,
		&rec.LastActiveAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	return rec, err
}
