package dto

import "time"

type CreateProfileRequest struct {
	DisplayName      string   `json:"display_name"`
	Birthdate        string   `json:"birthdate"`
	Gender           string   `json:"gender"`
	Bio              *string  `json:"bio,omitempty"`
	Occupation       string   `json:"occupation,omitempty"`
	Education        string   `json:"education,omitempty"`
	LocationCity     string   `json:"location_city,omitempty"`
	LookingFor       []string `json:"looking_for,omitempty"`
	AgePrefMin       int      `json:"age_pref_min,omitempty"`
	AgePrefMax       int      `json:"age_pref_max,omitempty"`
	MaxDistanceKM    int      `json:"max_distance_km,omitempty"`
	GenderPreference []string `json:"gender_preference,omitempty"`
}

type UpdateProfileRequest struct {
	DisplayName      *string  `json:"display_name,omitempty"`
	Bio              *string  `json:"bio,omitempty"`
	Occupation       *string  `json:"occupation,omitempty"`
	Education        *string  `json:"education,omitempty"`
	LocationLat      *float64 `json:"location_lat,omitempty"`
	LocationLng      *float64 `json:"location_lng,omitempty"`
	LocationCity     *string  `json:"location_city,omitempty"`
	LookingFor       []string `json:"looking_for,omitempty"`
	AgePrefMin       *int     `json:"age_pref_min,omitempty"`
	AgePrefMax       *int     `json:"age_pref_max,omitempty"`
	MaxDistanceKM    *int     `json:"max_distance_km,omitempty"`
	GenderPreference []string `json:"gender_preference,omitempty"`
	IsActive         *bool    `json:"is_active,omitempty"`
}

type ProfileResponse struct {
	UserID             int64     `json:"user_id"`
	DisplayName        string    `json:"display_name"`
	Age                int       `json:"age"`
	Gender             string    `json:"gender"`
	Bio                *string   `json:"bio,omitempty"`
	Occupation         string    `json:"occupation,omitempty"`
	Education          string    `json:"education,omitempty"`
	LocationCity       string    `json:"location_city,omitempty"`
	LookingFor         []string  `json:"looking_for"`
	AgePrefMin         int       `json:"age_pref_min"`
	AgePrefMax         int       `json:"age_pref_max"`
	MaxDistanceKM      int       `json:"max_distance_km"`
	GenderPreference   []string  `json:"gender_preference"`
	VerificationStatus string    `json:"verification_status"`
	SubscriptionTier   string    `json:"subscription_tier"`
	BoostActive        bool      `json:"boost_active"`
	LastActiveAt       time.Time `json:"last_active_at"`
	CreatedAt          time.Time `json:"created_at"`
}

type QuotaResponse struct {
	SubscriptionTier    string    `json:"subscription_tier"`
	SwipesRemaining     int       `json:"swipes_remaining"`
	SuperLikesRemaining int       `json:"super_likes_remaining"`
	ResetAt             time.Time `json:"reset_at"`
}
