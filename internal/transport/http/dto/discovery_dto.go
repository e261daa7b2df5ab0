package dto

type CandidatePhotoResponse struct {
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
}

type CandidateResponse struct {
	UserID       int64                    `json:"user_id"`
	DisplayName  string                   `json:"display_name"`
	Age          int                      `json:"age"`
	Gender       string                   `json:"gender"`
	Bio          *string                  `json:"bio,omitempty"`
	Occupation   string                   `json:"occupation,omitempty"`
	Education    string                   `json:"education,omitempty"`
	LocationCity string                   `json:"location_city,omitempty"`
	DistanceKM   *float64                 `json:"distance_km,omitempty"`
	Interests    []string                 `json:"interests"`
	Photos       []CandidatePhotoResponse `json:"photos"`
	Online       bool                     `json:"online"`
	BoostActive  bool                     `json:"boost_active"`
}

type DiscoveryResponse struct {
	Items []CandidateResponse `json:"items"`
}
