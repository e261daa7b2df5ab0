package dto

type SwipeRequest struct {
	TargetID int64  `json:"target_id"`
	Decision string `json:"decision"`
}

type SwipeResponse struct {
	OK           bool          `json:"ok"`
	Decision     string        `json:"decision"`
	MatchCreated bool          `json:"match_created"`
	MatchID      int64         `json:"match_id,omitempty"`
	Quota        QuotaResponse `json:"quota"`
}
