package dto

import "time"

type MatchItemResponse struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	DisplayName   string     `json:"display_name"`
	PhotoURL      *string    `json:"photo_url,omitempty"`
	MatchedAt     time.Time  `json:"matched_at"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}

type BlockRequest struct {
	TargetID int64 `json:"target_id"`
}

type ReportRequest struct {
	TargetID  int64  `json:"target_id"`
	Reason    string `json:"reason"`
	Details   string `json:"details,omitempty"`
	AlsoBlock bool   `json:"also_block,omitempty"`
}
