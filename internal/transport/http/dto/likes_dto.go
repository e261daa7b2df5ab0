package dto

import "time"

type IncomingLikeResponse struct {
	SwipeID     int64     `json:"swipe_id"`
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"display_name"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	SuperLike   bool      `json:"super_like"`
	LikedAt     time.Time `json:"liked_at"`
}

type LikesIncomingResponse struct {
	Likes  []IncomingLikeResponse `json:"likes"`
	CanSee bool                   `json:"can_see"`
	Count  int                    `json:"count"`
}
