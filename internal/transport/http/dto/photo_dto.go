package dto

import "time"

type PhotoResponse struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	IsPrimary bool      `json:"is_primary"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

type PhotosListResponse struct {
	Items []PhotoResponse `json:"items"`
}
