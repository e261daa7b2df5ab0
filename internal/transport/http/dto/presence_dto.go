package dto

import "time"

type PresenceResponse struct {
	Online       bool      `json:"online"`
	LastActiveAt time.Time `json:"last_active_at"`
}
