package dto

import "time"

type SendMessageRequest struct {
	Content string `json:"content"`
}

type MessageResponse struct {
	ID        int64      `json:"id"`
	MatchID   int64      `json:"match_id"`
	SenderID  int64      `json:"sender_id"`
	Content   string     `json:"content"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type MessagesResponse struct {
	Items []MessageResponse `json:"items"`
}

type ConversationResponse struct {
	MatchID     int64            `json:"match_id"`
	UserID      int64            `json:"user_id"`
	DisplayName string           `json:"display_name"`
	PhotoURL    *string          `json:"photo_url,omitempty"`
	MatchedAt   time.Time        `json:"matched_at"`
	LastMessage *MessageResponse `json:"last_message,omitempty"`
	UnreadCount int              `json:"unread_count"`
}

type ConversationsResponse struct {
	Items []ConversationResponse `json:"items"`
}

type MarkReadResponse struct {
	OK      bool  `json:"ok"`
	Updated int64 `json:"updated"`
}
