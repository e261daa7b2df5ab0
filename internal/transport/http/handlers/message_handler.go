package handlers

import (
	"errors"
	"net/http"
	"strconv"

	authsvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/auth"
	messagesvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/messages"
	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/dto"
	httperrors "github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/errors"
)

type MessageHandler struct {
	service *messagesvc.Service
}

func NewMessageHandler(service *messagesvc.Service) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGE_SERVICE_UNAVAILABLE", "message service is unavailable")
		return
	}

	conversations, err := h.service.Conversations(r.Context(), identity.UserID)
	if err != nil {
		handleMessageError(w, err)
		return
	}

	items := make([]dto.ConversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		var lastMessage *dto.MessageResponse
		if conversation.LastMessage != nil {
			mapped := mapMessage(*conversation.LastMessage)
			lastMessage = &mapped
		}
		items = append(items, dto.ConversationResponse{
			MatchID:     conversation.MatchID,
			UserID:      conversation.CounterpartID,
			DisplayName: conversation.DisplayName,
			PhotoURL:    conversation.PhotoURL,
			MatchedAt:   conversation.MatchedAt,
			LastMessage: lastMessage,
			UnreadCount: conversation.UnreadCount,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ConversationsResponse{Items: items})
}

func (h *MessageHandler) Thread(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGE_SERVICE_UNAVAILABLE", "message service is unavailable")
		return
	}

	matchID, ok := parseIDParam(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	messages, err := h.service.Thread(r.Context(), identity.UserID, matchID)
	if err != nil {
		handleMessageError(w, err)
		return
	}

	items := make([]dto.MessageResponse, 0, len(messages))
	for _, message := range messages {
		items = append(items, mapMessage(message))
	}

	httperrors.Write(w, http.StatusOK, dto.MessagesResponse{Items: items})
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGE_SERVICE_UNAVAILABLE", "message service is unavailable")
		return
	}

	matchID, ok := parseIDParam(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	message, err := h.service.Send(r.Context(), identity.UserID, matchID, req.Content)
	if err != nil {
		if tf, isTooFast := messagesvc.IsTooFast(err); isTooFast {
			w.Header().Set("Retry-After", strconv.FormatInt(tf.RetryAfter(), 10))
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "TOO_FAST",
				Message:       "sending messages too quickly, slow down",
				RetryAfterSec: tf.RetryAfter(),
			})
			return
		}
		handleMessageError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, mapMessage(message))
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGE_SERVICE_UNAVAILABLE", "message service is unavailable")
		return
	}

	matchID, ok := parseIDParam(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	updated, err := h.service.MarkThreadRead(r.Context(), identity.UserID, matchID)
	if err != nil {
		handleMessageError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MarkReadResponse{OK: true, Updated: updated})
}

func handleMessageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, messagesvc.ErrEmptyMessage):
		writeBadRequest(w, "VALIDATION_ERROR", "message content is empty")
	case errors.Is(err, messagesvc.ErrMessageTooLong):
		writeBadRequest(w, "VALIDATION_ERROR", "message content is too long")
	case errors.Is(err, messagesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid message request")
	case errors.Is(err, messagesvc.ErrMatchNotFound):
		writeNotFound(w, "MATCH_NOT_FOUND", "match not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "message operation failed")
	}
}

func mapMessage(message messagesvc.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        message.ID,
		MatchID:   message.MatchID,
		SenderID:  message.SenderID,
		Content:   message.Content,
		IsRead:    message.IsRead,
		ReadAt:    message.ReadAt,
		CreatedAt: message.CreatedAt,
	}
}
