package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/auth"
	likessvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/likes"
	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/dto"
	httperrors "github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/errors"
)

type LikesHandler struct {
	service *likessvc.Service
}

func NewLikesHandler(service *likessvc.Service) *LikesHandler {
	return &LikesHandler{service: service}
}

func (h *LikesHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "LIKES_SERVICE_UNAVAILABLE", "likes service is unavailable")
		return
	}

	inbox, err := h.service.Incoming(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, likessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid likes request")
		case errors.Is(err, likessvc.ErrNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load incoming likes")
		}
		return
	}

	likes := make([]dto.IncomingLikeResponse, 0, len(inbox.Likes))
	for _, like := range inbox.Likes {
		likes = append(likes, dto.IncomingLikeResponse{
			SwipeID:     like.SwipeID,
			UserID:      like.UserID,
			DisplayName: like.DisplayName,
			PhotoURL:    like.PhotoURL,
			SuperLike:   like.SuperLike,
			LikedAt:     like.LikedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.LikesIncomingResponse{
		Likes:  likes,
		CanSee: inbox.CanSee,
		Count:  inbox.Count,
	})
}
