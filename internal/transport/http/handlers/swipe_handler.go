package handlers

import (
	"errors"
	"net/http"

	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/domain/enums"
	authsvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/auth"
	swipesvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/swipes"
	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/dto"
	httperrors "github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID <= 0 || req.Decision == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id and decision are required")
		return
	}

	result, err := h.service.Record(r.Context(), identity.UserID, req.TargetID, enums.SwipeDecision(req.Decision))
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrInvalidDecision):
			writeBadRequest(w, "VALIDATION_ERROR", "unsupported swipe decision")
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		case errors.Is(err, swipesvc.ErrSwipeLimitReached):
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.APIError{
				Code:    "SWIPE_LIMIT_REACHED",
				Message: "daily swipe limit reached",
			})
		case errors.Is(err, swipesvc.ErrSuperLikeExhausted):
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.APIError{
				Code:    "SUPERLIKE_LIMIT_REACHED",
				Message: "daily super like limit reached",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeResponse{
		OK:           true,
		Decision:     string(result.Decision),
		MatchCreated: result.MatchCreated,
		MatchID:      result.MatchID,
		Quota: dto.QuotaResponse{
			SwipesRemaining:     result.SwipesRemaining,
			SuperLikesRemaining: result.SuperLikesRemaining,
			ResetAt:             result.QuotaResetAt,
		},
	})
}
