package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/auth"
	presencesvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/presence"
	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/dto"
	httperrors "github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/errors"
)

type PresenceHandler struct {
	service *presencesvc.Service
}

func NewPresenceHandler(service *presencesvc.Service) *PresenceHandler {
	return &PresenceHandler{service: service}
}

func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PRESENCE_SERVICE_UNAVAILABLE", "presence service is unavailable")
		return
	}

	if err := h.service.Touch(r.Context(), identity.UserID); err != nil {
		handlePresenceError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *PresenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PRESENCE_SERVICE_UNAVAILABLE", "presence service is unavailable")
		return
	}

	userID, ok := parseIDParam(r, "userID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	status, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handlePresenceError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PresenceResponse{
		Online:       status.Online,
		LastActiveAt: status.LastActiveAt,
	})
}

func handlePresenceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, presencesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid presence request")
	case errors.Is(err, presencesvc.ErrNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "presence operation failed")
	}
}
