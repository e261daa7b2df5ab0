package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/auth"
	interestsvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/interests"
	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/dto"
	httperrors "github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/errors"
)

type InterestHandler struct {
	service *interestsvc.Service
}

func NewInterestHandler(service *interestsvc.Service) *InterestHandler {
	return &InterestHandler{service: service}
}

func (h *InterestHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "INTEREST_SERVICE_UNAVAILABLE", "interest service is unavailable")
		return
	}

	items, err := h.service.Catalog(r.Context())
	if err != nil {
		handleInterestError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapInterests(items))
}

func (h *InterestHandler) Mine(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "INTEREST_SERVICE_UNAVAILABLE", "interest service is unavailable")
		return
	}

	items, err := h.service.ListForUser(r.Context(), identity.UserID)
	if err != nil {
		handleInterestError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapInterests(items))
}

func (h *InterestHandler) Replace(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "INTEREST_SERVICE_UNAVAILABLE", "interest service is unavailable")
		return
	}

	var req dto.ReplaceInterestsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	items, err := h.service.Replace(r.Context(), identity.UserID, req.InterestIDs)
	if err != nil {
		handleInterestError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapInterests(items))
}

func handleInterestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interestsvc.ErrTooManySelected):
		writeBadRequest(w, "TOO_MANY_INTERESTS", "too many interests selected")
	case errors.Is(err, interestsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid interests request")
	default:
		writeInternal(w, "INTERNAL_ERROR", "interests operation failed")
	}
}

func mapInterests(items []interestsvc.Interest) dto.InterestsListResponse {
	responseItems := make([]dto.InterestResponse, 0, len(items))
	for _, item := range items {
		responseItems = append(responseItems, dto.InterestResponse{
			ID:   item.ID,
			Name: item.Name,
		})
	}
	return dto.InterestsListResponse{Items: responseItems}
}
