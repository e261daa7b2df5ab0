package handlers

import (
	"errors"
	"net/http"
	"strconv"

	authsvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/auth"
	discoverysvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/discovery"
	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/dto"
	httperrors "github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/errors"
)

type DiscoveryHandler struct {
	service *discoverysvc.Service
}

func NewDiscoveryHandler(service *discoverysvc.Service) *DiscoveryHandler {
	return &DiscoveryHandler{service: service}
}

func (h *DiscoveryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DISCOVERY_SERVICE_UNAVAILABLE", "discovery service is unavailable")
		return
	}

	candidates, err := h.service.Compose(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, discoverysvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid discovery request")
		case errors.Is(err, discoverysvc.ErrViewerInactive):
			httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
				Code:    "PROFILE_INACTIVE",
				Message: "profile is deactivated",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to compose discovery queue")
		}
		return
	}

	items := make([]dto.CandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		photos := make([]dto.CandidatePhotoResponse, 0, len(candidate.Photos))
		for _, photo := range candidate.Photos {
			photos = append(photos, dto.CandidatePhotoResponse{
				URL:       photo.URL,
				IsPrimary: photo.IsPrimary,
			})
		}
		items = append(items, dto.CandidateResponse{
			UserID:       candidate.UserID,
			DisplayName:  candidate.DisplayName,
			Age:          candidate.Age,
			Gender:       candidate.Gender,
			Bio:          candidate.Bio,
			Occupation:   candidate.Occupation,
			Education:    candidate.Education,
			LocationCity: candidate.LocationCity,
			DistanceKM:   candidate.DistanceKM,
			Interests:    candidate.Interests,
			Photos:       photos,
			Online:       candidate.Online,
			BoostActive:  candidate.BoostActive,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.DiscoveryResponse{Items: items})
}

func parseIntOrDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
