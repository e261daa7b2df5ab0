package handlers

import (
	"errors"
	"net/http"
	"time"

	authsvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/auth"
	profilesvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/profiles"
	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/dto"
	httperrors "github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/errors"
)

const birthdateLayout = "2006-01-02"

type ProfileHandler struct {
	service *profilesvc.Service
}

func NewProfileHandler(service *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	profile, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapProfile(profile))
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.CreateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	birthdate, err := time.Parse(birthdateLayout, req.Birthdate)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "birthdate must be in YYYY-MM-DD format")
		return
	}

	profile, err := h.service.Create(r.Context(), profilesvc.CreateInput{
		UserID:           identity.UserID,
		DisplayName:      req.DisplayName,
		Birthdate:        birthdate,
		Gender:           req.Gender,
		Bio:              req.Bio,
		Occupation:       req.Occupation,
		Education:        req.Education,
		LocationCity:     req.LocationCity,
		LookingFor:       req.LookingFor,
		AgePrefMin:       req.AgePrefMin,
		AgePrefMax:       req.AgePrefMax,
		MaxDistanceKM:    req.MaxDistanceKM,
		GenderPreference: req.GenderPreference,
	})
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, mapProfile(profile))
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	profile, err := h.service.Update(r.Context(), identity.UserID, profilesvc.UpdateInput{
		DisplayName:      req.DisplayName,
		Bio:              req.Bio,
		Occupation:       req.Occupation,
		Education:        req.Education,
		LocationLat:      req.LocationLat,
		LocationLng:      req.LocationLng,
		LocationCity:     req.LocationCity,
		LookingFor:       req.LookingFor,
		AgePrefMin:       req.AgePrefMin,
		AgePrefMax:       req.AgePrefMax,
		MaxDistanceKM:    req.MaxDistanceKM,
		GenderPreference: req.GenderPreference,
		IsActive:         req.IsActive,
	})
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapProfile(profile))
}

func (h *ProfileHandler) Quota(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	quota, err := h.service.GetQuota(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.QuotaResponse{
		SubscriptionTier:    quota.SubscriptionTier,
		SwipesRemaining:     quota.SwipesRemaining,
		SuperLikesRemaining: quota.SuperLikesRemaining,
		ResetAt:             quota.ResetAt,
	})
}

func handleProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profilesvc.ErrUnderage):
		writeBadRequest(w, "VALIDATION_ERROR", "minimum age requirement not met")
	case errors.Is(err, profilesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile request")
	case errors.Is(err, profilesvc.ErrAlreadyExists):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "PROFILE_EXISTS",
			Message: "profile already exists",
		})
	case errors.Is(err, profilesvc.ErrNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "profile operation failed")
	}
}

func mapProfile(profile profilesvc.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		UserID:             profile.UserID,
		DisplayName:        profile.DisplayName,
		Age:                profile.Age,
		Gender:             profile.Gender,
		Bio:                profile.Bio,
		Occupation:         profile.Occupation,
		Education:          profile.Education,
		LocationCity:       profile.LocationCity,
		LookingFor:         profile.LookingFor,
		AgePrefMin:         profile.AgePrefMin,
		AgePrefMax:         profile.AgePrefMax,
		MaxDistanceKM:      profile.MaxDistanceKM,
		GenderPreference:   profile.GenderPreference,
		VerificationStatus: profile.VerificationStatus,
		SubscriptionTier:   profile.SubscriptionTier,
		BoostActive:        profile.BoostActive,
		LastActiveAt:       profile.LastActiveAt,
		CreatedAt:          profile.CreatedAt,
	}
}
