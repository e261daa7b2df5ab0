package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/auth"
	photosvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/photos"
	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/dto"
	httperrors "github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/errors"
)

const maxPhotoUploadSize = 20 << 20 // 20 MiB

type PhotoHandler struct {
	service *photosvc.Service
}

func NewPhotoHandler(service *photosvc.Service) *PhotoHandler {
	return &PhotoHandler{service: service}
}

func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoUploadSize)
	if err := r.ParseMultipartForm(maxPhotoUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	primary := strings.EqualFold(r.FormValue("primary"), "true")

	photo, err := h.service.Upload(r.Context(), identity.UserID, header.Filename, contentType, file, header.Size, primary)
	if err != nil {
		handlePhotoError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, mapPhoto(photo))
}

func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}

	photos, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		handlePhotoError(w, err)
		return
	}

	items := make([]dto.PhotoResponse, 0, len(photos))
	for _, photo := range photos {
		items = append(items, mapPhoto(photo))
	}

	httperrors.Write(w, http.StatusOK, dto.PhotosListResponse{Items: items})
}

func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}

	photoID, ok := parseIDParam(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid photo id")
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, photoID); err != nil {
		handlePhotoError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *PhotoHandler) SetPrimary(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}

	photoID, ok := parseIDParam(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid photo id")
		return
	}

	if err := h.service.SetPrimary(r.Context(), identity.UserID, photoID); err != nil {
		handlePhotoError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func handlePhotoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, photosvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid photo request")
	case errors.Is(err, photosvc.ErrNotFound):
		writeNotFound(w, "PHOTO_NOT_FOUND", "photo not found")
	case errors.Is(err, photosvc.ErrPhotoLimitReached):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "PHOTO_LIMIT_REACHED",
			Message: "maximum number of photos reached",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "photo operation failed")
	}
}

func mapPhoto(photo photosvc.Photo) dto.PhotoResponse {
	return dto.PhotoResponse{
		ID:        photo.ID,
		URL:       photo.URL,
		IsPrimary: photo.IsPrimary,
		Order:     photo.Order,
		CreatedAt: photo.CreatedAt,
	}
}

func parseIDParam(r *http.Request, name string) (int64, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
