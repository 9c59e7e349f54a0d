package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"smartfarm-platform/internal/agro"
	"smartfarm-platform/internal/models"
	"smartfarm-platform/internal/repository"
	"smartfarm-platform/internal/services"
	"smartfarm-platform/pkg/geometry"
	"smartfarm-platform/pkg/logging"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// sendJSON sends a JSON response
func (h *Handler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// handleServiceError maps service layer errors to HTTP responses
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	ctx := r.Context()

	var notFound *repository.NotFoundError
	var validation *models.ValidationError
	var invalidGeometry *geometry.InvalidGeometryError
	var invalidURL *agro.InvalidURLFormatError

	switch {
	case errors.As(err, &notFound):
		h.sendError(w, r, notFound.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrNoImagery), errors.Is(err, services.ErrNoNDVI):
		h.sendError(w, r, err.Error(), http.StatusNotFound)
	case errors.As(err, &validation):
		h.metrics.RecordAPIError("validation_error", endpoint)
		h.sendError(w, r, validation.Error(), http.StatusBadRequest)
	case errors.As(err, &invalidGeometry):
		h.metrics.RecordAPIError("validation_error", endpoint)
		h.sendError(w, r, invalidGeometry.Error(), http.StatusBadRequest)
	case errors.As(err, &invalidURL):
		h.logger.Error(ctx, "[API_ERROR] Provider returned unparseable NDVI URL", logging.Fields{
			"endpoint": endpoint,
		}, err)
		h.metrics.RecordAPIError("provider_error", endpoint)
		h.sendError(w, r, "satellite imagery data is malformed", http.StatusInternalServerError)
	case errors.Is(err, services.ErrWeatherUnavailable):
		h.metrics.RecordAPIError("provider_error", endpoint)
		h.sendError(w, r, err.Error(), http.StatusInternalServerError)
	default:
		h.logger.Error(ctx, "[API_ERROR] Request failed", logging.Fields{
			"endpoint": endpoint,
		}, err)
		h.metrics.RecordAPIError("internal_error", endpoint)
		h.sendError(w, r, "internal server error", http.StatusInternalServerError)
	}
}

// parseDateTime parses a user-supplied timestamp, accepting RFC3339, a
// timezone-naive ISO-8601 datetime (treated as UTC), a plain datetime, or a
// bare date
func parseDateTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
