package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"smartfarm-platform/internal/models"
	"smartfarm-platform/pkg/logging"
)

// CreatePaddock handles POST /api/paddocks
func (h *Handler) CreatePaddock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/paddocks").Observe(duration.Seconds())
	}()

	var req models.PaddockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.RecordAPIError("validation_error", "/api/paddocks")
		h.sendError(w, r, "invalid JSON body", http.StatusBadRequest)
		return
	}

	paddock, err := h.paddockService.Create(ctx, &req)
	if err != nil {
		h.handleServiceError(w, r, "/api/paddocks", err)
		return
	}

	h.logger.Info(ctx, "[API_CREATE_PADDOCK] Paddock created", logging.Fields{
		"paddock_id": paddock.ID.String(),
		"name":       paddock.Name,
	})

	h.metrics.RecordAPIRequest("/api/paddocks", "POST", "201")
	h.sendJSON(w, paddock, http.StatusCreated)
}

// ListPaddocks handles GET /api/paddocks
func (h *Handler) ListPaddocks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/paddocks").Observe(duration.Seconds())
	}()

	paddocks, err := h.paddockService.List(ctx)
	if err != nil {
		h.handleServiceError(w, r, "/api/paddocks", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/paddocks", "GET", "200")
	h.sendJSON(w, paddocks, http.StatusOK)
}

// GetPaddock handles GET /api/paddocks/{id}
func (h *Handler) GetPaddock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/paddocks/{id}").Observe(duration.Seconds())
	}()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.sendError(w, r, "invalid paddock id", http.StatusBadRequest)
		return
	}

	paddock, err := h.paddockService.Get(ctx, id)
	if err != nil {
		h.handleServiceError(w, r, "/api/paddocks/{id}", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/paddocks/{id}", "GET", "200")
	h.sendJSON(w, paddock, http.StatusOK)
}

// UpdatePaddock handles PUT /api/paddocks/{id}
func (h *Handler) UpdatePaddock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/paddocks/{id}").Observe(duration.Seconds())
	}()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.sendError(w, r, "invalid paddock id", http.StatusBadRequest)
		return
	}

	var req models.PaddockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.RecordAPIError("validation_error", "/api/paddocks/{id}")
		h.sendError(w, r, "invalid JSON body", http.StatusBadRequest)
		return
	}

	paddock, err := h.paddockService.Update(ctx, id, &req)
	if err != nil {
		h.handleServiceError(w, r, "/api/paddocks/{id}", err)
		return
	}

	h.logger.Info(ctx, "[API_UPDATE_PADDOCK] Paddock updated", logging.Fields{
		"paddock_id": paddock.ID.String(),
	})

	h.metrics.RecordAPIRequest("/api/paddocks/{id}", "PUT", "200")
	h.sendJSON(w, paddock, http.StatusOK)
}

// DeletePaddock handles DELETE /api/paddocks/{id}
func (h *Handler) DeletePaddock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/paddocks/{id}").Observe(duration.Seconds())
	}()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.sendError(w, r, "invalid paddock id", http.StatusBadRequest)
		return
	}

	if err := h.paddockService.Delete(ctx, id); err != nil {
		h.handleServiceError(w, r, "/api/paddocks/{id}", err)
		return
	}

	h.logger.Info(ctx, "[API_DELETE_PADDOCK] Paddock deleted", logging.Fields{
		"paddock_id": id.String(),
	})

	h.metrics.RecordAPIRequest("/api/paddocks/{id}", "DELETE", "204")
	w.WriteHeader(http.StatusNoContent)
}
