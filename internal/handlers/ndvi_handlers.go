package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// GetPaddockNDVI handles GET /api/paddocks/{id}/ndvi
func (h *Handler) GetPaddockNDVI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/paddocks/{id}/ndvi").Observe(duration.Seconds())
	}()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.sendError(w, r, "invalid paddock id", http.StatusBadRequest)
		return
	}

	var start, end *time.Time

	if startStr := r.URL.Query().Get("start_date"); startStr != "" {
		t, err := parseDateTime(startStr)
		if err != nil {
			h.sendError(w, r, "invalid start_date format", http.StatusBadRequest)
			return
		}
		start = &t
	}

	if endStr := r.URL.Query().Get("end_date"); endStr != "" {
		t, err := parseDateTime(endStr)
		if err != nil {
			h.sendError(w, r, "invalid end_date format", http.StatusBadRequest)
			return
		}
		end = &t
	}

	paddock, err := h.paddockService.Get(ctx, id)
	if err != nil {
		h.handleServiceError(w, r, "/api/paddocks/{id}/ndvi", err)
		return
	}

	view, err := h.ndviService.GetNDVIView(ctx, paddock, start, end)
	if err != nil {
		h.handleServiceError(w, r, "/api/paddocks/{id}/ndvi", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/paddocks/{id}/ndvi", "GET", "200")
	h.sendJSON(w, view, http.StatusOK)
}
