package handlers

import (
	"net/http"
	"strconv"
	"time"
)

// GetWeather handles GET /api/weather
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/weather").Observe(duration.Seconds())
	}()

	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")

	if latStr == "" || lonStr == "" {
		h.sendError(w, r, "lat and lon query parameters are required", http.StatusBadRequest)
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		h.sendError(w, r, "invalid lat, expected number between -90 and 90", http.StatusBadRequest)
		return
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		h.sendError(w, r, "invalid lon, expected number between -180 and 180", http.StatusBadRequest)
		return
	}

	snapshot, err := h.weatherService.GetWeather(ctx, lat, lon)
	if err != nil {
		h.handleServiceError(w, r, "/api/weather", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/weather", "GET", "200")
	h.sendJSON(w, snapshot, http.StatusOK)
}
