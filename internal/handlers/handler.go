package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"smartfarm-platform/internal/services"
	"smartfarm-platform/pkg/database"
	"smartfarm-platform/pkg/logging"
	"smartfarm-platform/pkg/metrics"
)

// Handler handles all API endpoints
type Handler struct {
	paddockService *services.PaddockService
	ndviService    *services.NDVIService
	weatherService *services.WeatherService
	db             *database.PostgresDB
	logger         *logging.StructuredLogger
	metrics        *metrics.Collector
}

// NewHandler creates a new API handler
func NewHandler(
	paddockService *services.PaddockService,
	ndviService *services.NDVIService,
	weatherService *services.WeatherService,
	db *database.PostgresDB,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *Handler {
	return &Handler{
		paddockService: paddockService,
		ndviService:    ndviService,
		weatherService: weatherService,
		db:             db,
		logger:         logger,
		metrics:        metricsCollector,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.db.HealthCheck(ctx); err != nil {
		h.logger.Error(ctx, "[HEALTH_CHECK] Database health check failed", logging.Fields{}, err)
		status["status"] = "unhealthy"
		status["database"] = "unreachable"
		h.sendJSON(w, status, http.StatusServiceUnavailable)
		return
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/paddocks", h.ListPaddocks).Methods("GET")
	router.HandleFunc("/api/paddocks", h.CreatePaddock).Methods("POST")
	router.HandleFunc("/api/paddocks/{id}", h.GetPaddock).Methods("GET")
	router.HandleFunc("/api/paddocks/{id}", h.UpdatePaddock).Methods("PUT")
	router.HandleFunc("/api/paddocks/{id}", h.DeletePaddock).Methods("DELETE")
	router.HandleFunc("/api/paddocks/{id}/ndvi", h.GetPaddockNDVI).Methods("GET")
	router.HandleFunc("/api/weather", h.GetWeather).Methods("GET")
	router.HandleFunc("/api/docs", OpenAPISpec).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
