package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"smartfarm-platform/internal/models"
	"smartfarm-platform/internal/repository"
	"smartfarm-platform/pkg/logging"
	"smartfarm-platform/pkg/metrics"
)

// ErrWeatherUnavailable indicates no cached snapshot was fresh enough and
// the provider could not supply one
var ErrWeatherUnavailable = errors.New("weather data unavailable")

// WeatherService serves current weather, caching snapshots in the database.
// A snapshot is fresh if it was taken at or after the start of the previous
// clock hour, so the provider is hit at most roughly once per hour.
type WeatherService struct {
	repo     repository.WeatherRepository
	provider Provider
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
	now      func() time.Time
}

// NewWeatherService creates a new weather service
func NewWeatherService(repo repository.WeatherRepository, provider Provider, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *WeatherService {
	return &WeatherService{
		repo:     repo,
		provider: provider,
		logger:   logger,
		metrics:  metricsCollector,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetWeather returns a fresh-enough cached snapshot, or fetches, persists,
// and returns a new one
func (s *WeatherService) GetWeather(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error) {
	now := s.now()
	cutoff := now.Truncate(time.Hour).Add(-time.Hour)

	snapshot, err := s.repo.LatestSince(ctx, cutoff)
	if err == nil {
		s.metrics.WeatherCacheHits.Inc()
		return snapshot, nil
	}

	var notFound *repository.NotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	s.metrics.WeatherCacheMisses.Inc()

	payload, raw, ok := s.provider.CurrentWeather(ctx, lat, lon)
	if !ok {
		return nil, ErrWeatherUnavailable
	}

	rainfall := 0.0
	if payload.Rain != nil {
		rainfall = payload.Rain.OneHour
	}

	snapshot = &models.WeatherSnapshot{
		ID:          uuid.New(),
		Date:        now,
		Temperature: payload.Main.Temp,
		Rainfall:    rainfall,
		Forecast:    raw,
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, snapshot); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "[WEATHER] Fetched and cached weather snapshot", logging.Fields{
		"lat": lat,
		"lon": lon,
	})

	return snapshot, nil
}
