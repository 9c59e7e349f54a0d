package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"smartfarm-platform/internal/models"
	"smartfarm-platform/pkg/database"
	"smartfarm-platform/pkg/logging"
	"smartfarm-platform/pkg/metrics"
)

// WeatherRepository provides data access for cached weather snapshots
type WeatherRepository interface {
	Create(ctx context.Context, snapshot *models.WeatherSnapshot) error
	LatestSince(ctx context.Context, since time.Time) (*models.WeatherSnapshot, error)
}

// weatherRepository implements WeatherRepository
type weatherRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewWeatherRepository creates a new weather repository
func NewWeatherRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) WeatherRepository {
	return &weatherRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Create persists a new weather snapshot
func (r *weatherRepository) Create(ctx context.Context, snapshot *models.WeatherSnapshot) error {
	query := `
		INSERT INTO weather_data (id, date, temperature, rainfall, forecast, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var forecast interface{}
	if len(snapshot.Forecast) > 0 {
		forecast = string(snapshot.Forecast)
	}

	_, err := r.db.ExecContext(ctx, "insert_weather", query,
		snapshot.ID,
		snapshot.Date,
		snapshot.Temperature,
		snapshot.Rainfall,
		forecast,
		snapshot.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create weather snapshot: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_CREATE_WEATHER] Weather snapshot created", logging.Fields{
		"snapshot_id": snapshot.ID.String(),
		"date":        snapshot.Date.Format(time.RFC3339),
	})

	return nil
}

// LatestSince retrieves the most recent snapshot taken at or after the
// given cutoff
func (r *weatherRepository) LatestSince(ctx context.Context, since time.Time) (*models.WeatherSnapshot, error) {
	query := `
		SELECT id, date, temperature, rainfall, forecast, created_at
		FROM weather_data
		WHERE date >= $1
		ORDER BY date DESC
		LIMIT 1
	`

	var snapshot models.WeatherSnapshot
	err := r.db.GetContext(ctx, "latest_weather", &snapshot, query, since)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "weather_snapshot",
			ID:       since.Format(time.RFC3339),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get weather snapshot: %w", err)
	}

	return &snapshot, nil
}
