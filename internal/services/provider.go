package services

import (
	"context"
	"encoding/json"
	"time"

	"smartfarm-platform/internal/agro"
)

// Provider is the subset of the Agromonitoring client the services depend on
type Provider interface {
	CreatePolygon(ctx context.Context, name string, geometry json.RawMessage) (string, error)
	DeletePolygon(ctx context.Context, polygonID string) bool
	SearchImages(ctx context.Context, polygonID string, start, end *time.Time) []agro.SatelliteImage
	NDVIStats(ctx context.Context, polygonID, ndviURL string) (agro.NDVIStats, error)
	NDVIHistory(ctx context.Context, polygonID string, start, end *time.Time) []agro.HistoryEntry
	CurrentWeather(ctx context.Context, lat, lon float64) (agro.WeatherPayload, []byte, bool)
}
