package models

import (
	"time"

	"github.com/google/uuid"
)

// NDVIRecord is a cached historical NDVI observation for a paddock.
// Records are append-only facts; deleting a paddock cascades to its records.
type NDVIRecord struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PaddockID   uuid.UUID `json:"paddock_id" db:"paddock_id"`
	Date        time.Time `json:"date" db:"date"`
	NDVI        float64   `json:"ndvi" db:"ndvi_value"`
	MinValue    float64   `json:"min" db:"min_value"`
	MaxValue    float64   `json:"max" db:"max_value"`
	MedianValue float64   `json:"median" db:"median_value"`
	StdValue    float64   `json:"std" db:"std_value"`
	ImageURL    *string   `json:"image_url,omitempty" db:"image_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NDVIView is the assembled response for a paddock's NDVI query
type NDVIView struct {
	Current        NDVICurrent     `json:"current"`
	AvailableDates []NDVIAvailable `json:"available_dates"`
	History        []NDVIPoint     `json:"history"`
	Summary        *NDVISummary    `json:"summary,omitempty"`
}

// NDVICurrent describes the selected current image and its statistics
type NDVICurrent struct {
	Date       string             `json:"date"`
	Statistics NDVIStatistics     `json:"statistics"`
	TileURL    string             `json:"tile_url"`
	ImageURL   string             `json:"image_url"`
	Clouds     float64            `json:"clouds"`
	Coverage   float64            `json:"coverage"`
	Satellite  string             `json:"satellite"`
	Sun        SunPosition        `json:"sun"`
}

// NDVIStatistics holds aggregate NDVI statistics for a single image
type NDVIStatistics struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Num    int     `json:"num"`
}

// SunPosition holds sun-angle metadata for a satellite image
type SunPosition struct {
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
}

// NDVIAvailable describes one NDVI-capable image in the searched window
type NDVIAvailable struct {
	Date      string            `json:"date"`
	Clouds    float64           `json:"clouds"`
	Coverage  float64           `json:"coverage"`
	Satellite string            `json:"satellite"`
	URLs      map[string]string `json:"urls"`
}

// NDVIPoint is one historical NDVI data point
type NDVIPoint struct {
	Date   string  `json:"date"`
	NDVI   float64 `json:"ndvi"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
}

// NDVISummary is a roll-up over the history window
type NDVISummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Std    float64 `json:"std"`
	Count  int     `json:"count"`
	Health string  `json:"health"`
}

// HealthStatus maps an NDVI mean to a coarse vegetation health label
func HealthStatus(ndvi float64) string {
	switch {
	case ndvi < 0.3:
		return "low"
	case ndvi < 0.6:
		return "medium"
	default:
		return "high"
	}
}
