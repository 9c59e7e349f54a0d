package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WeatherSnapshot is a cached weather observation. A snapshot taken within
// the last clock-hour is reused instead of issuing a new provider call.
// Rainfall is the last-hour accumulation and defaults to 0 when the provider
// omits it. Forecast holds the raw provider payload.
type WeatherSnapshot struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Date        time.Time       `json:"date" db:"date"`
	Temperature *float64        `json:"temperature" db:"temperature"`
	Rainfall    float64         `json:"rainfall" db:"rainfall"`
	Forecast    json.RawMessage `json:"forecast" db:"forecast"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
