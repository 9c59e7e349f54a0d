package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Paddock represents a user-defined field boundary polygon.
// AreaHectares is derived from Geometry and recomputed whenever the
// geometry changes. AgroPolygonID is nil until the polygon has been
// registered with the Agromonitoring API; its absence is not an error.
type Paddock struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Geometry      json.RawMessage `json:"geometry" db:"geometry"`
	AreaHectares  float64         `json:"area" db:"area_hectares"`
	AgroPolygonID *string         `json:"agro_polygon_id,omitempty" db:"agro_polygon_id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// PaddockRequest is the request body for paddock create and update
type PaddockRequest struct {
	Name     string          `json:"name"`
	Geometry json.RawMessage `json:"geometry"`
}

// Validate checks required fields and bounds
func (r *PaddockRequest) Validate() error {
	if r.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(r.Name) > 255 {
		return &ValidationError{Field: "name", Message: "name must be at most 255 characters"}
	}
	if len(r.Geometry) == 0 {
		return &ValidationError{Field: "geometry", Message: "geometry is required"}
	}
	return nil
}

// ValidationError represents a request validation error with a field-level message
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
