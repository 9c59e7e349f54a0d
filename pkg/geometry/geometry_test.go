package geometry

import (
	"encoding/json"
	"math"
	"testing"
)

const squarePolygon = `{"type":"Polygon","coordinates":[[[0,0],[0.01,0],[0.01,0.01],[0,0.01],[0,0]]]}`

// Same square with the ring wound clockwise
const squarePolygonReversed = `{"type":"Polygon","coordinates":[[[0,0],[0,0.01],[0.01,0.01],[0.01,0],[0,0]]]}`

func TestAreaHectares(t *testing.T) {
	area, err := AreaHectares(json.RawMessage(squarePolygon))
	if err != nil {
		t.Fatalf("AreaHectares() error = %v", err)
	}

	if area <= 0 {
		t.Errorf("area = %v, want > 0", area)
	}

	// A 0.01 x 0.01 degree square at the equator is roughly 1.11km x 1.11km
	if area < 100 || area > 150 {
		t.Errorf("area = %v ha, want between 100 and 150", area)
	}
}

func TestAreaHectares_WindingInvariant(t *testing.T) {
	ccw, err := AreaHectares(json.RawMessage(squarePolygon))
	if err != nil {
		t.Fatalf("AreaHectares(ccw) error = %v", err)
	}

	cw, err := AreaHectares(json.RawMessage(squarePolygonReversed))
	if err != nil {
		t.Fatalf("AreaHectares(cw) error = %v", err)
	}

	if math.Abs(ccw-cw) > 1e-6 {
		t.Errorf("area differs by winding direction: ccw=%v cw=%v", ccw, cw)
	}

	if cw < 0 {
		t.Errorf("clockwise ring produced negative area: %v", cw)
	}
}

func TestAreaHectares_InvalidGeometry(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty input", raw: ""},
		{name: "not json", raw: "{{"},
		{name: "wrong type", raw: `{"type":"Point","coordinates":[0,0]}`},
		{name: "feature not geometry", raw: `{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}`},
		{name: "empty rings", raw: `{"type":"Polygon","coordinates":[]}`},
		{name: "empty outer ring", raw: `{"type":"Polygon","coordinates":[[]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AreaHectares(json.RawMessage(tt.raw))
			if err == nil {
				t.Fatal("AreaHectares() error = nil, want InvalidGeometryError")
			}
			if _, ok := err.(*InvalidGeometryError); !ok {
				t.Errorf("error type = %T, want *InvalidGeometryError", err)
			}
		})
	}
}

func TestCentroid(t *testing.T) {
	lon, lat, err := Centroid(json.RawMessage(squarePolygon))
	if err != nil {
		t.Fatalf("Centroid() error = %v", err)
	}

	if math.Abs(lon-0.005) > 1e-9 {
		t.Errorf("centroid lon = %v, want 0.005", lon)
	}
	if math.Abs(lat-0.005) > 1e-9 {
		t.Errorf("centroid lat = %v, want 0.005", lat)
	}
}

func TestSimplify(t *testing.T) {
	// A square with a nearly collinear midpoint on the bottom edge
	raw := json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[0.5,0.000001],[1,0],[1,1],[0,1],[0,0]]]}`)

	out, err := Simplify(raw, 0.01)
	if err != nil {
		t.Fatalf("Simplify() error = %v", err)
	}

	var geom struct {
		Type        string        `json:"type"`
		Coordinates [][][]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(out, &geom); err != nil {
		t.Fatalf("failed to decode simplified geometry: %v", err)
	}

	if geom.Type != "Polygon" {
		t.Errorf("type = %v, want Polygon", geom.Type)
	}
	if len(geom.Coordinates) != 1 {
		t.Fatalf("ring count = %d, want 1", len(geom.Coordinates))
	}
	if len(geom.Coordinates[0]) >= 6 {
		t.Errorf("simplified ring has %d points, want fewer than 6", len(geom.Coordinates[0]))
	}
}
