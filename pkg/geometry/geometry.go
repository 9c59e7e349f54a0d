package geometry

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// InvalidGeometryError indicates the input is not a usable GeoJSON Polygon
type InvalidGeometryError struct {
	Reason string
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("invalid geometry: %s", e.Reason)
}

// decodePolygon parses raw GeoJSON into an orb.Polygon. The geometry must
// carry type "Polygon" and at least one non-empty coordinate ring.
func decodePolygon(raw json.RawMessage) (orb.Polygon, error) {
	if len(raw) == 0 {
		return nil, &InvalidGeometryError{Reason: "empty geometry"}
	}

	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, &InvalidGeometryError{Reason: err.Error()}
	}

	polygon, ok := g.Geometry().(orb.Polygon)
	if !ok {
		return nil, &InvalidGeometryError{Reason: fmt.Sprintf("expected Polygon, got %s", g.Type)}
	}

	if len(polygon) == 0 || len(polygon[0]) == 0 {
		return nil, &InvalidGeometryError{Reason: "polygon has no coordinate rings"}
	}

	return polygon, nil
}

// AreaHectares computes the geodesic area of a GeoJSON Polygon on the WGS84
// figure of the earth and converts square meters to hectares. The result is
// always non-negative regardless of ring winding direction.
func AreaHectares(raw json.RawMessage) (float64, error) {
	polygon, err := decodePolygon(raw)
	if err != nil {
		return 0, err
	}

	areaSqm := math.Abs(geo.Area(polygon))
	return areaSqm / 10000, nil
}

// Centroid returns the (lon, lat) centroid of a GeoJSON Polygon
func Centroid(raw json.RawMessage) (float64, float64, error) {
	polygon, err := decodePolygon(raw)
	if err != nil {
		return 0, 0, err
	}

	centroid, _ := planar.CentroidArea(polygon)
	return centroid.Lon(), centroid.Lat(), nil
}

// Simplify reduces the vertex count of a GeoJSON Polygon using Douglas-Peucker
// with the given tolerance in degrees. Utility only; the NDVI pipeline does not
// simplify geometry before registration.
func Simplify(raw json.RawMessage, tolerance float64) (json.RawMessage, error) {
	polygon, err := decodePolygon(raw)
	if err != nil {
		return nil, err
	}

	simplified := simplify.DouglasPeucker(tolerance).Simplify(polygon.Clone())

	out, err := geojson.NewGeometry(simplified).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode simplified geometry: %w", err)
	}

	return out, nil
}
