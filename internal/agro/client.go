package agro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"smartfarm-platform/pkg/logging"
	"smartfarm-platform/pkg/metrics"
)

// Config holds Agromonitoring API client settings
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is a typed client for the Agromonitoring API. Read operations
// (image search, statistics, history, weather) swallow failures into empty
// results so callers degrade gracefully; write operations (polygon create
// and delete) report failures for the caller to decide.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	now     func() time.Time
}

// NewClient creates a new Agromonitoring API client
func NewClient(cfg Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: metricsCollector,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreatePolygon registers a named polygon with the provider and returns the
// assigned polygon id. A bare geometry is wrapped in a GeoJSON Feature; an
// input that already is a Feature is submitted as-is.
func (c *Client) CreatePolygon(ctx context.Context, name string, geometry json.RawMessage) (string, error) {
	feature, err := wrapFeature(geometry)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"name":     name,
		"geo_json": json.RawMessage(feature),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode polygon payload: %w", err)
	}

	reqURL := fmt.Sprintf("%s/polygons?appid=%s", c.baseURL, url.QueryEscape(c.apiKey))

	status, data, err := c.do(ctx, "create_polygon", http.MethodPost, reqURL, payload)
	if err != nil {
		c.metrics.RecordProviderError("create_polygon")
		return "", fmt.Errorf("create polygon request failed: %w", err)
	}

	if status < 200 || status >= 300 {
		c.metrics.RecordProviderError("create_polygon")
		c.logger.Error(ctx, "[AGRO_CREATE_POLYGON] Provider rejected polygon", logging.Fields{
			"name":   name,
			"status": status,
			"body":   string(data),
		}, nil)
		return "", &ProviderError{Endpoint: "create_polygon", StatusCode: status, Body: string(data)}
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("failed to decode create polygon response: %w", err)
	}

	return out.ID, nil
}

// DeletePolygon removes a polygon from the provider. Best-effort: failures
// are logged and reported as false, never propagated, since polygon deletion
// is not transactionally linked to local deletion.
func (c *Client) DeletePolygon(ctx context.Context, polygonID string) bool {
	reqURL := fmt.Sprintf("%s/polygons/%s?appid=%s",
		c.baseURL, url.PathEscape(polygonID), url.QueryEscape(c.apiKey))

	status, data, err := c.do(ctx, "delete_polygon", http.MethodDelete, reqURL, nil)
	if err != nil {
		c.metrics.RecordProviderError("delete_polygon")
		c.logger.Error(ctx, "[AGRO_DELETE_POLYGON] Delete request failed", logging.Fields{
			"polygon_id": polygonID,
		}, err)
		return false
	}

	if status < 200 || status >= 300 {
		c.metrics.RecordProviderError("delete_polygon")
		c.logger.Error(ctx, "[AGRO_DELETE_POLYGON] Provider rejected delete", logging.Fields{
			"polygon_id": polygonID,
			"status":     status,
			"body":       string(data),
		}, nil)
		return false
	}

	return true
}

// SearchImages lists available satellite imagery for a polygon. When either
// bound is nil the window defaults to the trailing 30 days ending now.
// Returns an empty slice on any failure.
func (c *Client) SearchImages(ctx context.Context, polygonID string, start, end *time.Time) []SatelliteImage {
	s, e := c.window(start, end)

	reqURL := fmt.Sprintf("%s/image/search?appid=%s&polyid=%s&start=%d&end=%d",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(polygonID), s.Unix(), e.Unix())

	status, data, err := c.do(ctx, "image_search", http.MethodGet, reqURL, nil)
	if err != nil || status < 200 || status >= 300 {
		c.metrics.RecordProviderError("image_search")
		c.logger.Error(ctx, "[AGRO_IMAGE_SEARCH] Image search failed", logging.Fields{
			"polygon_id": polygonID,
			"status":     status,
		}, err)
		return []SatelliteImage{}
	}

	var wire []satelliteImageWire
	if err := json.Unmarshal(data, &wire); err != nil {
		c.metrics.RecordProviderError("image_search")
		c.logger.Error(ctx, "[AGRO_IMAGE_SEARCH] Failed to decode image search response", logging.Fields{
			"polygon_id": polygonID,
		}, err)
		return []SatelliteImage{}
	}

	images := make([]SatelliteImage, 0, len(wire))
	for _, w := range wire {
		img := SatelliteImage{
			DT:       w.DT,
			Type:     w.Type,
			Clouds:   w.CL,
			Coverage: w.DC,
			Sun:      SunPosition{Azimuth: w.Sun.A, Elevation: w.Sun.E},
			Image:    w.Image,
			Tile:     w.Tile,
			Stats:    w.Stats,
		}
		if w.DT > 0 {
			img.Date = time.Unix(w.DT, 0).UTC().Format(time.RFC3339)
		}
		images = append(images, img)
	}

	return images
}

// ParseNDVIURL extracts the preset code and image id encoded as the two
// trailing path segments of an NDVI band URL. A query string on the final
// segment is stripped.
func ParseNDVIURL(ndviURL string) (string, string, error) {
	parts := strings.Split(ndviURL, "/")
	if len(parts) < 2 {
		return "", "", &InvalidURLFormatError{URL: ndviURL}
	}

	preset := parts[len(parts)-2]
	imageID := parts[len(parts)-1]
	if i := strings.Index(imageID, "?"); i >= 0 {
		imageID = imageID[:i]
	}

	return preset, imageID, nil
}

// NDVIStats fetches aggregate statistics for the image behind an NDVI band
// URL and synthesizes the matching z/x/y tile template. Fails with
// InvalidURLFormatError when the URL cannot be parsed; transport and decode
// failures return a zero-value result instead.
func (c *Client) NDVIStats(ctx context.Context, polygonID, ndviURL string) (NDVIStats, error) {
	preset, imageID, err := ParseNDVIURL(ndviURL)
	if err != nil {
		return NDVIStats{}, err
	}

	statsURL := fmt.Sprintf("%s/stats/1.0/%s/%s?appid=%s",
		c.baseURL, preset, imageID, url.QueryEscape(c.apiKey))

	status, data, reqErr := c.do(ctx, "ndvi_stats", http.MethodGet, statsURL, nil)
	if reqErr != nil || status < 200 || status >= 300 {
		c.metrics.RecordProviderError("ndvi_stats")
		c.logger.Error(ctx, "[AGRO_NDVI_STATS] Statistics lookup failed", logging.Fields{
			"polygon_id": polygonID,
			"preset":     preset,
			"image_id":   imageID,
			"status":     status,
		}, reqErr)
		return NDVIStats{}, nil
	}

	var stats Statistics
	if err := json.Unmarshal(data, &stats); err != nil {
		c.metrics.RecordProviderError("ndvi_stats")
		c.logger.Error(ctx, "[AGRO_NDVI_STATS] Failed to decode statistics response", logging.Fields{
			"polygon_id": polygonID,
			"image_id":   imageID,
		}, err)
		return NDVIStats{}, nil
	}

	tileURL := fmt.Sprintf("%s/tile/1.0/{z}/{x}/{y}/%s/%s?appid=%s",
		c.baseURL, preset, imageID, url.QueryEscape(c.apiKey))

	return NDVIStats{
		Statistics: stats,
		TileURL:    tileURL,
		ImageURL:   ndviURL,
		PresetCode: preset,
		ImageID:    imageID,
	}, nil
}

// NDVIHistory fetches historical NDVI data for a polygon with the same
// 30-day default windowing as SearchImages. Entries missing a timestamp or
// data block are skipped. Returns an empty slice on any failure.
func (c *Client) NDVIHistory(ctx context.Context, polygonID string, start, end *time.Time) []HistoryEntry {
	s, e := c.window(start, end)

	reqURL := fmt.Sprintf("%s/ndvi/history?polyid=%s&start=%d&end=%d&appid=%s",
		c.baseURL, url.QueryEscape(polygonID), s.Unix(), e.Unix(), url.QueryEscape(c.apiKey))

	status, data, err := c.do(ctx, "ndvi_history", http.MethodGet, reqURL, nil)
	if err != nil || status < 200 || status >= 300 {
		c.metrics.RecordProviderError("ndvi_history")
		c.logger.Error(ctx, "[AGRO_NDVI_HISTORY] History lookup failed", logging.Fields{
			"polygon_id": polygonID,
			"status":     status,
		}, err)
		return []HistoryEntry{}
	}

	var wire []historyEntryWire
	if err := json.Unmarshal(data, &wire); err != nil {
		c.metrics.RecordProviderError("ndvi_history")
		c.logger.Error(ctx, "[AGRO_NDVI_HISTORY] Failed to decode history response", logging.Fields{
			"polygon_id": polygonID,
		}, err)
		return []HistoryEntry{}
	}

	history := make([]HistoryEntry, 0, len(wire))
	for _, w := range wire {
		if w.DT == nil || w.Data == nil {
			continue
		}
		history = append(history, HistoryEntry{
			Date:   time.Unix(*w.DT, 0).UTC().Format(time.RFC3339),
			NDVI:   w.Data.Mean,
			Min:    w.Data.Min,
			Max:    w.Data.Max,
			Median: w.Data.Median,
			Std:    w.Data.Std,
		})
	}

	return history
}

// CurrentWeather fetches current weather for a location. Returns the typed
// payload, the raw response body for opaque storage, and false on any failure.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (WeatherPayload, []byte, bool) {
	reqURL := fmt.Sprintf("%s/weather?lat=%s&lon=%s&appid=%s",
		c.baseURL,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64),
		url.QueryEscape(c.apiKey))

	status, data, err := c.do(ctx, "weather", http.MethodGet, reqURL, nil)
	if err != nil || status < 200 || status >= 300 {
		c.metrics.RecordProviderError("weather")
		c.logger.Error(ctx, "[AGRO_WEATHER] Weather lookup failed", logging.Fields{
			"lat":    lat,
			"lon":    lon,
			"status": status,
		}, err)
		return WeatherPayload{}, nil, false
	}

	var payload WeatherPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.metrics.RecordProviderError("weather")
		c.logger.Error(ctx, "[AGRO_WEATHER] Failed to decode weather response", logging.Fields{
			"lat": lat,
			"lon": lon,
		}, err)
		return WeatherPayload{}, nil, false
	}

	return payload, data, true
}

// window applies the trailing 30-day default to missing bounds
func (c *Client) window(start, end *time.Time) (time.Time, time.Time) {
	e := c.now()
	if end != nil {
		e = *end
	}
	s := e.AddDate(0, 0, -30)
	if start != nil {
		s = *start
	}
	return s, e
}

// do executes one provider request and returns the status code and body
func (c *Client) do(ctx context.Context, endpoint, method, reqURL string, body []byte) (int, []byte, error) {
	timer := time.Now()
	defer func() {
		c.metrics.ProviderRequestDuration.WithLabelValues(endpoint).Observe(time.Since(timer).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, data, nil
}

// wrapFeature wraps a bare geometry in a GeoJSON Feature, passing an
// existing Feature through unchanged
func wrapFeature(geometry json.RawMessage) (json.RawMessage, error) {
	var probe struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(geometry, &probe); err != nil {
		return nil, fmt.Errorf("invalid geometry json: %w", err)
	}

	if probe.Type == "Feature" {
		return geometry, nil
	}

	coordinates := probe.Coordinates
	if len(coordinates) == 0 {
		coordinates = json.RawMessage("[]")
	}

	return json.Marshal(map[string]interface{}{
		"type":       "Feature",
		"properties": map[string]interface{}{},
		"geometry": map[string]interface{}{
			"type":        "Polygon",
			"coordinates": coordinates,
		},
	})
}
