package agro

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"smartfarm-platform/pkg/logging"
	"smartfarm-platform/pkg/metrics"
)

// Shared collector: prometheus registration is global per test binary
var testMetrics = metrics.NewCollector("agro_test")

func newTestClient(baseURL string) *Client {
	logger := logging.NewStructuredLogger("agro-test", "test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)

	return NewClient(Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	}, logger, testMetrics)
}

func TestParseNDVIURL(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantPreset string
		wantImage  string
		wantErr    bool
	}{
		{
			name:       "full url with query string",
			url:        "http://api.agromonitoring.com/image/1.0/abc123/img456?x=1",
			wantPreset: "abc123",
			wantImage:  "img456",
		},
		{
			name:       "two bare segments",
			url:        "abc123/img456",
			wantPreset: "abc123",
			wantImage:  "img456",
		},
		{
			name:    "single segment",
			url:     "img456",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preset, imageID, err := ParseNDVIURL(tt.url)

			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseNDVIURL() error = nil, want InvalidURLFormatError")
				}
				var urlErr *InvalidURLFormatError
				if !errors.As(err, &urlErr) {
					t.Errorf("error type = %T, want *InvalidURLFormatError", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseNDVIURL() error = %v", err)
			}
			if preset != tt.wantPreset {
				t.Errorf("preset = %q, want %q", preset, tt.wantPreset)
			}
			if imageID != tt.wantImage {
				t.Errorf("imageID = %q, want %q", imageID, tt.wantImage)
			}
		})
	}
}

func TestCreatePolygon_WrapsBareGeometry(t *testing.T) {
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/polygons" {
			t.Errorf("path = %q, want /polygons", r.URL.Path)
		}
		if r.URL.Query().Get("appid") != "test-key" {
			t.Errorf("appid = %q, want test-key", r.URL.Query().Get("appid"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"p1"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	geometry := json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`)

	id, err := client.CreatePolygon(context.Background(), "north field", geometry)
	if err != nil {
		t.Fatalf("CreatePolygon() error = %v", err)
	}
	if id != "p1" {
		t.Errorf("id = %q, want p1", id)
	}

	if gotBody["name"] != "north field" {
		t.Errorf("name = %v, want north field", gotBody["name"])
	}
	geoJSON, ok := gotBody["geo_json"].(map[string]interface{})
	if !ok {
		t.Fatalf("geo_json missing or wrong type: %v", gotBody["geo_json"])
	}
	if geoJSON["type"] != "Feature" {
		t.Errorf("geo_json.type = %v, want Feature", geoJSON["type"])
	}
	inner, ok := geoJSON["geometry"].(map[string]interface{})
	if !ok || inner["type"] != "Polygon" {
		t.Errorf("geo_json.geometry = %v, want wrapped Polygon", geoJSON["geometry"])
	}
}

func TestCreatePolygon_FeaturePassthrough(t *testing.T) {
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"id":"p2"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	feature := json.RawMessage(`{"type":"Feature","properties":{"tag":"keep"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}`)

	if _, err := client.CreatePolygon(context.Background(), "south field", feature); err != nil {
		t.Fatalf("CreatePolygon() error = %v", err)
	}

	geoJSON := gotBody["geo_json"].(map[string]interface{})
	props, ok := geoJSON["properties"].(map[string]interface{})
	if !ok || props["tag"] != "keep" {
		t.Errorf("feature was not passed through unchanged: %v", geoJSON)
	}
}

func TestCreatePolygon_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"area too large"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	geometry := json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`)

	_, err := client.CreatePolygon(context.Background(), "big field", geometry)
	if err == nil {
		t.Fatal("CreatePolygon() error = nil, want ProviderError")
	}

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error type = %T, want *ProviderError", err)
	}
	if provErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %d, want 422", provErr.StatusCode)
	}
}

func TestDeletePolygon(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "success", status: http.StatusNoContent, want: true},
		{name: "not found", status: http.StatusNotFound, want: false},
		{name: "server error", status: http.StatusInternalServerError, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("method = %q, want DELETE", r.Method)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			if got := client.DeletePolygon(context.Background(), "p1"); got != tt.want {
				t.Errorf("DeletePolygon() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchImages(t *testing.T) {
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"polyid": r.URL.Query().Get("polyid"),
			"start":  r.URL.Query().Get("start"),
			"end":    r.URL.Query().Get("end"),
		}
		w.Write([]byte(`[
			{"dt":1700000000,"type":"Sentinel-2","dc":100,"cl":12.5,"sun":{"a":138.5,"e":42.4},
			 "image":{"ndvi":"http://x/image/1.0/abc123/img456","truecolor":"http://x/image/1.0/abc123/tc"}},
			{"dt":1699000000,"type":"Landsat-8","dc":80,"cl":3.1,"sun":{"a":140.0,"e":40.0},
			 "image":{"truecolor":"http://x/image/1.0/def789/tc"}}
		]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	fixed := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return fixed }

	images := client.SearchImages(context.Background(), "p1", nil, nil)

	if len(images) != 2 {
		t.Fatalf("len(images) = %d, want 2", len(images))
	}

	// Default window: trailing 30 days ending now, in epoch seconds
	wantEnd := fixed.Unix()
	wantStart := fixed.AddDate(0, 0, -30).Unix()
	if gotQuery["end"] != jsonInt(wantEnd) {
		t.Errorf("end = %s, want %d", gotQuery["end"], wantEnd)
	}
	if gotQuery["start"] != jsonInt(wantStart) {
		t.Errorf("start = %s, want %d", gotQuery["start"], wantStart)
	}
	if gotQuery["polyid"] != "p1" {
		t.Errorf("polyid = %s, want p1", gotQuery["polyid"])
	}

	first := images[0]
	if first.Date != time.Unix(1700000000, 0).UTC().Format(time.RFC3339) {
		t.Errorf("Date = %q, want ISO timestamp for dt", first.Date)
	}
	if first.Clouds != 12.5 {
		t.Errorf("Clouds = %v, want 12.5", first.Clouds)
	}
	if first.Coverage != 100 {
		t.Errorf("Coverage = %v, want 100", first.Coverage)
	}
	if first.Sun.Azimuth != 138.5 || first.Sun.Elevation != 42.4 {
		t.Errorf("Sun = %+v, want azimuth 138.5 elevation 42.4", first.Sun)
	}
	if first.NDVIBandURL() == "" {
		t.Error("first image should carry an NDVI band URL")
	}
	if images[1].NDVIBandURL() != "" {
		t.Error("second image should not carry an NDVI band URL")
	}
}

func TestSearchImages_ExplicitWindow(t *testing.T) {
	var gotStart, gotEnd string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("start")
		gotEnd = r.URL.Query().Get("end")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	client.SearchImages(context.Background(), "p1", &start, &end)

	if gotStart != jsonInt(start.Unix()) {
		t.Errorf("start = %s, want %d", gotStart, start.Unix())
	}
	if gotEnd != jsonInt(end.Unix()) {
		t.Errorf("end = %s, want %d", gotEnd, end.Unix())
	}
}

func TestSearchImages_ProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	images := client.SearchImages(context.Background(), "p1", nil, nil)

	if len(images) != 0 {
		t.Errorf("len(images) = %d, want 0 on provider failure", len(images))
	}
}

func TestNDVIStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stats/1.0/abc123/img456" {
			t.Errorf("path = %q, want /stats/1.0/abc123/img456", r.URL.Path)
		}
		w.Write([]byte(`{"mean":0.55,"min":0.1,"max":0.9,"median":0.6,"std":0.12,"num":4000}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	stats, err := client.NDVIStats(context.Background(), "p1", "http://x/image/1.0/abc123/img456?x=1")
	if err != nil {
		t.Fatalf("NDVIStats() error = %v", err)
	}

	if stats.Statistics.Mean != 0.55 {
		t.Errorf("Mean = %v, want 0.55", stats.Statistics.Mean)
	}
	if stats.PresetCode != "abc123" || stats.ImageID != "img456" {
		t.Errorf("parsed ids = %q/%q, want abc123/img456", stats.PresetCode, stats.ImageID)
	}

	wantTile := server.URL + "/tile/1.0/{z}/{x}/{y}/abc123/img456?appid=test-key"
	if stats.TileURL != wantTile {
		t.Errorf("TileURL = %q, want %q", stats.TileURL, wantTile)
	}
	if stats.ImageURL != "http://x/image/1.0/abc123/img456?x=1" {
		t.Errorf("ImageURL = %q, want original NDVI URL", stats.ImageURL)
	}
}

func TestNDVIStats_InvalidURL(t *testing.T) {
	client := newTestClient("http://unused")

	_, err := client.NDVIStats(context.Background(), "p1", "nosegments")
	if err == nil {
		t.Fatal("NDVIStats() error = nil, want InvalidURLFormatError")
	}

	var urlErr *InvalidURLFormatError
	if !errors.As(err, &urlErr) {
		t.Errorf("error type = %T, want *InvalidURLFormatError", err)
	}
}

func TestNDVIStats_TransportFailureIsNonFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	stats, err := client.NDVIStats(context.Background(), "p1", "abc123/img456")
	if err != nil {
		t.Fatalf("NDVIStats() error = %v, want nil on transport failure", err)
	}
	if stats.Statistics.Mean != 0 || stats.TileURL != "" {
		t.Errorf("stats = %+v, want zero value", stats)
	}
}

func TestNDVIHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"dt":1700000000,"data":{"mean":0.42,"min":0.1,"max":0.8,"median":0.45,"std":0.05}},
			{"data":{"mean":0.9}},
			{"dt":1699000000},
			{"dt":1698000000,"data":{"mean":0.3}}
		]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	history := client.NDVIHistory(context.Background(), "p1", nil, nil)

	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2 (entries missing dt or data skipped)", len(history))
	}

	if history[0].NDVI != 0.42 || history[0].Median != 0.45 {
		t.Errorf("history[0] = %+v", history[0])
	}
	if history[0].Date != time.Unix(1700000000, 0).UTC().Format(time.RFC3339) {
		t.Errorf("Date = %q, want ISO timestamp", history[0].Date)
	}

	// Absent statistics fields default to 0
	if history[1].Min != 0 || history[1].Max != 0 || history[1].Std != 0 {
		t.Errorf("history[1] = %+v, want zero defaults for absent fields", history[1])
	}
}

func TestNDVIHistory_ProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if history := client.NDVIHistory(context.Background(), "p1", nil, nil); len(history) != 0 {
		t.Errorf("len(history) = %d, want 0 on provider failure", len(history))
	}
}

func TestCurrentWeather(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lat") != "-33.5" || r.URL.Query().Get("lon") != "148.25" {
			t.Errorf("coords = %s,%s", r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
		}
		w.Write([]byte(`{"dt":1700000000,"main":{"temp":291.5,"humidity":60},"rain":{"1h":0.4}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	payload, raw, ok := client.CurrentWeather(context.Background(), -33.5, 148.25)
	if !ok {
		t.Fatal("CurrentWeather() ok = false, want true")
	}

	if payload.Main.Temp == nil || *payload.Main.Temp != 291.5 {
		t.Errorf("Temp = %v, want 291.5", payload.Main.Temp)
	}
	if payload.Rain == nil || payload.Rain.OneHour != 0.4 {
		t.Errorf("Rain = %+v, want 1h = 0.4", payload.Rain)
	}
	if len(raw) == 0 {
		t.Error("raw payload should be returned for storage")
	}
}

func TestCurrentWeather_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, _, ok := client.CurrentWeather(context.Background(), 0, 0); ok {
		t.Error("CurrentWeather() ok = true, want false on provider failure")
	}
}

func jsonInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
