package agro

import "fmt"

// SatelliteImage is one result from the image search endpoint, enriched with
// an ISO date and long-form coverage/cloud fields derived from the provider's
// short wire names. An image is NDVI-capable only when Image carries an
// "ndvi" band URL.
type SatelliteImage struct {
	DT       int64             `json:"dt"`
	Date     string            `json:"date"`
	Type     string            `json:"type"`
	Clouds   float64           `json:"clouds"`
	Coverage float64           `json:"coverage"`
	Sun      SunPosition       `json:"sun"`
	Image    map[string]string `json:"image"`
	Tile     map[string]string `json:"tile"`
	Stats    map[string]string `json:"stats"`
}

// NDVIBandURL returns the NDVI band URL, or "" when the image has none
func (s SatelliteImage) NDVIBandURL() string {
	return s.Image["ndvi"]
}

// SunPosition holds sun-angle metadata for a satellite image
type SunPosition struct {
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
}

// Statistics holds aggregate NDVI statistics for a single image.
// Fields absent from the provider payload default to zero.
type Statistics struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Num    int     `json:"num"`
}

// NDVIStats is the combined result of a statistics lookup for one image
type NDVIStats struct {
	Statistics Statistics `json:"statistics"`
	TileURL    string     `json:"tile_url"`
	ImageURL   string     `json:"image_url"`
	PresetCode string     `json:"preset_code"`
	ImageID    string     `json:"image_id"`
}

// HistoryEntry is one normalized historical NDVI data point
type HistoryEntry struct {
	Date   string  `json:"date"`
	NDVI   float64 `json:"ndvi"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
}

// WeatherPayload is the typed subset of the provider's current weather
// response the platform extracts. The raw payload is returned alongside
// for opaque storage.
type WeatherPayload struct {
	DT   int64        `json:"dt"`
	Main WeatherMain  `json:"main"`
	Rain *WeatherRain `json:"rain"`
}

// WeatherMain holds core weather readings
type WeatherMain struct {
	Temp     *float64 `json:"temp"`
	Humidity float64  `json:"humidity"`
	Pressure float64  `json:"pressure"`
}

// WeatherRain holds rainfall accumulation readings
type WeatherRain struct {
	OneHour float64 `json:"1h"`
}

// ProviderError indicates a non-2xx response from the Agromonitoring API
type ProviderError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// InvalidURLFormatError indicates an NDVI band URL that does not carry the
// expected trailing preset/image path segments
type InvalidURLFormatError struct {
	URL string
}

func (e *InvalidURLFormatError) Error() string {
	return fmt.Sprintf("invalid NDVI URL format: %s", e.URL)
}

// Wire shapes with the provider's short field names

type satelliteImageWire struct {
	DT    int64             `json:"dt"`
	Type  string            `json:"type"`
	DC    float64           `json:"dc"`
	CL    float64           `json:"cl"`
	Sun   sunWire           `json:"sun"`
	Image map[string]string `json:"image"`
	Tile  map[string]string `json:"tile"`
	Stats map[string]string `json:"stats"`
}

type sunWire struct {
	A float64 `json:"a"`
	E float64 `json:"e"`
}

type historyEntryWire struct {
	DT   *int64      `json:"dt"`
	Data *Statistics `json:"data"`
}
