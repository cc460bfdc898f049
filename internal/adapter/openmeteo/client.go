package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
)

const (
	upstream       = "openmeteo"
	currentMetrics = "temperature_2m,relative_humidity_2m,wind_speed_10m,precipitation"
)

// Client implements domain.WeatherProvider using the Open-Meteo forecast API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo weather client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// CurrentWeather returns current conditions at the coordinate.
func (c *Client) CurrentWeather(ctx context.Context, coord domain.Coordinate) (domain.Weather, error) {
	params := url.Values{
		"latitude":        {strconv.FormatFloat(coord.Lat, 'f', 6, 64)},
		"longitude":       {strconv.FormatFloat(coord.Lon, 'f', 6, 64)},
		"current":         {currentMetrics},
		"wind_speed_unit": {"kmh"},
		"timezone":        {"GMT"},
	}
	fullURL := c.baseURL + "/v1/forecast?" + params.Encode()

	start := time.Now()
	w, err := c.doRequest(ctx, fullURL)
	c.metrics.UpstreamDuration.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(upstream, "error").Inc()
		return domain.Weather{}, err
	}
	c.metrics.UpstreamRequests.WithLabelValues(upstream, "success").Inc()

	c.logger.Debug("weather fetched",
		"lat", coord.Lat,
		"lon", coord.Lon,
		"temperature", w.Temperature,
		"humidity", w.RelativeHumidity,
	)
	return w, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.Weather, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Weather{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var forecast response
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return domain.Weather{}, fmt.Errorf("decode response: %w", err)
	}
	if forecast.Current == nil {
		return domain.Weather{}, fmt.Errorf("open-meteo response has no current block")
	}

	cur := forecast.Current
	return domain.Weather{
		Temperature:      cur.Temperature,
		RelativeHumidity: cur.RelativeHumidity,
		WindSpeed:        cur.WindSpeed,
		Precipitation:    cur.Precipitation,
		ObservedAt:       parseObservedAt(cur.Time),
	}, nil
}

// parseObservedAt reads Open-Meteo's "2006-01-02T15:04" GMT timestamps.
// Unparsable values yield the zero time.
func parseObservedAt(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02T15:04", s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Open-Meteo API response types.

type response struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Current   *current `json:"current"`
}

type current struct {
	Time             string  `json:"time"`
	Temperature      float64 `json:"temperature_2m"`       // °C
	RelativeHumidity float64 `json:"relative_humidity_2m"` // %
	WindSpeed        float64 `json:"wind_speed_10m"`       // km/h
	Precipitation    float64 `json:"precipitation"`        // mm
}
