// Package firms fetches active-fire detections from the NASA FIRMS area API.
//
// The area endpoint returns CSV with one row per satellite detection:
//
//	latitude,longitude,bright_ti4,scan,track,acq_date,acq_time,satellite,...
//
// VIIRS sources report brightness as bright_ti4, MODIS sources as brightness.
// acq_time is HHMM in UTC. An invalid key is reported with a 200 status and a
// plain-text body, so the header row is checked before any rows are read.
package firms

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
)

const upstream = "firms"

// Client implements domain.FireProvider using the FIRMS area CSV API.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	mapKey        string
	source        string
	dayRange      int
	searchDegrees float64
	metrics       *observability.Metrics
	logger        *slog.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL       string
	MapKey        string
	Source        string
	DayRange      int
	SearchDegrees float64
	Timeout       time.Duration
}

// NewClient creates a FIRMS client.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:       opts.BaseURL,
		mapKey:        opts.MapKey,
		source:        opts.Source,
		dayRange:      opts.DayRange,
		searchDegrees: opts.SearchDegrees,
		metrics:       metrics,
		logger:        logger,
	}
}

// NearbyFires returns detections inside a box of ±searchDegrees around coord.
func (c *Client) NearbyFires(ctx context.Context, coord domain.Coordinate) ([]domain.FireLocation, error) {
	b := boundingBox(coord, c.searchDegrees)
	fullURL := fmt.Sprintf("%s/api/area/csv/%s/%s/%s/%d", c.baseURL, c.mapKey, c.source, b, c.dayRange)

	start := time.Now()
	fires, err := c.doRequest(ctx, fullURL)
	c.metrics.UpstreamDuration.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(upstream, "error").Inc()
		return nil, err
	}
	c.metrics.UpstreamRequests.WithLabelValues(upstream, "success").Inc()

	c.logger.Debug("fires fetched", "lat", coord.Lat, "lon", coord.Lon, "area", b.String(), "count", len(fires))
	return fires, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]domain.FireLocation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the map key; drop it from the error.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("fire request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("FIRMS API error: status %d: %s", resp.StatusCode, body)
	}

	return parseCSV(resp.Body, c.logger)
}

// parseCSV decodes a FIRMS area response. Rows with unparsable coordinates
// are skipped.
func parseCSV(r io.Reader, logger *slog.Logger) ([]domain.FireLocation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []domain.FireLocation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read FIRMS header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	latIdx, okLat := cols["latitude"]
	lonIdx, okLon := cols["longitude"]
	if !okLat || !okLon {
		return nil, fmt.Errorf("unexpected FIRMS response: %q", strings.Join(header, ","))
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	fires := []domain.FireLocation{}
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read FIRMS row %d: %w", line, err)
		}
		if latIdx >= len(rec) || lonIdx >= len(rec) {
			logger.Debug("skipping short FIRMS row", "line", line)
			continue
		}

		lat, errLat := strconv.ParseFloat(strings.TrimSpace(rec[latIdx]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(rec[lonIdx]), 64)
		if errLat != nil || errLon != nil || (domain.Coordinate{Lat: lat, Lon: lon}).Validate() != nil {
			logger.Debug("skipping FIRMS row with bad coordinates", "line", line)
			continue
		}

		brightness := field(rec, "bright_ti4")
		if brightness == "" {
			brightness = field(rec, "brightness")
		}

		fires = append(fires, domain.FireLocation{
			Lat:        lat,
			Lon:        lon,
			Brightness: parseFloatOrZero(brightness),
			Confidence: field(rec, "confidence"),
			AcquiredAt: parseAcquired(field(rec, "acq_date"), field(rec, "acq_time")),
		})
	}
	return fires, nil
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseAcquired combines a YYYY-MM-DD date with an HHMM time (e.g. "912" -> 09:12 UTC).
// A bad time keeps the date at midnight; a bad date yields the zero time.
func parseAcquired(date, hhmm string) time.Time {
	base, err := time.ParseInLocation(time.DateOnly, date, time.UTC)
	if err != nil {
		return time.Time{}
	}
	if len(hhmm) < 3 || len(hhmm) > 4 {
		return base
	}
	if len(hhmm) == 3 {
		hhmm = "0" + hhmm
	}

	hour, errH := strconv.Atoi(hhmm[:2])
	mins, errM := strconv.Atoi(hhmm[2:])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || mins < 0 || mins > 59 {
		return base
	}
	return time.Date(base.Year(), base.Month(), base.Day(), hour, mins, 0, 0, time.UTC)
}

// bbox is a west,south,east,north area in degrees.
type bbox struct {
	west, south, east, north float64
}

func (b bbox) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
	return f(b.west) + "," + f(b.south) + "," + f(b.east) + "," + f(b.north)
}

// boundingBox builds the search area around c, clamped to valid ranges.
func boundingBox(c domain.Coordinate, degrees float64) bbox {
	return bbox{
		west:  math.Max(-180, c.Lon-degrees),
		south: math.Max(-90, c.Lat-degrees),
		east:  math.Min(180, c.Lon+degrees),
		north: math.Min(90, c.Lat+degrees),
	}
}
