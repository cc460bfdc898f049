package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
)

const (
	lookupWeather = "weather"
	lookupFires   = "fires"
)

// coordKey rounds to 4 decimals (~11 m) so nearby clicks share an entry.
func coordKey(kind string, c domain.Coordinate) string {
	return fmt.Sprintf("%s:%.4f,%.4f", kind, c.Lat, c.Lon)
}

// Weather wraps a WeatherProvider with a TTL cache.
type Weather struct {
	inner   domain.WeatherProvider
	store   Store
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWeather creates a cache decorator around a weather provider.
func NewWeather(inner domain.WeatherProvider, store Store, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Weather {
	return &Weather{inner: inner, store: store, ttl: ttl, metrics: metrics, logger: logger}
}

func (w *Weather) CurrentWeather(ctx context.Context, c domain.Coordinate) (domain.Weather, error) {
	key := coordKey(lookupWeather, c)

	var cached domain.Weather
	if lookup(ctx, w.store, key, &cached, lookupWeather, w.metrics, w.logger) {
		return cached, nil
	}

	result, err := w.inner.CurrentWeather(ctx, c)
	if err != nil {
		return result, err
	}
	save(ctx, w.store, key, result, w.ttl, w.logger)
	return result, nil
}

// Fires wraps a FireProvider with a TTL cache. Empty results are cached too,
// since "no fires nearby" is a valid answer for the TTL window.
type Fires struct {
	inner   domain.FireProvider
	store   Store
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewFires creates a cache decorator around a fire provider.
func NewFires(inner domain.FireProvider, store Store, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Fires {
	return &Fires{inner: inner, store: store, ttl: ttl, metrics: metrics, logger: logger}
}

func (f *Fires) NearbyFires(ctx context.Context, c domain.Coordinate) ([]domain.FireLocation, error) {
	key := coordKey(lookupFires, c)

	var cached []domain.FireLocation
	if lookup(ctx, f.store, key, &cached, lookupFires, f.metrics, f.logger) {
		return cached, nil
	}

	result, err := f.inner.NearbyFires(ctx, c)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []domain.FireLocation{}
	}
	save(ctx, f.store, key, result, f.ttl, f.logger)
	return result, nil
}

// lookup reads key from the store, treating store failures as a miss.
func lookup(ctx context.Context, store Store, key string, dest any, kind string, metrics *observability.Metrics, logger *slog.Logger) bool {
	ok, err := store.Get(ctx, key, dest)
	switch {
	case err != nil:
		logger.Warn("cache read failed", "lookup", kind, "key", key, "error", err)
		metrics.LookupCache.WithLabelValues(kind, "error").Inc()
		return false
	case ok:
		metrics.LookupCache.WithLabelValues(kind, "hit").Inc()
		return true
	default:
		metrics.LookupCache.WithLabelValues(kind, "miss").Inc()
		return false
	}
}

func save(ctx context.Context, store Store, key string, value any, ttl time.Duration, logger *slog.Logger) {
	if err := store.Set(ctx, key, value, ttl); err != nil {
		logger.Warn("cache write failed", "key", key, "error", err)
	}
}
