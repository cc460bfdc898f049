package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks for decorator tests ---

type countingWeather struct {
	calls  int
	result domain.Weather
	err    error
}

func (m *countingWeather) CurrentWeather(_ context.Context, _ domain.Coordinate) (domain.Weather, error) {
	m.calls++
	return m.result, m.err
}

type countingFires struct {
	calls  int
	result []domain.FireLocation
	err    error
}

func (m *countingFires) NearbyFires(_ context.Context, _ domain.Coordinate) ([]domain.FireLocation, error) {
	m.calls++
	return m.result, m.err
}

// brokenStore fails every operation.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string, any) (bool, error) {
	return false, errors.New("store down")
}

func (brokenStore) Set(context.Context, string, any, time.Duration) error {
	return errors.New("store down")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	austin = domain.Coordinate{Lat: 30.2672, Lon: -97.7431}
	dallas = domain.Coordinate{Lat: 32.7767, Lon: -96.7970}
)

// --- Weather decorator tests ---

func TestWeather_CacheHit(t *testing.T) {
	inner := &countingWeather{result: domain.Weather{Temperature: 35, RelativeHumidity: 12}}
	metrics := observability.NewMetricsForTesting()
	cached := NewWeather(inner, NewMemory(10, clockwork.NewFakeClock()), time.Hour, metrics, discardLogger())

	w1, err := cached.CurrentWeather(context.Background(), austin)
	require.NoError(t, err)
	w2, err := cached.CurrentWeather(context.Background(), austin)
	require.NoError(t, err)

	assert.Equal(t, w1, w2)
	assert.Equal(t, 35.0, w2.Temperature)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LookupCache.WithLabelValues(lookupWeather, "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LookupCache.WithLabelValues(lookupWeather, "miss")))
}

func TestWeather_ExpiresAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingWeather{result: domain.Weather{Temperature: 20}}
	cached := NewWeather(inner, NewMemory(10, clock), time.Hour, observability.NewMetricsForTesting(), discardLogger())

	_, _ = cached.CurrentWeather(context.Background(), austin)
	clock.Advance(time.Hour)
	_, _ = cached.CurrentWeather(context.Background(), austin)

	assert.Equal(t, 2, inner.calls)
}

func TestWeather_DifferentKeysMiss(t *testing.T) {
	inner := &countingWeather{}
	cached := NewWeather(inner, NewMemory(10, nil), time.Hour, observability.NewMetricsForTesting(), discardLogger())

	_, _ = cached.CurrentWeather(context.Background(), austin)
	_, _ = cached.CurrentWeather(context.Background(), dallas)

	assert.Equal(t, 2, inner.calls)
}

func TestWeather_ErrorsNotCached(t *testing.T) {
	inner := &countingWeather{err: errors.New("upstream down")}
	cached := NewWeather(inner, NewMemory(10, nil), time.Hour, observability.NewMetricsForTesting(), discardLogger())

	_, err := cached.CurrentWeather(context.Background(), austin)
	require.Error(t, err)
	_, err = cached.CurrentWeather(context.Background(), austin)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestWeather_BrokenStoreDegradesToInner(t *testing.T) {
	inner := &countingWeather{result: domain.Weather{Temperature: 25}}
	metrics := observability.NewMetricsForTesting()
	cached := NewWeather(inner, brokenStore{}, time.Hour, metrics, discardLogger())

	w, err := cached.CurrentWeather(context.Background(), austin)
	require.NoError(t, err)
	assert.Equal(t, 25.0, w.Temperature)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LookupCache.WithLabelValues(lookupWeather, "error")))
}

// --- Fires decorator tests ---

func TestFires_CacheHit(t *testing.T) {
	inner := &countingFires{result: []domain.FireLocation{{Lat: 30.3, Lon: -97.7, Confidence: "h"}}}
	cached := NewFires(inner, NewMemory(10, nil), time.Hour, observability.NewMetricsForTesting(), discardLogger())

	f1, err := cached.NearbyFires(context.Background(), austin)
	require.NoError(t, err)
	f2, err := cached.NearbyFires(context.Background(), austin)
	require.NoError(t, err)

	assert.Equal(t, f1, f2)
	assert.Len(t, f2, 1)
	assert.Equal(t, 1, inner.calls)
}

func TestFires_EmptyResultCached(t *testing.T) {
	inner := &countingFires{result: nil}
	cached := NewFires(inner, NewMemory(10, nil), time.Hour, observability.NewMetricsForTesting(), discardLogger())

	f1, err := cached.NearbyFires(context.Background(), austin)
	require.NoError(t, err)
	assert.NotNil(t, f1)
	assert.Empty(t, f1)

	_, err = cached.NearbyFires(context.Background(), austin)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls, "empty result should be served from cache")
}

func TestFires_ErrorsNotCached(t *testing.T) {
	inner := &countingFires{err: errors.New("FIRMS API error: status 503")}
	cached := NewFires(inner, NewMemory(10, nil), time.Hour, observability.NewMetricsForTesting(), discardLogger())

	_, err := cached.NearbyFires(context.Background(), austin)
	require.Error(t, err)
	_, err = cached.NearbyFires(context.Background(), austin)
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCoordKey(t *testing.T) {
	assert.Equal(t, "weather:30.2672,-97.7431", coordKey(lookupWeather, austin))
	assert.Equal(t,
		coordKey(lookupFires, domain.Coordinate{Lat: 30.26721, Lon: -97.74312}),
		coordKey(lookupFires, domain.Coordinate{Lat: 30.26724, Lon: -97.74308}),
		"clicks within the rounding precision share a key")
}
