package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

// --- Memory store tests ---

func TestMemory_BasicGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(3, clockwork.NewFakeClock())

	require.NoError(t, c.Set(ctx, "a", item{Name: "A"}, time.Minute))
	require.NoError(t, c.Set(ctx, "b", item{Name: "B"}, time.Minute))

	var got item
	ok, err := c.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A", got.Name)

	ok, err = c.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	c := NewMemory(10, clock)

	require.NoError(t, c.Set(ctx, "a", item{Name: "A"}, time.Hour))

	clock.Advance(59 * time.Minute)
	var got item
	ok, err := c.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.True(t, ok, "entry should live for the full TTL")

	clock.Advance(time.Minute)
	ok, err = c.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire once the TTL elapses")
	assert.Equal(t, 0, c.Len(), "expired entry should be removed")
}

func TestMemory_Eviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(2, clockwork.NewFakeClock())

	require.NoError(t, c.Set(ctx, "a", item{Name: "A"}, time.Hour))
	require.NoError(t, c.Set(ctx, "b", item{Name: "B"}, time.Hour))
	require.NoError(t, c.Set(ctx, "c", item{Name: "C"}, time.Hour)) // evicts "a"

	var got item
	ok, _ := c.Get(ctx, "a", &got)
	assert.False(t, ok, "a should have been evicted")

	ok, _ = c.Get(ctx, "b", &got)
	assert.True(t, ok)
	assert.Equal(t, "B", got.Name)

	ok, _ = c.Get(ctx, "c", &got)
	assert.True(t, ok)
	assert.Equal(t, "C", got.Name)
}

func TestMemory_AccessPromotesEntry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(2, clockwork.NewFakeClock())

	require.NoError(t, c.Set(ctx, "a", item{Name: "A"}, time.Hour))
	require.NoError(t, c.Set(ctx, "b", item{Name: "B"}, time.Hour))

	var got item
	_, _ = c.Get(ctx, "a", &got)

	// Insert "c": should evict "b" (LRU), not "a"
	require.NoError(t, c.Set(ctx, "c", item{Name: "C"}, time.Hour))

	ok, _ := c.Get(ctx, "a", &got)
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	ok, _ = c.Get(ctx, "b", &got)
	assert.False(t, ok, "b should have been evicted")
}

func TestMemory_UpdateExistingRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	c := NewMemory(2, clock)

	require.NoError(t, c.Set(ctx, "a", item{Name: "A1"}, time.Minute))
	clock.Advance(50 * time.Second)
	require.NoError(t, c.Set(ctx, "a", item{Name: "A2"}, time.Minute))
	clock.Advance(50 * time.Second)

	var got item
	ok, err := c.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A2", got.Name)
	assert.Equal(t, 1, c.Len())
}

// --- Redis store tests ---

// fakeRedis overrides the two commands the store uses; any other call panics
// on the nil embedded interface.
type fakeRedis struct {
	redis.Cmdable
	data    map[string]string
	ttls    map[string]time.Duration
	failErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failErr != nil {
		return redis.NewStringResult("", f.failErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if f.failErr != nil {
		return redis.NewStatusResult("", f.failErr)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func TestRedis_SetGet(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	store := NewRedis(fake, "wildfire:")

	require.NoError(t, store.Set(ctx, "weather:1,2", item{Name: "cached"}, 30*time.Minute))
	assert.JSONEq(t, `{"name":"cached"}`, fake.data["wildfire:weather:1,2"])
	assert.Equal(t, 30*time.Minute, fake.ttls["wildfire:weather:1,2"])

	var got item
	ok, err := store.Get(ctx, "weather:1,2", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "cached", got.Name)
}

func TestRedis_MissIsNotAnError(t *testing.T) {
	store := NewRedis(newFakeRedis(), "wildfire:")

	var got item
	ok, err := store.Get(context.Background(), "absent", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_Errors(t *testing.T) {
	fake := newFakeRedis()
	fake.failErr = errors.New("connection refused")
	store := NewRedis(fake, "")

	var got item
	_, err := store.Get(context.Background(), "k", &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	err = store.Set(context.Background(), "k", item{}, time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set")
}

func TestRedis_CorruptValue(t *testing.T) {
	fake := newFakeRedis()
	fake.data["k"] = "{broken"
	store := NewRedis(fake, "")

	var got item
	ok, err := store.Get(context.Background(), "k", &got)
	require.Error(t, err)
	assert.False(t, ok)
}
