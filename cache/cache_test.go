package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/metrics"
	"github.com/rushteam/animerec/store"
)

func TestKVCache(t *testing.T) {
	ms := store.NewMemoryStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewKVCache(ms, WithKeyPrefix("t:"), WithTTL(time.Hour), WithClock(func() time.Time { return now }))
	defer c.Close()
	ctx := context.Background()

	assert.Equal(t, "memory", c.Name())

	got, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Put(ctx, 7, nil))
	got, err = c.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Put(ctx, 7, []string{"Delta", "Echo"}))
	got, err = c.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, core.UserID(7), got.UserID)
	assert.Equal(t, []string{"Delta", "Echo"}, got.Items)
	assert.True(t, now.Equal(got.CreatedAt))

	raw, err := ms.Get(ctx, "t:7")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"recommended_animes":["Delta","Echo"]`)
}

func TestKVCache_Corrupt(t *testing.T) {
	ms := store.NewMemoryStore()
	c := NewKVCache(ms)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, ms.Set(ctx, "rec:user:1", []byte("not json")))
	_, err := c.Get(ctx, 1)
	assert.ErrorContains(t, err, "cache decode rec:user:1")
}

// flakyCache 按开关返回错误，并记录调用次数。
type flakyCache struct {
	fail  atomic.Bool
	calls atomic.Int32
	rec   *core.CachedRecommendation
}

func (f *flakyCache) Get(context.Context, core.UserID) (*core.CachedRecommendation, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return nil, core.NewUnavailableError(core.ModuleCache, "connection refused")
	}
	return f.rec, nil
}

func (f *flakyCache) Put(context.Context, core.UserID, []string) error {
	f.calls.Add(1)
	if f.fail.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestGuarded_HitAndMiss(t *testing.T) {
	inner := &flakyCache{}
	g := NewGuarded(inner, "fake-hit", DefaultBreakerConfig(), zerolog.Nop())
	ctx := context.Background()

	got, err := g.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheMisses.WithLabelValues("fake-hit")))

	inner.rec = &core.CachedRecommendation{UserID: 1, Items: []string{"A"}}
	got, err = g.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"A"}, got.Items)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheHits.WithLabelValues("fake-hit")))

	// 空列表视为未命中
	inner.rec = &core.CachedRecommendation{UserID: 1}
	got, err = g.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGuarded_SwallowsErrorsAndTrips(t *testing.T) {
	inner := &flakyCache{}
	inner.fail.Store(true)
	g := NewGuarded(inner, "fake-trip", BreakerConfig{FailureThreshold: 2, Timeout: time.Hour}, zerolog.Nop())
	ctx := context.Background()

	got, err := g.Get(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, g.Put(ctx, 1, []string{"A"}))
	assert.Equal(t, gobreaker.StateOpen, g.State())
	assert.Equal(t, float64(gobreaker.StateOpen), testutil.ToFloat64(metrics.CacheBreakerState.WithLabelValues("fake-trip")))

	// 熔断期间不再访问底层缓存
	calls := inner.calls.Load()
	got, err = g.Get(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, g.Put(ctx, 1, []string{"A"}))
	assert.Equal(t, calls, inner.calls.Load())

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CacheErrors.WithLabelValues("fake-trip", "get")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CacheErrors.WithLabelValues("fake-trip", "put")))
}

func TestGuarded_PutSkipsEmpty(t *testing.T) {
	inner := &flakyCache{}
	g := NewGuarded(inner, "fake-empty", DefaultBreakerConfig(), zerolog.Nop())
	require.NoError(t, g.Put(context.Background(), 1, nil))
	assert.Zero(t, inner.calls.Load())
}

// ttlStore 记录每次写入的 ttl。
type ttlStore struct {
	*store.MemoryStore
	ttls []int
}

func (s *ttlStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	s.ttls = append(s.ttls, ttl...)
	return s.MemoryStore.Set(ctx, key, value, ttl...)
}

func TestKVCache_TTLRoundsUp(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want []int
	}{
		{ttl: 500 * time.Millisecond, want: []int{1}},
		{ttl: time.Second, want: []int{1}},
		{ttl: 1500 * time.Millisecond, want: []int{2}},
		{ttl: 0, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.ttl.String(), func(t *testing.T) {
			s := &ttlStore{MemoryStore: store.NewMemoryStore()}
			c := NewKVCache(s, WithTTL(tt.ttl))
			defer c.Close()

			require.NoError(t, c.Put(context.Background(), 1, []string{"Delta"}))
			assert.Equal(t, tt.want, s.ttls)
		})
	}
}

// cancelledCache 总是返回调用方取消错误。
type cancelledCache struct{}

func (cancelledCache) Get(ctx context.Context, _ core.UserID) (*core.CachedRecommendation, error) {
	return nil, fmt.Errorf("cache get: %w", context.Canceled)
}

func (cancelledCache) Put(context.Context, core.UserID, []string) error {
	return context.Canceled
}

func TestGuarded_CancellationDoesNotTrip(t *testing.T) {
	g := NewGuarded(cancelledCache{}, "fake-cancel", BreakerConfig{FailureThreshold: 1, Timeout: time.Hour}, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := g.Get(ctx, 1)
		assert.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, g.Put(ctx, 1, []string{"A"}))
	}
	assert.Equal(t, gobreaker.StateClosed, g.State())
}
