package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/animerec/core"
)

// exerciseStore 覆盖所有 core.Store 实现共有的读写语义。
func exerciseStore(t *testing.T, s core.Store) {
	t.Helper()
	ctx := context.Background()
	key := "animerec:test:" + t.Name()

	_, err := s.Get(ctx, key)
	assert.ErrorIs(t, err, core.ErrStoreNotFound)
	assert.True(t, core.IsStoreNotFound(err))

	require.NoError(t, s.Set(ctx, key, []byte("v1")))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, s.Set(ctx, key, []byte("v2"), 60))
	got, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, core.ErrStoreNotFound)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	assert.Equal(t, "memory", s.Name())
	exerciseStore(t, s)
}

func TestMemoryStore_TTL(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", []byte("x"), 10))
	require.NoError(t, s.Set(ctx, "forever", []byte("y")))
	assert.Equal(t, 2, s.Len())

	now = now.Add(11 * time.Second)
	_, err := s.Get(ctx, "short")
	assert.ErrorIs(t, err, core.ErrStoreNotFound)
	_, err = s.Get(ctx, "forever")
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	// 重复 Close 不应 panic
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	v := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", v))
	v[0] = 'z'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadgerStore("")
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "badger", s.Name())
	exerciseStore(t, s)
}

func TestBadgerStore_Dir(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("persisted")))
	require.NoError(t, s.Close())

	s, err = OpenBadgerStore(dir)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("ANIMEREC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ANIMEREC_TEST_REDIS_ADDR not set")
	}
	s, err := NewRedisStore(addr, os.Getenv("ANIMEREC_TEST_REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "redis", s.Name())
	exerciseStore(t, s)
}
