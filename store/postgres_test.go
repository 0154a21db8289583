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

func TestPostgresCache(t *testing.T) {
	dsn := os.Getenv("ANIMEREC_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("ANIMEREC_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	c, err := NewPostgresCache(dsn)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.EnsureSchema(ctx))
	require.NoError(t, c.EnsureSchema(ctx))

	userID := core.UserID(time.Now().UnixNano() % 1_000_000_000)
	_, err = c.db.ExecContext(ctx, `DELETE FROM user_recommendations WHERE user_id = $1`, int64(userID))
	require.NoError(t, err)

	got, err := c.Get(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Put(ctx, userID, nil))
	got, err = c.Get(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	require.NoError(t, c.Put(ctx, userID, []string{"Old"}))
	c.now = func() time.Time { return base.Add(time.Minute) }
	require.NoError(t, c.Put(ctx, userID, []string{"Delta", "Echo"}))

	got, err = c.Get(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, []string{"Delta", "Echo"}, got.Items)
	assert.True(t, got.CreatedAt.Equal(base.Add(time.Minute)))
}
