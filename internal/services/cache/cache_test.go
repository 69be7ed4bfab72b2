package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/phambaophuc/image-derivative/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(client, time.Hour)
	t.Cleanup(func() { c.Close() })

	return c, mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	got, err := c.Get(ctx, "blur/480w/photos/1.jpg")
	require.NoError(t, err)
	assert.Nil(t, got, "miss")

	want := &models.BlurhashResult{
		Blurhash:            "LEHV6nWB2yk8",
		BlurhashData:        "data:image/png;base64,AAAA",
		BlurhashAvg:         "1,2,3",
		BlurhashThumbnail:   "480w",
		BlurhashImageWidth:  "480",
		BlurhashImageHeight: "360",
	}
	require.NoError(t, c.Set(ctx, "blur/480w/photos/1.jpg", want))

	got, err = c.Get(ctx, "blur/480w/photos/1.jpg")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"blur/480w/photos/1.jpg"))

	mr.FastForward(2 * time.Hour)
	got, err = c.Get(ctx, "blur/480w/photos/1.jpg")
	require.NoError(t, err)
	assert.Nil(t, got, "expired")
}

func TestRedisCacheCorruptEntry(t *testing.T) {
	c, mr := setupTestCache(t)

	require.NoError(t, mr.Set(keyPrefix+"blur/480w/a.jpg", "not json"))

	_, err := c.Get(context.Background(), "blur/480w/a.jpg")
	assert.ErrorContains(t, err, "cache decode error")
}

func TestRedisCacheHealthCheck(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	assert.Equal(t, "healthy", c.HealthCheck(ctx)["redis"])

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats["db_keys"])

	mr.Close()
	assert.Contains(t, c.HealthCheck(ctx)["redis"], "unhealthy")
}
