package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cohee-app/models"
)

func setupTestRedis(t *testing.T) (*RedisSessionCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisSessionCache(client, time.Minute), mr
}

func activeSession() *models.TableSession {
	guests := 3
	return &models.TableSession{
		ID:          "sess-1",
		TableID:     "table-1",
		TableNumber: "T1",
		StartedAt:   time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC),
		Status:      models.SessionActive,
		TotalGuests: &guests,
	}
}

func TestSetThenGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, activeSession()))
	assert.True(t, mr.Exists(cacheKey("table-1")))
	assert.Equal(t, time.Minute, mr.TTL(cacheKey("table-1")))

	got, err := c.Get(ctx, "table-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.ID)
	assert.Equal(t, "T1", got.TableNumber)
	assert.Equal(t, 3, *got.TotalGuests)
	assert.True(t, got.IsActive())
}

func TestGetMiss(t *testing.T) {
	c, _ := setupTestRedis(t)

	_, err := c.Get(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSetInactiveSessionEvicts(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, activeSession()))

	ended := activeSession()
	now := time.Now()
	ended.Status = models.SessionCompleted
	ended.EndedAt = &now
	require.NoError(t, c.Set(ctx, ended))

	assert.False(t, mr.Exists(cacheKey("table-1")))
}

func TestGetCorruptEntry(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(cacheKey("table-1"), "{not json"))

	_, err := c.Get(context.Background(), "table-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	c := NewRedisSessionCache(client, time.Minute)

	_, err := c.Get(context.Background(), "table-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestNoopCache(t *testing.T) {
	var c SessionCache = NoopCache{}
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, activeSession()))
	_, err := c.Get(ctx, "table-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Delete(ctx, "table-1"))
}
