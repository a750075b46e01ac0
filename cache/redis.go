package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/cohee-app/models"
)

type RedisSessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionCache(client *redis.Client, ttl time.Duration) *RedisSessionCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisSessionCache{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisSessionCache) Get(ctx context.Context, tableID string) (*models.TableSession, error) {
	data, err := r.client.Get(ctx, cacheKey(tableID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cached cachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return cached.toModel(), nil
}

// Set hanya menyimpan sesi active; sesi lain dihapus dari cache.
func (r *RedisSessionCache) Set(ctx context.Context, session *models.TableSession) error {
	if session == nil || !session.IsActive() {
		if session != nil {
			return r.Delete(ctx, session.TableID)
		}
		return nil
	}

	data, err := json.Marshal(fromModel(session))
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := r.client.Set(ctx, cacheKey(session.TableID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisSessionCache) Delete(ctx context.Context, tableID string) error {
	if err := r.client.Del(ctx, cacheKey(tableID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(tableID string) string {
	return fmt.Sprintf("table_session:%s", tableID)
}

// models.TableSession menyembunyikan kolom internal dari JSON, jadi cache punya bentuk sendiri.
type cachedSession struct {
	ID          string               `json:"id"`
	TableID     string               `json:"table_id"`
	TableNumber string               `json:"table_number"`
	StartedAt   time.Time            `json:"started_at"`
	Status      models.SessionStatus `json:"status"`
	TotalGuests *int                 `json:"total_guests,omitempty"`
}

func fromModel(s *models.TableSession) cachedSession {
	return cachedSession{
		ID:          s.ID,
		TableID:     s.TableID,
		TableNumber: s.TableNumber,
		StartedAt:   s.StartedAt,
		Status:      s.Status,
		TotalGuests: s.TotalGuests,
	}
}

func (c cachedSession) toModel() *models.TableSession {
	tableID := c.TableID
	return &models.TableSession{
		ID:            c.ID,
		TableID:       c.TableID,
		TableNumber:   c.TableNumber,
		StartedAt:     c.StartedAt,
		Status:        c.Status,
		TotalGuests:   c.TotalGuests,
		ActiveTableID: &tableID,
	}
}
