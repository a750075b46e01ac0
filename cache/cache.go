package cache

import (
	"context"
	"errors"

	"github.com/yeremiapane/cohee-app/models"
)

// SessionCache adalah cermin baca dari sesi aktif per meja. Store tetap sumber kebenaran.
type SessionCache interface {
	Get(ctx context.Context, tableID string) (*models.TableSession, error)
	Set(ctx context.Context, session *models.TableSession) error
	Delete(ctx context.Context, tableID string) error
}

var ErrCacheMiss = errors.New("cache miss")

// NoopCache selalu miss. Dipakai jika REDIS_ADDR kosong.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*models.TableSession, error) { return nil, ErrCacheMiss }
func (NoopCache) Set(context.Context, *models.TableSession) error          { return nil }
func (NoopCache) Delete(context.Context, string) error                     { return nil }
