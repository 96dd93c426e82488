package repository

import (
	"context"
	"errors"
	"time"

	domrepo "UKPredict/internal/domain/repository"
	pkgcache "UKPredict/pkg/cache"
)

// PredictionCache stores responses in a cache.Service with a fixed TTL.
type PredictionCache struct {
	svc pkgcache.Service
	ttl time.Duration
}

var _ domrepo.PredictionCache = (*PredictionCache)(nil)

func NewPredictionCache(svc pkgcache.Service, ttl time.Duration) *PredictionCache {
	return &PredictionCache{svc: svc, ttl: ttl}
}

// Get reports a miss as (false, nil).
func (c *PredictionCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	err := c.svc.Get(ctx, key, dest)
	if errors.Is(err, pkgcache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *PredictionCache) Set(ctx context.Context, key string, value interface{}) error {
	return c.svc.Set(ctx, key, value, c.ttl)
}
