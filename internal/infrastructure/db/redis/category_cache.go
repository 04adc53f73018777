package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/taskflow/task-manager/internal/core/domain"
	"github.com/taskflow/task-manager/internal/core/ports"
	"github.com/taskflow/task-manager/internal/pkg/metrics"
)

const (
	categoryKeyPrefix = "categories:"
	loadTimeout       = 10 * time.Second
)

// CachedCategoryRepository is a read-through cache for the per-owner category
// list. Key format: categories:<user_id>. Writes go to the wrapped repository
// and then drop the owner's key.
//
// Redis failures never fail a request: reads fall back to the wrapped
// repository and failed invalidations are logged.
type CachedCategoryRepository struct {
	ports.CategoryRepository

	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger zerolog.Logger
}

var _ ports.CategoryRepository = (*CachedCategoryRepository)(nil)

func NewCachedCategoryRepository(inner ports.CategoryRepository, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedCategoryRepository {
	return &CachedCategoryRepository{
		CategoryRepository: inner,
		client:             client,
		ttl:                ttl,
		logger:             logger,
	}
}

func (r *CachedCategoryRepository) ListByOwner(ctx context.Context, userID string) ([]*domain.Category, error) {
	key := r.key(userID)

	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []*domain.Category
		if err := json.Unmarshal(data, &cached); err == nil {
			metrics.CategoryCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		}
		metrics.CategoryCacheTotal.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.CategoryCacheTotal.WithLabelValues("miss").Inc()
	default:
		metrics.CategoryCacheTotal.WithLabelValues("error").Inc()
		r.logger.Warn().Err(err).Str("key", key).Msg("category cache read failed")
	}

	// The shared load outlives any single waiter; each waiter still honours
	// its own ctx.
	ch := r.group.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		list, err := r.CategoryRepository.ListByOwner(ctx, userID)
		if err != nil {
			return nil, err
		}
		r.store(ctx, key, list)
		return list, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]*domain.Category), nil
	}
}

func (r *CachedCategoryRepository) Create(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	created, err := r.CategoryRepository.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, c.UserID)
	return created, nil
}

func (r *CachedCategoryRepository) Rename(ctx context.Context, id, userID, name string) (*domain.Category, error) {
	renamed, err := r.CategoryRepository.Rename(ctx, id, userID, name)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, userID)
	return renamed, nil
}

func (r *CachedCategoryRepository) Delete(ctx context.Context, id, userID string) error {
	if err := r.CategoryRepository.Delete(ctx, id, userID); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *CachedCategoryRepository) store(ctx context.Context, key string, list []*domain.Category) {
	data, err := json.Marshal(list)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("category cache encode failed")
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("category cache write failed")
	}
}

func (r *CachedCategoryRepository) invalidate(ctx context.Context, userID string) {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		r.logger.Warn().Err(err).Str("user_id", userID).Msg("category cache invalidation failed")
	}
}

func (r *CachedCategoryRepository) key(userID string) string {
	return fmt.Sprintf("%s%s", categoryKeyPrefix, userID)
}
