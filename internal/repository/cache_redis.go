package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
)

type RedisCache struct {
	redis *redis.Client
	codec *entryCodec
}

func NewRedisCache(client *redis.Client, compress bool) (*RedisCache, error) {
	codec, err := newEntryCodec(compress)
	if err != nil {
		return nil, err
	}
	return &RedisCache{redis: client, codec: codec}, nil
}

func (r *RedisCache) Lookup(ctx context.Context, hash string) (domain.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := r.redis.Get(ctx, cacheKeyPrefix+hash).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Result{}, errs.ErrCacheMiss
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("redis get: %w", err)
	}

	var result domain.Result
	if err = r.codec.decode(data, &result); err != nil {
		return domain.Result{}, fmt.Errorf("decode cached analysis: %w", err)
	}
	return result, nil
}

// Store writes without expiry.
func (r *RedisCache) Store(ctx context.Context, hash string, result domain.Result) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := r.codec.encode(result)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	if err = r.redis.Set(ctx, cacheKeyPrefix+hash, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisCache) Close(ctx context.Context) error {
	return nil
}
