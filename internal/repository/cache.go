package repo

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"game_review/internal/adapters"
	"game_review/internal/bootstrap"
	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
)

const cacheKeyPrefix = "analysis:"

type CacheStore interface {
	Lookup(ctx context.Context, hash string) (domain.Result, error)
	Store(ctx context.Context, hash string, result domain.Result) error
	Close(ctx context.Context) error
}

// closingCache releases the adapter behind a store together with it.
type closingCache struct {
	CacheStore
	adapter interface{ Close(ctx context.Context) error }
}

func (c closingCache) Close(ctx context.Context) error {
	if err := c.CacheStore.Close(ctx); err != nil {
		return err
	}
	return c.adapter.Close(ctx)
}

// OpenCacheStore connects the store selected by CACHE_DRIVER.
func OpenCacheStore(ctx context.Context, cfg *bootstrap.Config, log *zap.SugaredLogger) (CacheStore, error) {
	switch cfg.CacheDriver {
	case "memory":
		return NewMemoryCache(), nil

	case "file":
		store, err := NewFileCache(cfg.CachePath, cfg.CacheCompress)
		if err != nil {
			return nil, err
		}
		return store, nil

	case "redis":
		adapter := adapters.NewAdapterRedis(cfg, log)
		if err := adapter.Init(ctx); err != nil {
			return nil, err
		}
		store, err := NewRedisCache(adapter.GetClient(), cfg.CacheCompress)
		if err != nil {
			_ = adapter.Close(ctx)
			return nil, err
		}
		return closingCache{CacheStore: store, adapter: adapter}, nil

	case "mongo":
		adapter := adapters.NewAdapterMongo(cfg, log)
		if err := adapter.Init(ctx); err != nil {
			return nil, err
		}
		return closingCache{CacheStore: NewMongoCache(adapter.Database), adapter: adapter}, nil

	case "badger":
		adapter := adapters.NewAdapterBadger(cfg, log)
		if err := adapter.Init(ctx); err != nil {
			return nil, err
		}
		store, err := NewBadgerCache(adapter.DB, cfg.CacheCompress)
		if err != nil {
			_ = adapter.Close(ctx)
			return nil, err
		}
		return closingCache{CacheStore: store, adapter: adapter}, nil
	}
	return nil, fmt.Errorf("%w: unknown cache driver %q", errs.ErrInvalidConfig, cfg.CacheDriver)
}
