package repo

import (
	"context"
	"sync"

	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
)

type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]domain.Result
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]domain.Result)}
}

func (m *MemoryCache) Lookup(ctx context.Context, hash string) (domain.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result, ok := m.entries[hash]
	if !ok {
		return domain.Result{}, errs.ErrCacheMiss
	}
	return result, nil
}

func (m *MemoryCache) Store(ctx context.Context, hash string, result domain.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[hash] = result
	return nil
}

func (m *MemoryCache) Close(ctx context.Context) error {
	return nil
}
