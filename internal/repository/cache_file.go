package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
)

// FileCache keeps every analysis in a single file that is read whole on
// lookup and rewritten whole on store.
type FileCache struct {
	path  string
	codec *entryCodec
	mu    sync.Mutex
}

func NewFileCache(path string, compress bool) (*FileCache, error) {
	codec, err := newEntryCodec(compress)
	if err != nil {
		return nil, err
	}
	return &FileCache{path: path, codec: codec}, nil
}

func (f *FileCache) Lookup(ctx context.Context, hash string) (domain.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return domain.Result{}, err
	}
	result, ok := entries[hash]
	if !ok {
		return domain.Result{}, errs.ErrCacheMiss
	}
	return result, nil
}

// Store replaces an unreadable cache file instead of failing.
func (f *FileCache) Store(ctx context.Context, hash string, result domain.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		entries = make(map[string]domain.Result)
	}
	entries[hash] = result

	data, err := f.codec.encode(entries)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	return writeFileAtomic(f.path, data)
}

func (f *FileCache) Close(ctx context.Context) error {
	return nil
}

func (f *FileCache) load() (map[string]domain.Result, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]domain.Result), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return make(map[string]domain.Result), nil
	}

	entries := make(map[string]domain.Result)
	if err = f.codec.decode(data, &entries); err != nil {
		return nil, fmt.Errorf("corrupt cache %s: %w", f.path, err)
	}
	return entries, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close cache: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
