package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
)

type BadgerCache struct {
	db    *badger.DB
	codec *entryCodec
}

func NewBadgerCache(db *badger.DB, compress bool) (*BadgerCache, error) {
	codec, err := newEntryCodec(compress)
	if err != nil {
		return nil, err
	}
	return &BadgerCache{db: db, codec: codec}, nil
}

func (b *BadgerCache) Lookup(ctx context.Context, hash string) (domain.Result, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKeyPrefix + hash))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Result{}, errs.ErrCacheMiss
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("badger get: %w", err)
	}

	var result domain.Result
	if err = b.codec.decode(data, &result); err != nil {
		return domain.Result{}, fmt.Errorf("decode cached analysis: %w", err)
	}
	return result, nil
}

func (b *BadgerCache) Store(ctx context.Context, hash string, result domain.Result) error {
	data, err := b.codec.encode(result)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(cacheKeyPrefix+hash), data)
	})
}

func (b *BadgerCache) Close(ctx context.Context) error {
	return nil
}
