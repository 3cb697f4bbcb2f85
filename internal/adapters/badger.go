package adapters

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"game_review/internal/bootstrap"
)

type AdapterBadger struct {
	DB  *badger.DB
	cfg *bootstrap.Config
	log *zap.SugaredLogger
}

func NewAdapterBadger(cfg *bootstrap.Config, log *zap.SugaredLogger) *AdapterBadger {
	return &AdapterBadger{
		cfg: cfg,
		log: log,
	}
}

func (a *AdapterBadger) Init(ctx context.Context) error {
	opts := badger.DefaultOptions(a.cfg.BadgerPath).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("open badger at %s: %w", a.cfg.BadgerPath, err)
	}
	a.DB = db

	a.log.Infow("opened badger store", "path", a.cfg.BadgerPath)
	return nil
}

func (a *AdapterBadger) Close(ctx context.Context) error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
