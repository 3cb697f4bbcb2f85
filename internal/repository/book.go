package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
)

// OpeningBook is the on-disk opening reference: known positions, keyed by
// FEN without move clocks, with the continuations played from them.
type OpeningBook struct {
	Positions map[string]BookPosition `json:"positions"`
}

type BookPosition struct {
	FEN   string     `json:"fen"`
	ECO   string     `json:"eco,omitempty"`
	Name  string     `json:"name,omitempty"`
	Moves []BookMove `json:"moves"`
}

type BookMove struct {
	UCI   string `json:"uci"`
	SAN   string `json:"san,omitempty"`
	Games int    `json:"games,omitempty"`
}

// BookDetector answers book membership from a JSON opening book loaded on
// first use. Load failures are logged and every query then reports false.
type BookDetector struct {
	path string
	log  *zap.SugaredLogger

	once    sync.Once
	book    map[string]BookPosition
	loadErr error
}

func NewBookDetector(path string, log *zap.SugaredLogger) *BookDetector {
	return &BookDetector{path: path, log: log}
}

// IsBookMove reports whether move, in UCI notation, is a catalogued
// continuation from pos.
func (b *BookDetector) IsBookMove(ctx context.Context, pos domain.Position, move string) bool {
	b.once.Do(b.load)
	if b.loadErr != nil {
		b.log.Warnw("book lookup degraded to false", "error", b.loadErr)
		return false
	}
	entry, ok := b.book[pos.Key()]
	if !ok {
		return false
	}
	for _, m := range entry.Moves {
		if m.UCI == move {
			return true
		}
	}
	return false
}

func (b *BookDetector) load() {
	data, err := os.ReadFile(b.path)
	if err != nil {
		b.loadErr = fmt.Errorf("%w: %v", errs.ErrBookLookup, err)
		return
	}

	var book OpeningBook
	if err = json.Unmarshal(data, &book); err != nil {
		b.loadErr = fmt.Errorf("%w: parse %s: %v", errs.ErrBookLookup, b.path, err)
		return
	}

	b.book = make(map[string]BookPosition, len(book.Positions))
	for key, entry := range book.Positions {
		if entry.FEN != "" {
			key = entry.FEN
		}
		b.book[domain.Position(key).Key()] = entry
	}
	b.log.Infow("opening book loaded", "path", b.path, "positions", len(b.book))
}
