package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domain "game_review/internal/domain/analysis"
)

type fakeSession struct {
	mu     sync.Mutex
	closed bool
}

func (s *fakeSession) SetPosition(context.Context, domain.Position) error { return nil }
func (s *fakeSession) BestMove(context.Context) (string, error)          { return "e2e4", nil }
func (s *fakeSession) Evaluate(context.Context) (domain.Evaluation, error) {
	return domain.Centipawns(0), nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type sessionCounter struct {
	mu      sync.Mutex
	created []*fakeSession
}

func (c *sessionCounter) factory(context.Context) (OracleSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := &fakeSession{}
	c.created = append(c.created, s)
	return s, nil
}

func TestOraclePoolReusesIdleSessions(t *testing.T) {
	counter := &sessionCounter{}
	pool := NewOraclePool(2, counter.factory, nopLogger())
	ctx := context.Background()

	first, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	pool.Release(first, false)

	second, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("idle session was not reused")
	}
	pool.Release(second, false)

	if len(counter.created) != 1 {
		t.Errorf("created %d sessions, want 1", len(counter.created))
	}
}

func TestOraclePoolDiscardsBrokenSessions(t *testing.T) {
	counter := &sessionCounter{}
	pool := NewOraclePool(1, counter.factory, nopLogger())
	ctx := context.Background()

	s, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	pool.Release(s, true)
	if !counter.created[0].closed {
		t.Error("broken session was not closed")
	}

	next, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if next == s {
		t.Error("broken session handed out again")
	}
	pool.Release(next, false)
}

func TestOraclePoolBlocksAtCapacity(t *testing.T) {
	counter := &sessionCounter{}
	pool := NewOraclePool(1, counter.factory, nopLogger())

	held, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err = pool.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire beyond capacity = %v, want deadline exceeded", err)
	}

	pool.Release(held, false)
	if _, err = pool.Acquire(context.Background()); err != nil {
		t.Errorf("Acquire after release: %v", err)
	}
}

func TestOraclePoolCloseShutsIdleSessions(t *testing.T) {
	counter := &sessionCounter{}
	pool := NewOraclePool(2, counter.factory, nopLogger())

	s, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	pool.Release(s, false)

	if err = pool.Close(); err != nil {
		t.Fatal(err)
	}
	if !counter.created[0].closed {
		t.Error("idle session left open")
	}
}

func TestMateFromMoves(t *testing.T) {
	tests := []struct {
		moves int
		want  domain.Evaluation
	}{
		{3, domain.Mate(5, true)},
		{1, domain.Mate(1, true)},
		{-2, domain.Mate(4, false)},
		{0, domain.Mate(0, false)},
	}
	for _, tt := range tests {
		if got := mateFromMoves(tt.moves); got != tt.want {
			t.Errorf("mateFromMoves(%d) = %+v, want %+v", tt.moves, got, tt.want)
		}
	}
}
