package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
)

type CacheStore interface {
	Lookup(ctx context.Context, hash string) (domain.Result, error)
	Store(ctx context.Context, hash string, result domain.Result) error
}

type OraclePool interface {
	Acquire(ctx context.Context) (domain.Oracle, error)
	// Release returns a session; broken sessions are discarded.
	Release(oracle domain.Oracle, broken bool)
}

// ProgressFunc is called once per finished ply, possibly from several
// goroutines at once.
type ProgressFunc func(done, total int, move domain.MoveAnalysis)

type AnalysisUseCase struct {
	pool     OraclePool
	cache    CacheStore
	analyzer *Analyzer
	workers  int
	log      *zap.SugaredLogger
	inflight singleflight.Group
	now      func() time.Time
}

func NewAnalysisUseCase(pool OraclePool, cache CacheStore, analyzer *Analyzer, workers int, log *zap.SugaredLogger) *AnalysisUseCase {
	if workers < 1 {
		workers = 1
	}
	return &AnalysisUseCase{
		pool:     pool,
		cache:    cache,
		analyzer: analyzer,
		workers:  workers,
		log:      log,
		now:      time.Now,
	}
}

// AnalyzeGame returns the analysis for a game record, from the cache when
// an identical record was analyzed before. Concurrent calls for the same
// record share one analysis; only the caller that started it gets progress.
// The shared run is detached from any single caller, so a caller whose ctx
// ends gets ctx.Err() while the others still receive the result.
func (u *AnalysisUseCase) AnalyzeGame(ctx context.Context, record string, progress ProgressFunc) (domain.Result, error) {
	hash := GameHash(record)

	if cached, ok := u.lookup(ctx, hash); ok {
		return cached, nil
	}

	runCtx := context.WithoutCancel(ctx)
	ch := u.inflight.DoChan(hash, func() (interface{}, error) {
		// a run that finished just before this one started already stored it
		if cached, ok := u.lookup(runCtx, hash); ok {
			return cached, nil
		}
		return u.analyze(runCtx, hash, record, progressWhileAlive(ctx, progress))
	})

	select {
	case <-ctx.Done():
		u.log.Infow("caller left in-flight analysis", "game_hash", hash, "error", ctx.Err())
		return domain.Result{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Result{}, res.Err
		}
		if res.Shared {
			u.log.Debugw("joined in-flight analysis", "game_hash", hash)
		}
		return res.Val.(domain.Result), nil
	}
}

// progressWhileAlive stops reporting once the caller that asked for
// progress has gone.
func progressWhileAlive(ctx context.Context, progress ProgressFunc) ProgressFunc {
	if progress == nil {
		return nil
	}
	return func(done, total int, move domain.MoveAnalysis) {
		if ctx.Err() == nil {
			progress(done, total, move)
		}
	}
}

// GetAnalysis returns a previously stored analysis.
func (u *AnalysisUseCase) GetAnalysis(ctx context.Context, hash string) (domain.Result, error) {
	result, ok := u.lookup(ctx, hash)
	if !ok {
		return domain.Result{}, fmt.Errorf("%w: %s", errs.ErrAnalysisNotFound, hash)
	}
	return result, nil
}

// lookup treats every store failure as a miss.
func (u *AnalysisUseCase) lookup(ctx context.Context, hash string) (domain.Result, bool) {
	result, err := u.cache.Lookup(ctx, hash)
	if err != nil {
		if !errors.Is(err, errs.ErrCacheMiss) {
			u.log.Warnw("cache lookup failed", "game_hash", hash, "error", err)
		}
		return domain.Result{}, false
	}
	u.log.Infow("cache hit", "game_hash", hash)
	return result, true
}

func (u *AnalysisUseCase) analyze(ctx context.Context, hash, record string, progress ProgressFunc) (domain.Result, error) {
	game, err := ParseRecord(record)
	if err != nil {
		return domain.Result{}, err
	}

	started := u.now()
	plies := game.Plies()
	u.log.Infow("analysis started", "game_hash", hash, "plies", len(plies), "workers", u.workers)

	moves, err := u.runPlies(ctx, plies, progress)
	if err != nil {
		u.log.Errorw("analysis failed", "game_hash", hash, "error", err)
		return domain.Result{}, err
	}

	stats, err := game.Attribute(moves)
	if err != nil {
		u.log.Errorw("stats attribution failed", "game_hash", hash, "error", err)
		return domain.Result{}, err
	}

	result := domain.Result{
		GameHash:   hash,
		White:      game.White,
		Black:      game.Black,
		Moves:      moves,
		Stats:      stats,
		Accuracy:   AccuracyScores(stats),
		AnalyzedAt: u.now().UTC(),
	}

	if err = u.cache.Store(ctx, hash, result); err != nil {
		u.log.Errorw("cache store failed", "game_hash", hash, "error", err)
	}

	u.log.Infow("analysis finished", "game_hash", hash, "plies", len(moves), "elapsed", u.now().Sub(started))
	return result, nil
}

// runPlies evaluates every ply on at most u.workers sessions at once. The
// first failure cancels the remaining work and no partial result is kept.
func (u *AnalysisUseCase) runPlies(ctx context.Context, plies []Ply, progress ProgressFunc) ([]domain.MoveAnalysis, error) {
	var (
		mu        sync.Mutex
		collected = make([]domain.MoveAnalysis, 0, len(plies))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	for _, ply := range plies {
		ply := ply
		g.Go(func() error {
			move, err := u.analyzePly(gctx, ply)
			if err != nil {
				return err
			}

			mu.Lock()
			collected = append(collected, move)
			done := len(collected)
			mu.Unlock()

			if progress != nil {
				progress(done, len(plies), move)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].Index < collected[j].Index
	})
	for i, move := range collected {
		if move.Index != i+1 {
			return nil, fmt.Errorf("%w: ply %d missing from results", errs.ErrInternal, i+1)
		}
	}
	return collected, nil
}

func (u *AnalysisUseCase) analyzePly(ctx context.Context, ply Ply) (domain.MoveAnalysis, error) {
	oracle, err := u.pool.Acquire(ctx)
	if err != nil {
		return domain.MoveAnalysis{}, err
	}

	move, err := u.analyzer.Analyze(ctx, oracle, ply)
	u.pool.Release(oracle, errors.Is(err, errs.ErrOracleUnavailable))
	if err != nil {
		return domain.MoveAnalysis{}, err
	}
	return move, nil
}

// PageOf slices the analyzed moves for paginated display. Pages start at 1;
// out-of-range pages yield an empty move list.
func PageOf(result domain.Result, page, pageSize int) domain.Page {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}

	totalPages := (len(result.Moves) + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(result.Moves) {
		start = len(result.Moves)
	}
	if end > len(result.Moves) {
		end = len(result.Moves)
	}

	return domain.Page{
		GameHash:   result.GameHash,
		White:      result.White,
		Black:      result.Black,
		Moves:      result.Moves[start:end],
		Stats:      result.Stats,
		Accuracy:   result.Accuracy,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
