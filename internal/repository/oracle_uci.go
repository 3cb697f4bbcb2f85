package repo

import (
	"context"
	"fmt"

	"github.com/freeeve/uci"
	"go.uber.org/zap"

	"game_review/internal/bootstrap"
	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
)

// UCIOracle drives one local engine process. The last search is reused
// until the position changes.
type UCIOracle struct {
	engine   *uci.Engine
	depth    int
	log      *zap.SugaredLogger
	position domain.Position
	last     *uci.Results
}

func NewUCIOracle(cfg *bootstrap.Config, log *zap.SugaredLogger) (*UCIOracle, error) {
	engine, err := uci.NewEngine(cfg.EnginePath)
	if err != nil {
		return nil, fmt.Errorf("%w: start %s: %v", errs.ErrOracleUnavailable, cfg.EnginePath, err)
	}

	opts := uci.Options{
		Hash:    cfg.EngineHashMB,
		Threads: cfg.EngineThreads,
		MultiPV: 1,
		Ponder:  false,
		OwnBook: false,
	}
	if err = engine.SetOptions(opts); err != nil {
		engine.Close()
		return nil, fmt.Errorf("%w: set options: %v", errs.ErrOracleUnavailable, err)
	}

	return &UCIOracle{
		engine: engine,
		depth:  cfg.EngineDepth,
		log:    log,
	}, nil
}

func (o *UCIOracle) SetPosition(ctx context.Context, pos domain.Position) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.engine.SetFEN(string(pos)); err != nil {
		return fmt.Errorf("%w: set position: %v", errs.ErrOracleUnavailable, err)
	}
	o.position = pos
	o.last = nil
	return nil
}

func (o *UCIOracle) BestMove(ctx context.Context) (string, error) {
	res, err := o.search(ctx)
	if err != nil {
		return "", err
	}
	if res.BestMove == "" || res.BestMove == "(none)" {
		return "", fmt.Errorf("%w: no best move for %s", errs.ErrOracleUnavailable, o.position)
	}
	return res.BestMove, nil
}

func (o *UCIOracle) Evaluate(ctx context.Context) (domain.Evaluation, error) {
	res, err := o.search(ctx)
	if err != nil {
		return domain.Evaluation{}, err
	}

	best := res.Results[0]
	for _, r := range res.Results {
		if r.Depth > best.Depth {
			best = r
		}
	}
	if best.Mate {
		return mateFromMoves(best.Score), nil
	}
	return domain.Centipawns(best.Score), nil
}

func (o *UCIOracle) search(ctx context.Context) (*uci.Results, error) {
	if o.last != nil {
		return o.last, nil
	}
	if o.position == "" {
		return nil, fmt.Errorf("%w: no position set", errs.ErrOracleUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := o.engine.GoDepth(o.depth, uci.HighestDepthOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", errs.ErrOracleUnavailable, err)
	}
	if res == nil || len(res.Results) == 0 {
		return nil, fmt.Errorf("%w: empty search output for %s", errs.ErrOracleUnavailable, o.position)
	}
	o.last = res
	return res, nil
}

func (o *UCIOracle) Close() error {
	o.engine.Close()
	return nil
}

// mateFromMoves converts an engine "mate N" score, counted in full moves
// with the sign giving the winner, into plies.
func mateFromMoves(moves int) domain.Evaluation {
	switch {
	case moves > 0:
		return domain.Mate(2*moves-1, true)
	case moves < 0:
		return domain.Mate(-2*moves, false)
	}
	return domain.Mate(0, false)
}
