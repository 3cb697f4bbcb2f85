package analysis

import (
	"context"
	"fmt"

	"github.com/notnil/chess"

	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
)

type BookDetector interface {
	// IsBookMove reports whether move is a known opening continuation from pos.
	IsBookMove(ctx context.Context, pos domain.Position, move string) bool
}

// Analyzer evaluates a single ply against an oracle session it is handed.
// It keeps no per-game state and is safe for concurrent use.
type Analyzer struct {
	book            BookDetector
	thresholds      Thresholds
	bookMaxPly      int
	endgameMaterial int
}

func NewAnalyzer(book BookDetector, thresholds Thresholds, bookMaxPly, endgameMaterial int) *Analyzer {
	return &Analyzer{
		book:            book,
		thresholds:      thresholds,
		bookMaxPly:      bookMaxPly,
		endgameMaterial: endgameMaterial,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, oracle domain.Oracle, ply Ply) (domain.MoveAnalysis, error) {
	before, err := decodePosition(ply.Before)
	if err != nil {
		return domain.MoveAnalysis{}, err
	}
	move := findMove(before, ply.Move)
	if move == nil {
		return domain.MoveAnalysis{}, fmt.Errorf("%w: %s at ply %d", errs.ErrInvalidMove, ply.Move, ply.Index)
	}

	if err := oracle.SetPosition(ctx, ply.Before); err != nil {
		return domain.MoveAnalysis{}, err
	}
	bestMove, err := oracle.BestMove(ctx)
	if err != nil {
		return domain.MoveAnalysis{}, err
	}
	bestEval, err := oracle.Evaluate(ctx)
	if err != nil {
		return domain.MoveAnalysis{}, err
	}

	after := before.Update(move)
	afterEval, err := a.evaluateAfter(ctx, oracle, after)
	if err != nil {
		return domain.MoveAnalysis{}, err
	}
	// the post-move score belongs to the opponent
	playedEval := afterEval.Negate()

	isBook := false
	if a.book != nil && ply.Index <= a.bookMaxPly {
		isBook = a.book.IsBookMove(ctx, ply.Before, ply.Move)
	}

	signals := Signals{
		IsBook:         isBook,
		IsMate:         playedEval.IsMate(),
		Sacrifice:      isSacrifice(before, move),
		Endgame:        isEndgame(before, a.endgameMaterial),
		KingOrPawnMove: isKingOrPawnMove(before, move),
	}
	if !bestEval.IsMate() {
		evalSign := sign(bestEval.Value)
		signals.BestEvalSign = &evalSign
		if !playedEval.IsMate() {
			loss := playedEval.Value - bestEval.Value
			signals.Loss = &loss
		}
	}

	return domain.MoveAnalysis{
		Index:          ply.Index,
		Played:         domain.Move{UCI: ply.Move, SAN: chess.AlgebraicNotation{}.Encode(before, move)},
		Best:           bestMoveOf(before, bestMove),
		Evaluation:     playedEval,
		Loss:           signals.Loss,
		Category:       Classify(signals, a.thresholds),
		IsBook:         isBook,
		PositionBefore: ply.Before,
		Mover:          moverOf(before),
	}, nil
}

// evaluateAfter asks the oracle about the post-move position unless the
// rules already decide it.
func (a *Analyzer) evaluateAfter(ctx context.Context, oracle domain.Oracle, after *chess.Position) (domain.Evaluation, error) {
	switch after.Status() {
	case chess.Checkmate:
		return domain.Mate(0, false), nil
	case chess.Stalemate:
		return domain.Centipawns(0), nil
	}

	if err := oracle.SetPosition(ctx, domain.Position(after.String())); err != nil {
		return domain.Evaluation{}, err
	}
	return oracle.Evaluate(ctx)
}

func decodePosition(p domain.Position) (*chess.Position, error) {
	fen, err := chess.FEN(string(p))
	if err != nil {
		return nil, fmt.Errorf("%w: bad position %q: %v", errs.ErrMalformedGameRecord, p, err)
	}
	return chess.NewGame(fen).Position(), nil
}

// bestMoveOf renders the oracle's choice in SAN when it is legal in pos and
// keeps the raw text otherwise.
func bestMoveOf(pos *chess.Position, uci string) domain.Move {
	best := domain.Move{UCI: uci}
	if m := findMove(pos, uci); m != nil {
		best.SAN = chess.AlgebraicNotation{}.Encode(pos, m)
	}
	return best
}

// findMove returns the legal move of pos spelled uci, or nil.
func findMove(pos *chess.Position, uci string) *chess.Move {
	for _, m := range pos.ValidMoves() {
		if m.String() == uci {
			return m
		}
	}
	return nil
}

func moverOf(pos *chess.Position) domain.Side {
	if pos.Turn() == chess.Black {
		return domain.SideBlack
	}
	return domain.SideWhite
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}
