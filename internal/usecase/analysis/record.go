package analysis

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
)

const (
	defaultWhite = "White"
	defaultBlack = "Black"
)

// Ply is one analysis task: the position before a move and the move played
// from it. It carries plain values so tasks can be evaluated independently.
type Ply struct {
	Index  int
	Before domain.Position
	Move   string
}

// GameRecord is a parsed game with player identities resolved.
type GameRecord struct {
	White string
	Black string
	start *chess.Position
	moves []*chess.Move
}

func ParseRecord(text string) (*GameRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty record", errs.ErrMalformedGameRecord)
	}

	pgn, err := chess.PGN(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformedGameRecord, err)
	}
	game := chess.NewGame(pgn)
	// free text without a single move token parses as an empty game too
	if len(game.Moves()) == 0 && len(game.TagPairs()) == 0 && !isTermination(text) {
		return nil, fmt.Errorf("%w: no moves or tags", errs.ErrMalformedGameRecord)
	}

	white := tagValue(game, "White", defaultWhite)
	black := tagValue(game, "Black", defaultBlack)
	// stats are keyed by name, keep the two sides apart
	if white == black {
		white += " (White)"
		black += " (Black)"
	}

	return &GameRecord{
		White: white,
		Black: black,
		start: game.Positions()[0],
		moves: game.Moves(),
	}, nil
}

func isTermination(text string) bool {
	switch strings.TrimSpace(text) {
	case "*", "1-0", "0-1", "1/2-1/2":
		return true
	}
	return false
}

func tagValue(game *chess.Game, key, fallback string) string {
	pair := game.GetTagPair(key)
	if pair == nil {
		return fallback
	}
	value := strings.TrimSpace(pair.Value)
	if value == "" || value == "?" {
		return fallback
	}
	return value
}

func (g *GameRecord) Len() int {
	return len(g.moves)
}

// Plies replays the game once and emits one task per move, index starting at 1.
func (g *GameRecord) Plies() []Ply {
	plies := make([]Ply, 0, len(g.moves))
	pos := g.start
	for i, move := range g.moves {
		plies = append(plies, Ply{
			Index:  i + 1,
			Before: domain.Position(pos.String()),
			Move:   move.String(),
		})
		pos = pos.Update(move)
	}
	return plies
}

// Attribute replays the game a second time, checking every move for
// legality, and tallies each analyzed move under the player who made it.
// moves must be sorted by index and cover the whole game.
func (g *GameRecord) Attribute(moves []domain.MoveAnalysis) (domain.PlayerStats, error) {
	if len(moves) != len(g.moves) {
		return nil, fmt.Errorf("%w: %d analyzed moves for %d plies", errs.ErrInternal, len(moves), len(g.moves))
	}

	stats := domain.PlayerStats{
		g.White: domain.NewTally(),
		g.Black: domain.NewTally(),
	}

	pos := g.start
	for i, move := range g.moves {
		if findMove(pos, move.String()) == nil {
			return nil, fmt.Errorf("%w: %s at ply %d", errs.ErrInvalidMove, move, i+1)
		}

		player := g.White
		if pos.Turn() == chess.Black {
			player = g.Black
		}
		stats[player].Add(moves[i].Category)

		pos = pos.Update(move)
	}
	return stats, nil
}
