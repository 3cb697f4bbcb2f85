package analysis

import (
	"github.com/notnil/chess"
)

var pieceValues = map[chess.PieceType]int{
	chess.Pawn:   1,
	chess.Knight: 3,
	chess.Bishop: 3,
	chess.Rook:   5,
	chess.Queen:  9,
	chess.King:   100,
}

// isSacrifice reports a capture made with a piece worth more than the one
// it takes.
func isSacrifice(pos *chess.Position, m *chess.Move) bool {
	mover := pos.Board().Piece(m.S1())
	if mover == chess.NoPiece {
		return false
	}

	var captured chess.PieceType
	switch {
	case m.HasTag(chess.EnPassant):
		captured = chess.Pawn
	case m.HasTag(chess.Capture):
		captured = pos.Board().Piece(m.S2()).Type()
	default:
		return false
	}
	return pieceValues[mover.Type()] > pieceValues[captured]
}

// isEndgame reports whether non-king material on the board is at or below
// the threshold.
func isEndgame(pos *chess.Position, threshold int) bool {
	material := 0
	for _, piece := range pos.Board().SquareMap() {
		if piece.Type() == chess.King {
			continue
		}
		material += pieceValues[piece.Type()]
	}
	return material <= threshold
}

func isKingOrPawnMove(pos *chess.Position, m *chess.Move) bool {
	switch pos.Board().Piece(m.S1()).Type() {
	case chess.King, chess.Pawn:
		return true
	}
	return false
}
