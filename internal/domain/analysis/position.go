package analysis

import "strings"

// Position is a board state in FEN.
type Position string

// Key drops the move clocks so transpositions compare equal.
func (p Position) Key() string {
	fields := strings.Fields(string(p))
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}

// Move is a move in coordinate (UCI) notation with an optional SAN rendering.
type Move struct {
	UCI string `json:"uci" bson:"uci"`
	SAN string `json:"san,omitempty" bson:"san,omitempty"`
}

func (m Move) String() string {
	if m.SAN != "" {
		return m.SAN
	}
	return m.UCI
}
