package analysis

import "time"

// Side names the player who made a move.
type Side string

const (
	SideWhite Side = "white"
	SideBlack Side = "black"
)

type MoveAnalysis struct {
	Index          int        `json:"move_number" bson:"move_number"`
	Played         Move       `json:"played" bson:"played"`
	Best           Move       `json:"best" bson:"best"`
	Evaluation     Evaluation `json:"eval" bson:"eval"`
	Loss           *int       `json:"loss,omitempty" bson:"loss,omitempty"`
	Category       Category   `json:"type" bson:"type"`
	IsBook         bool       `json:"book" bson:"book"`
	PositionBefore Position   `json:"fen_before" bson:"fen_before"`
	Mover          Side       `json:"mover" bson:"mover"`
}

// Result is the full analysis of one game record. It doubles as the
// cache entry for that record's hash.
type Result struct {
	GameHash   string             `json:"game_hash" bson:"game_hash"`
	White      string             `json:"white_player" bson:"white_player"`
	Black      string             `json:"black_player" bson:"black_player"`
	Moves      []MoveAnalysis     `json:"results" bson:"results"`
	Stats      PlayerStats        `json:"move_stats" bson:"move_stats"`
	Accuracy   map[string]float64 `json:"accuracy_scores" bson:"accuracy_scores"`
	AnalyzedAt time.Time          `json:"analyzed_at" bson:"analyzed_at"`
}

type Page struct {
	GameHash   string             `json:"game_hash"`
	White      string             `json:"white_player"`
	Black      string             `json:"black_player"`
	Moves      []MoveAnalysis     `json:"results"`
	Stats      PlayerStats        `json:"move_stats"`
	Accuracy   map[string]float64 `json:"accuracy_scores"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}
