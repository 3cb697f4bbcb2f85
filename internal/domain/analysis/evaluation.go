package analysis

import (
	"encoding/json"
	"fmt"
)

type EvalKind string

const (
	EvalCentipawn EvalKind = "cp"
	EvalMate      EvalKind = "mate"
)

// Evaluation is always expressed from the perspective of the side to move
// in the position it was computed for.
type Evaluation struct {
	Kind  EvalKind `json:"type" bson:"type"`
	Value int      `json:"value" bson:"value"`
	// Winning is meaningful only for mate evaluations: true when the side
	// to move delivers the mate.
	Winning bool `json:"winning,omitempty" bson:"winning,omitempty"`
}

func Centipawns(cp int) Evaluation {
	return Evaluation{Kind: EvalCentipawn, Value: cp}
}

func Mate(plies int, winning bool) Evaluation {
	if plies < 0 {
		plies = -plies
	}
	return Evaluation{Kind: EvalMate, Value: plies, Winning: winning}
}

func (e Evaluation) IsMate() bool {
	return e.Kind == EvalMate
}

// Negate flips the evaluation to the opponent's perspective.
func (e Evaluation) Negate() Evaluation {
	if e.IsMate() {
		return Mate(e.Value, !e.Winning)
	}
	return Centipawns(-e.Value)
}

func (e Evaluation) String() string {
	if e.IsMate() {
		if e.Winning {
			return fmt.Sprintf("#%d", e.Value)
		}
		return fmt.Sprintf("#-%d", e.Value)
	}
	return fmt.Sprintf("%+.2f", float64(e.Value)/100)
}

type evaluationJSON struct {
	Kind    EvalKind `json:"type"`
	Value   int      `json:"value"`
	Winning bool     `json:"winning,omitempty"`
}

// MarshalJSON writes mate scores signed: positive when the side to move
// mates, negative when it gets mated. winning disambiguates mate in 0.
func (e Evaluation) MarshalJSON() ([]byte, error) {
	out := evaluationJSON{Kind: e.Kind, Value: e.Value}
	if e.IsMate() {
		out.Winning = e.Winning
		if !e.Winning {
			out.Value = -e.Value
		}
	}
	return json.Marshal(out)
}

func (e *Evaluation) UnmarshalJSON(data []byte) error {
	var in evaluationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Kind == EvalMate {
		*e = Mate(in.Value, in.Winning || in.Value > 0)
		return nil
	}
	*e = Evaluation{Kind: in.Kind, Value: in.Value}
	return nil
}
