package analysis

import (
	"encoding/json"
	"testing"
)

func TestEvaluationNegate(t *testing.T) {
	if got := Centipawns(35).Negate(); got != Centipawns(-35) {
		t.Errorf("Negate(cp 35) = %+v", got)
	}
	if got := Mate(3, true).Negate(); got != Mate(3, false) {
		t.Errorf("Negate(mate 3) = %+v", got)
	}
	if got := Mate(2, false).Negate().Negate(); got != Mate(2, false) {
		t.Errorf("double negation changed the value: %+v", got)
	}
}

func TestEvaluationString(t *testing.T) {
	tests := map[Evaluation]string{
		Centipawns(125): "+1.25",
		Centipawns(-40): "-0.40",
		Centipawns(0):   "+0.00",
		Mate(3, true):   "#3",
		Mate(-4, false): "#-4",
	}
	for eval, want := range tests {
		if got := eval.String(); got != want {
			t.Errorf("%+v.String() = %q, want %q", eval, got, want)
		}
	}
}

func TestEvaluationJSONShape(t *testing.T) {
	tests := []struct {
		eval Evaluation
		want string
	}{
		{Centipawns(-20), `{"type":"cp","value":-20}`},
		{Mate(3, true), `{"type":"mate","value":3,"winning":true}`},
		{Mate(4, false), `{"type":"mate","value":-4}`},
		{Mate(0, true), `{"type":"mate","value":0,"winning":true}`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.eval)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != tt.want {
			t.Errorf("json(%+v) = %s, want %s", tt.eval, data, tt.want)
		}
	}
}

func TestEvaluationDecodesSignedMate(t *testing.T) {
	tests := map[string]Evaluation{
		`{"type":"mate","value":-5}`:               Mate(5, false),
		`{"type":"mate","value":2}`:                Mate(2, true),
		`{"type":"mate","value":0}`:                Mate(0, false),
		`{"type":"mate","value":0,"winning":true}`: Mate(0, true),
		`{"type":"cp","value":15}`:                 Centipawns(15),
	}
	for in, want := range tests {
		var got Evaluation
		if err := json.Unmarshal([]byte(in), &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", in, err)
		}
		if got != want {
			t.Errorf("Unmarshal(%s) = %+v, want %+v", in, got, want)
		}
	}
}

func TestPositionKeyDropsClocks(t *testing.T) {
	a := Position("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	b := Position("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 4 9")
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}
}

func TestTally(t *testing.T) {
	tally := NewTally()
	if len(tally) != len(Categories) || tally.Total() != 0 {
		t.Fatalf("NewTally() = %v", tally)
	}
	tally.Add(CategoryBest)
	tally.Add(CategoryBest)
	tally.Add(CategoryBlunder)
	if tally[CategoryBest] != 2 || tally.Total() != 3 {
		t.Errorf("tally = %v", tally)
	}
}
