package analysis

import (
	"testing"

	"game_review/internal/bootstrap"
	domain "game_review/internal/domain/analysis"
)

func intPtr(v int) *int { return &v }

func TestClassify(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name string
		in   Signals
		want domain.Category
	}{
		{"book wins over a huge loss", Signals{IsBook: true, Loss: intPtr(-900)}, domain.CategoryBook},
		{"book wins over mate", Signals{IsBook: true, IsMate: true}, domain.CategoryBook},
		{"mate while losing is a missed win", Signals{IsMate: true, BestEvalSign: intPtr(-1)}, domain.CategoryMissedWin},
		{"mate while better is forced", Signals{IsMate: true, BestEvalSign: intPtr(1)}, domain.CategoryForcedMate},
		{"mate without a centipawn baseline", Signals{IsMate: true}, domain.CategoryForcedMate},
		{"missing loss", Signals{BestEvalSign: intPtr(1)}, domain.CategoryUnknown},
		{"sound sacrifice", Signals{Loss: intPtr(-5), Sacrifice: true}, domain.CategoryBrilliant},
		{"sacrifice in the endgame", Signals{Loss: intPtr(-5), Sacrifice: true, Endgame: true}, domain.CategoryGreat},
		{"sacrifice with a small cost", Signals{Loss: intPtr(-25), Sacrifice: true}, domain.CategoryGreat},
		{"costly sacrifice", Signals{Loss: intPtr(-120), Sacrifice: true}, domain.CategoryMistake},
		{"king capture is not praised", Signals{Loss: intPtr(0), Sacrifice: true, KingOrPawnMove: true}, domain.CategoryBest},
		{"exact match", Signals{Loss: intPtr(0)}, domain.CategoryBest},
		{"improvement over the estimate", Signals{Loss: intPtr(15)}, domain.CategoryExcellent},
		{"inaccuracy", Signals{Loss: intPtr(-60)}, domain.CategoryInaccuracy},
		{"blunder", Signals{Loss: intPtr(-450)}, domain.CategoryBlunder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.in, th); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBucketBoundaries(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		loss int
		want domain.Category
	}{
		{0, domain.CategoryBest},
		{1, domain.CategoryExcellent},
		{19, domain.CategoryExcellent},
		{20, domain.CategoryGood},
		{49, domain.CategoryGood},
		{50, domain.CategoryInaccuracy},
		{99, domain.CategoryInaccuracy},
		{100, domain.CategoryMistake},
		{299, domain.CategoryMistake},
		{300, domain.CategoryBlunder},
		{-300, domain.CategoryBlunder},
	}

	for _, tt := range tests {
		if got := th.Bucket(tt.loss); got != tt.want {
			t.Errorf("Bucket(%d) = %q, want %q", tt.loss, got, tt.want)
		}
	}
}

var bucketRank = map[domain.Category]int{
	domain.CategoryBest:       0,
	domain.CategoryExcellent:  1,
	domain.CategoryGood:       2,
	domain.CategoryInaccuracy: 3,
	domain.CategoryMistake:    4,
	domain.CategoryBlunder:    5,
}

func TestBucketIsMonotonic(t *testing.T) {
	th := DefaultThresholds()

	prev := bucketRank[th.Bucket(0)]
	for loss := 1; loss <= 2000; loss++ {
		c := th.Bucket(loss)
		rank, ok := bucketRank[c]
		if !ok {
			t.Fatalf("Bucket(%d) = %q, not a quality bucket", loss, c)
		}
		if rank < prev {
			t.Fatalf("Bucket(%d) = %q ranks better than a smaller loss", loss, c)
		}
		prev = rank
	}
}

func TestClassifyAlwaysReturnsKnownCategory(t *testing.T) {
	th := DefaultThresholds()
	for _, book := range []bool{false, true} {
		for _, mate := range []bool{false, true} {
			for _, sac := range []bool{false, true} {
				for _, loss := range []*int{nil, intPtr(0), intPtr(-35), intPtr(-1000)} {
					got := Classify(Signals{IsBook: book, IsMate: mate, Sacrifice: sac, Loss: loss}, th)
					if _, ok := categoryWeights[got]; !ok {
						t.Errorf("Classify produced unknown label %q", got)
					}
				}
			}
		}
	}
}

func TestThresholdsFromDefaultConfig(t *testing.T) {
	cfg, err := bootstrap.Setup("")
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if got := ThresholdsFromConfig(cfg); got != DefaultThresholds() {
		t.Errorf("ThresholdsFromConfig = %+v, want %+v", got, DefaultThresholds())
	}
}
