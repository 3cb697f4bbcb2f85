package analysis

import (
	"testing"

	domain "game_review/internal/domain/analysis"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name  string
		tally domain.Tally
		want  float64
	}{
		{"no moves", domain.NewTally(), 0},
		{"nil tally", nil, 0},
		{"all best", domain.Tally{domain.CategoryBest: 10}, 100},
		{"brilliance is capped", domain.Tally{domain.CategoryBrilliant: 3}, 100},
		{"best and blunder", domain.Tally{domain.CategoryBest: 1, domain.CategoryBlunder: 1}, 50},
		{"rounded to cents", domain.Tally{domain.CategoryExcellent: 1, domain.CategoryGood: 1, domain.CategoryMistake: 1}, 63.33},
		{"unrecognized label", domain.Tally{domain.Category("Odd"): 2}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Accuracy(tt.tally); got != tt.want {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeightsCoverEveryCategory(t *testing.T) {
	for _, c := range domain.Categories {
		w, ok := categoryWeights[c]
		if !ok {
			t.Errorf("no weight for %q", c)
			continue
		}
		if w < 0 || w > 1.1 {
			t.Errorf("weight for %q = %v, outside [0, 1.1]", c, w)
		}
	}
	if Weight("nonsense") != defaultWeight {
		t.Errorf("unrecognized label should use the default weight")
	}
}

func TestAccuracyStaysInRange(t *testing.T) {
	for _, c := range domain.Categories {
		for n := 1; n <= 3; n++ {
			tally := domain.NewTally()
			tally[c] = n
			tally[domain.CategoryBlunder]++
			if got := Accuracy(tally); got < 0 || got > 100 {
				t.Errorf("Accuracy with %d x %q = %v", n, c, got)
			}
		}
	}
}

func TestAccuracyScores(t *testing.T) {
	stats := domain.PlayerStats{
		"Alice": domain.Tally{domain.CategoryBest: 2},
		"Bob":   domain.Tally{domain.CategoryBlunder: 2},
	}
	scores := AccuracyScores(stats)
	if scores["Alice"] != 100 || scores["Bob"] != 0 {
		t.Errorf("AccuracyScores() = %v", scores)
	}
}
