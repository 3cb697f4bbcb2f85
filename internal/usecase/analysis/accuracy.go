package analysis

import (
	"math"

	domain "game_review/internal/domain/analysis"
)

const defaultWeight = 0.5

var categoryWeights = map[domain.Category]float64{
	domain.CategoryBrilliant:  1.1,
	domain.CategoryGreat:      1.05,
	domain.CategoryBest:       1.0,
	domain.CategoryBook:       1.0,
	domain.CategoryForcedMate: 1.0,
	domain.CategoryExcellent:  0.9,
	domain.CategoryGood:       0.75,
	domain.CategoryInaccuracy: 0.5,
	domain.CategoryUnknown:    0.5,
	domain.CategoryMistake:    0.25,
	domain.CategoryMissedWin:  0.1,
	domain.CategoryBlunder:    0.0,
}

func Weight(c domain.Category) float64 {
	if w, ok := categoryWeights[c]; ok {
		return w
	}
	return defaultWeight
}

// Accuracy is the weighted mean of category weights as a percentage, capped
// at 100 and rounded to two decimals.
func Accuracy(t domain.Tally) float64 {
	total := 0
	weighted := 0.0
	for c, n := range t {
		total += n
		weighted += Weight(c) * float64(n)
	}
	if total == 0 {
		return 0
	}
	score := math.Min(100, 100*weighted/float64(total))
	return math.Round(score*100) / 100
}

func AccuracyScores(stats domain.PlayerStats) map[string]float64 {
	scores := make(map[string]float64, len(stats))
	for player, tally := range stats {
		scores[player] = Accuracy(tally)
	}
	return scores
}
