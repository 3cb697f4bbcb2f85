package analysis

import (
	"game_review/internal/bootstrap"
	domain "game_review/internal/domain/analysis"
)

// Thresholds are centipawn boundaries for the loss buckets. A loss at or
// below BestMax is Best, below ExcellentBelow is Excellent and so on; at or
// above MistakeBelow is a Blunder.
type Thresholds struct {
	BestMax         int
	ExcellentBelow  int
	GoodBelow       int
	InaccuracyBelow int
	MistakeBelow    int
	BrilliantBand   int
	GreatBand       int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		BestMax:         0,
		ExcellentBelow:  20,
		GoodBelow:       50,
		InaccuracyBelow: 100,
		MistakeBelow:    300,
		BrilliantBand:   10,
		GreatBand:       30,
	}
}

// ThresholdsFromConfig expects a config that passed bootstrap validation.
func ThresholdsFromConfig(cfg *bootstrap.Config) Thresholds {
	return Thresholds{
		BestMax:         cfg.BestMax,
		ExcellentBelow:  cfg.ExcellentBelow,
		GoodBelow:       cfg.GoodBelow,
		InaccuracyBelow: cfg.InaccuracyBelow,
		MistakeBelow:    cfg.MistakeBelow,
		BrilliantBand:   cfg.BrilliantBand,
		GreatBand:       cfg.GreatBand,
	}
}

// Signals carries everything Classify needs about one move.
type Signals struct {
	// Loss is nil when either side of the comparison is a mate score.
	Loss *int
	IsMate bool
	// BestEvalSign is the sign of the pre-move centipawn evaluation, nil if
	// that evaluation was a mate score.
	BestEvalSign   *int
	IsBook         bool
	Sacrifice      bool
	Endgame        bool
	KingOrPawnMove bool
}

// Classify is a pure function of its inputs. Rules are checked in order and
// the first match wins.
func Classify(s Signals, t Thresholds) domain.Category {
	if s.IsBook {
		return domain.CategoryBook
	}
	if s.IsMate {
		if s.BestEvalSign != nil && *s.BestEvalSign < 0 {
			return domain.CategoryMissedWin
		}
		return domain.CategoryForcedMate
	}
	if s.Loss == nil {
		return domain.CategoryUnknown
	}

	loss := abs(*s.Loss)
	if s.Sacrifice && loss <= t.BrilliantBand && !s.Endgame && !s.KingOrPawnMove {
		return domain.CategoryBrilliant
	}
	// king captures are never counted as sacrifices worth praising
	if s.Sacrifice && loss <= t.GreatBand && !s.KingOrPawnMove {
		return domain.CategoryGreat
	}
	return t.Bucket(loss)
}

// Bucket maps a loss magnitude onto the six quality buckets.
func (t Thresholds) Bucket(loss int) domain.Category {
	loss = abs(loss)
	switch {
	case loss <= t.BestMax:
		return domain.CategoryBest
	case loss < t.ExcellentBelow:
		return domain.CategoryExcellent
	case loss < t.GoodBelow:
		return domain.CategoryGood
	case loss < t.InaccuracyBelow:
		return domain.CategoryInaccuracy
	case loss < t.MistakeBelow:
		return domain.CategoryMistake
	default:
		return domain.CategoryBlunder
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
