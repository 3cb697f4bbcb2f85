package analysis

// Category is the qualitative label assigned to a played move.
type Category string

const (
	CategoryBrilliant  Category = "Brilliant"
	CategoryGreat      Category = "Great"
	CategoryBest       Category = "Best"
	CategoryExcellent  Category = "Excellent"
	CategoryGood       Category = "Good"
	CategoryInaccuracy Category = "Inaccuracy"
	CategoryMistake    Category = "Mistake"
	CategoryBlunder    Category = "Blunder"
	CategoryBook       Category = "Book"
	CategoryForcedMate Category = "Forced Mate"
	CategoryMissedWin  Category = "Missed Win"
	CategoryUnknown    Category = "Unknown"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryBrilliant,
	CategoryGreat,
	CategoryBest,
	CategoryExcellent,
	CategoryGood,
	CategoryInaccuracy,
	CategoryMistake,
	CategoryBlunder,
	CategoryBook,
	CategoryForcedMate,
	CategoryMissedWin,
	CategoryUnknown,
}

// Tally counts moves per category for one player.
type Tally map[Category]int

// NewTally returns a tally with every category present at zero.
func NewTally() Tally {
	t := make(Tally, len(Categories))
	for _, c := range Categories {
		t[c] = 0
	}
	return t
}

func (t Tally) Add(c Category) {
	t[c]++
}

func (t Tally) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// PlayerStats maps a player identity to its category tally.
type PlayerStats map[string]Tally
