package domain

import "math"

// Stats summarizes an owner's vocabulary.
type Stats struct {
	Total    int `json:"total"`
	Learned  int `json:"learned"`
	Due      int `json:"due"`
	Progress int `json:"progress"` // learned share of total, percent, rounded
}

// NewStats computes the progress percentage from the raw counts.
// An owner without cards has zero progress.
func NewStats(total, learned, due int) Stats {
	stats := Stats{
		Total:   total,
		Learned: learned,
		Due:     due,
	}

	if total > 0 {
		stats.Progress = int(math.Round(float64(learned) / float64(total) * 100))
	}

	return stats
}
