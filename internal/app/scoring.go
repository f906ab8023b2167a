package app

import (
	"sort"

	"english-quiz-service/internal/domain"
	"github.com/shopspring/decimal"
)

// Threshold maps a minimum percentage to a level.
type Threshold struct {
	Min   float64      `yaml:"min"`
	Level domain.Level `yaml:"level"`
}

// ThresholdTable assigns levels to percentages. Order in the slice does not matter.
type ThresholdTable []Threshold

// Classify returns the level of the highest threshold the percentage reaches.
// A percentage below every threshold gets the lowest threshold's level.
func (t ThresholdTable) Classify(percentage float64) domain.Level {
	if len(t) == 0 {
		return ""
	}
	sorted := make(ThresholdTable, len(t))
	copy(sorted, t)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min > sorted[j].Min })

	for _, th := range sorted {
		if percentage >= th.Min {
			return th.Level
		}
	}
	return sorted[len(sorted)-1].Level
}

// Percentage is score/total*100 rounded half-up to two decimals.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := decimal.NewFromInt(int64(score)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 2)
	return p.InexactFloat64()
}
