package stats

import (
	"errors"

	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
)

// ErrNoCompleteRecords is returned when a dataset has no rows with both
// counts known. Callers report it as a structured condition, not a crash.
var ErrNoCompleteRecords = errors.New("no complete records found")

// Summarize computes descriptive statistics over the complete rows of a
// dataset. The result depends only on the complete-row subset; row
// order is irrelevant. Ratios with a zero denominator stay unset rather
// than becoming infinity or NaN.
func Summarize(ds model.Dataset) (*model.Summary, error) {
	complete := ds.Complete()
	if len(complete) == 0 {
		return nil, ErrNoCompleteRecords
	}

	var totalSons, totalDaughters int
	for _, rec := range complete {
		totalSons += *rec.Sons
		totalDaughters += *rec.Daughters
	}
	totalChildren := totalSons + totalDaughters
	n := len(complete)

	s := &model.Summary{
		NPoliticians:      n,
		TotalSons:         totalSons,
		TotalDaughters:    totalDaughters,
		TotalChildren:     totalChildren,
		MeanSons:          float64(totalSons) / float64(n),
		MeanDaughters:     float64(totalDaughters) / float64(n),
		MeanTotalChildren: float64(totalChildren) / float64(n),
	}

	if totalDaughters > 0 {
		ratio := float64(totalSons) / float64(totalDaughters)
		s.SexRatio = &ratio
	}
	if totalChildren > 0 {
		prop := float64(totalDaughters) / float64(totalChildren)
		s.ProportionDaughters = &prop
	}

	return s, nil
}
