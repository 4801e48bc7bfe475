package metrics

import (
	"math"

	"github.com/spboyer/knapsack/internal/models"
)

// SampleStats describes the spread of a sample set. Energy statistics are
// over feasible samples only and are zero when there are none. Every
// figure weights a sample by its occurrence count.
type SampleStats struct {
	Samples       int     `json:"samples"`
	Feasible      int     `json:"feasible"`
	FeasibleRatio float64 `json:"feasible_ratio"`
	BestEnergy    float64 `json:"best_energy"`
	BestHits      int     `json:"best_hits"`
	MeanEnergy    float64 `json:"mean_energy"`
	StdDevEnergy  float64 `json:"stddev_energy"`
	CILow         float64 `json:"ci95_low"`
	CIHigh        float64 `json:"ci95_high"`
}

// Summarize computes SampleStats for set. Energies within an absolute
// epsilon of the best feasible energy count as hits.
func Summarize(set *models.SampleSet, epsilon float64) SampleStats {
	var stats SampleStats
	if set == nil {
		return stats
	}

	var feasible []float64
	for _, s := range set.Samples {
		n := max(s.NumOccurrences, 1)
		stats.Samples += n
		if !s.IsFeasible {
			continue
		}
		for range n {
			feasible = append(feasible, s.Energy)
		}
	}
	stats.Feasible = len(feasible)
	if stats.Samples > 0 {
		stats.FeasibleRatio = float64(stats.Feasible) / float64(stats.Samples)
	}
	if len(feasible) == 0 {
		return stats
	}

	stats.BestEnergy = math.Inf(1)
	for _, e := range feasible {
		stats.BestEnergy = math.Min(stats.BestEnergy, e)
	}
	for _, e := range feasible {
		if math.Abs(e-stats.BestEnergy) <= epsilon {
			stats.BestHits++
		}
	}
	stats.MeanEnergy = Mean(feasible)
	stats.StdDevEnergy = StdDev(feasible)
	stats.CILow, stats.CIHigh = ConfidenceInterval95(feasible)
	return stats
}
