package engine

import (
	"math"
	"sort"

	"github.com/abenov/tenderhub-eval/internal/model"
)

// Deviation-from-median thresholds, in percent. A deviation below the minor
// threshold is normal, at or above the major threshold is major.
const (
	minorDeviationPct = 10.0
	majorDeviationPct = 20.0
)

// median returns the middle of the values, averaging the central pair for
// even counts, and 0 for an empty set. The input slice is not modified.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStdDev is the uncorrected standard deviation: the bidder set is
// the whole population under evaluation, not a sample of one.
func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mu := mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mu
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

func lowest(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

func highest(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// deviationPercent is the signed percentage distance of value from the
// median. A zero median means every valid entry is zero, so nothing can
// deviate and the result is 0.
func deviationPercent(value, median float64) float64 {
	if median == 0 {
		return 0
	}
	return (value - median) / median * 100
}

// classifySeverity maps an (absolute) deviation onto the three-tier scale.
// The boundaries are inclusive upwards: exactly 10% is minor, exactly 20%
// is major.
func classifySeverity(deviationPct float64) model.OutlierSeverity {
	abs := math.Abs(deviationPct)
	switch {
	case abs >= majorDeviationPct:
		return model.SeverityMajor
	case abs >= minorDeviationPct:
		return model.SeverityMinor
	default:
		return model.SeverityNormal
	}
}

// rowStatistics summarizes the valid normalized rates of one item row.
func rowStatistics(rates []float64) *model.RowStatistics {
	return &model.RowStatistics{
		AverageRate:       mean(rates),
		MedianRate:        median(rates),
		LowestRate:        lowest(rates),
		HighestRate:       highest(rates),
		StandardDeviation: populationStdDev(rates),
	}
}
