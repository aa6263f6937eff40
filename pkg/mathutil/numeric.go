// Package mathutil provides the numeric helpers shared by the optimization
// and forecasting engines.
package mathutil

import (
	"math"

	"github.com/iwvelando/open-logistics/pkg/constants"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Round rounds a value to two decimals.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Clamp bounds val to [lo, hi].
func Clamp(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}

// Clamp01 bounds val to the unit interval.
func Clamp01(val float64) float64 {
	return Clamp(val, 0, 1)
}

// NonNegative returns val, or zero when val is negative.
func NonNegative(val float64) float64 {
	return math.Max(0, val)
}

// Sum returns the sum of values; zero for an empty slice.
func Sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values)
}

// Mean returns the arithmetic mean of values; zero for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// WeightedMean returns sum(w*v)/sum(w). It returns fallback when the weights
// sum to zero or the slices are empty.
func WeightedMean(values, weights []float64, fallback float64) float64 {
	if len(values) == 0 || len(values) != len(weights) {
		return fallback
	}
	if Sum(weights) <= 0 {
		return fallback
	}
	return stat.Mean(values, weights)
}

// EWMA returns the exponentially weighted moving average of series with
// smoothing constant alpha, seeded with the first observation.
func EWMA(series []float64, alpha float64) float64 {
	if len(series) == 0 {
		return 0
	}
	level := series[0]
	for _, x := range series[1:] {
		level = alpha*x + (1-alpha)*level
	}
	return level
}

// MeanDelta returns the average period-over-period change of series, or zero
// when the series has fewer than two points.
func MeanDelta(series []float64) float64 {
	n := len(series)
	if n < 2 {
		return 0
	}
	return (series[n-1] - series[0]) / float64(n-1)
}

// LinearDecay maps x onto a line falling from 1 at start to floor at end.
// Values at or below start return 1; values at or beyond end return floor.
func LinearDecay(x, start, end, floor float64) float64 {
	if x <= start {
		return 1
	}
	if end <= start || x >= end {
		return floor
	}
	return 1 - (1-floor)*(x-start)/(end-start)
}
