package descriptive

import (
	"math"
	"sort"

	"pulsegrid/domain/series"
)

// Summary holds the basic descriptive statistics of a single series.
// An all-zero Summary with Count == 0 is the sentinel for "no valid data";
// callers render it as an empty state instead of branching on errors.
type Summary struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Median   float64 `json:"median"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Count    int     `json:"count"`
}

// ChangeResult captures the absolute and percentage movement between the
// first and last observed points of a series.
type ChangeResult struct {
	Absolute   float64 `json:"absolute"`
	Percent    float64 `json:"percent"`
	HasPercent bool    `json:"has_percent"` // false when the first value is 0
	FirstYear  int     `json:"first_year"`
	LastYear   int     `json:"last_year"`
}

// Describe computes mean, variance, standard deviation, median, min and max
// over the observed values of a series. Missing and non-finite points are
// filtered first.
func Describe(s series.TimeSeries) Summary {
	values := s.Valid().Values()
	if len(values) == 0 {
		return Summary{}
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	// Sample variance, but a single observation divides by 1 instead of
	// blowing up on n-1 == 0. The zero-variance answer is what the dashboard
	// has always shown for one-point series.
	denom := float64(len(values) - 1)
	if len(values) <= 1 {
		denom = 1
	}
	variance := sumSq / denom

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Summary{
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Median:   medianOfSorted(sorted),
		Min:      sorted[0],
		Max:      sorted[len(sorted)-1],
		Count:    len(values),
	}
}

// CAGR computes the compound annual growth rate of a series, expressed as a
// percentage. It requires at least two points with strictly positive values
// spanning more than zero years; otherwise ok is false.
func CAGR(s series.TimeSeries) (float64, bool) {
	positive := make(series.TimeSeries, 0, len(s))
	for _, p := range s.Valid() {
		if p.Value > 0 {
			positive = append(positive, p)
		}
	}
	if len(positive) < 2 {
		return 0, false
	}

	first := positive[0]
	last := positive[len(positive)-1]
	years := last.Year - first.Year
	if years == 0 {
		return 0, false
	}

	rate := math.Pow(last.Value/first.Value, 1.0/float64(years)) - 1
	return rate * 100, true
}

// Volatility computes the standard deviation of year-over-year percentage
// growth. Steps whose prior value is exactly 0 are skipped rather than
// producing an infinite growth rate. ok is false with fewer than two usable
// growth observations.
func Volatility(s series.TimeSeries) (float64, bool) {
	valid := s.Valid()
	growth := make([]float64, 0, len(valid))
	for i := 1; i < len(valid); i++ {
		prev := valid[i-1].Value
		if prev == 0 {
			continue
		}
		growth = append(growth, (valid[i].Value-prev)/prev*100)
	}
	if len(growth) < 2 {
		return 0, false
	}

	mean := 0.0
	for _, g := range growth {
		mean += g
	}
	mean /= float64(len(growth))
	sumSq := 0.0
	for _, g := range growth {
		diff := g - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(growth)-1)), true
}

// Change reports the absolute and percentage difference between the first and
// last observed points. ok is false with fewer than two valid points; the
// percentage is suppressed (HasPercent=false) when the first value is 0.
func Change(s series.TimeSeries) (ChangeResult, bool) {
	valid := s.Valid()
	if len(valid) < 2 {
		return ChangeResult{}, false
	}

	first := valid[0]
	last := valid[len(valid)-1]
	result := ChangeResult{
		Absolute:  last.Value - first.Value,
		FirstYear: first.Year,
		LastYear:  last.Year,
	}
	if first.Value != 0 {
		result.Percent = (last.Value - first.Value) / first.Value * 100
		result.HasPercent = true
	}
	return result, true
}

func medianOfSorted(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
