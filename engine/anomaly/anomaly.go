package anomaly

import (
	"math"
	"sort"

	"pulsegrid/domain/series"
	"pulsegrid/engine/descriptive"
)

// Method selects the outlier flagging rule.
type Method string

const (
	MethodZScore Method = "zscore"
	MethodIQR    Method = "iqr"
	MethodBoth   Method = "both"

	minPoints        = 4
	defaultThreshold = 2.5
	iqrFenceFactor   = 1.5
)

// Config controls the detector. Zero values fall back to defaults.
type Config struct {
	Method    Method  `json:"method"`    // zscore | iqr | both (default both)
	Threshold float64 `json:"threshold"` // z-score cutoff (default 2.5)
}

// Normalize fills in unset fields with defaults.
func (c Config) Normalize() Config {
	switch c.Method {
	case MethodZScore, MethodIQR, MethodBoth:
	default:
		c.Method = MethodBoth
	}
	if c.Threshold <= 0 {
		c.Threshold = defaultThreshold
	}
	return c
}

// Point is one scored observation.
type Point struct {
	Year         int     `json:"year"`
	Value        float64 `json:"value"`
	ZScore       float64 `json:"z_score"`
	OutsideFence bool    `json:"outside_fence"`
}

// Bounds captures the IQR fence used for flagging.
type Bounds struct {
	Q1         float64 `json:"q1"`
	Q3         float64 `json:"q3"`
	IQR        float64 `json:"iqr"`
	LowerFence float64 `json:"lower_fence"`
	UpperFence float64 `json:"upper_fence"`
}

// Result partitions the series into anomalous and normal points. An empty
// Anomalies slice with Summary.Count < 4 means the series was too short to
// score; that is an empty state, not an error.
type Result struct {
	Anomalies []Point             `json:"anomalies"`
	Normal    []Point             `json:"normal"`
	Summary   descriptive.Summary `json:"summary"`
	Bounds    Bounds              `json:"bounds"`
	Config    Config              `json:"config"`
}

// Detect scores every observed point of s with the configured method(s) and
// partitions the series. Fewer than 4 valid points returns the empty result.
func Detect(s series.TimeSeries, cfg Config) *Result {
	cfg = cfg.Normalize()
	valid := s.Valid()

	result := &Result{
		Anomalies: []Point{},
		Normal:    []Point{},
		Summary:   descriptive.Describe(valid),
		Config:    cfg,
	}
	if len(valid) < minPoints {
		return result
	}

	sorted := make([]float64, len(valid))
	for i, p := range valid {
		sorted[i] = p.Value
	}
	sort.Float64s(sorted)
	result.Bounds = fences(sorted)
	spread := meanAbsDeviation(sorted, result.Summary.Mean)

	for _, p := range valid {
		scored := Point{
			Year:         p.Year,
			Value:        p.Value,
			ZScore:       zscore(p.Value, result.Summary.Mean, spread),
			OutsideFence: p.Value < result.Bounds.LowerFence || p.Value > result.Bounds.UpperFence,
		}

		if flagged(scored, cfg) {
			result.Anomalies = append(result.Anomalies, scored)
		} else {
			result.Normal = append(result.Normal, scored)
		}
	}
	return result
}

func flagged(p Point, cfg Config) bool {
	byZ := p.ZScore >= cfg.Threshold
	switch cfg.Method {
	case MethodZScore:
		return byZ
	case MethodIQR:
		return p.OutsideFence
	default:
		return byZ || p.OutsideFence
	}
}

// zscore returns |value-mean| / spread, and 0 for a constant series.
func zscore(value, mean, spread float64) float64 {
	if spread == 0 {
		return 0
	}
	return math.Abs(value-mean) / spread
}

// meanAbsDeviation is the spread measure the z-scores divide by. It is the
// average absolute distance from the mean, not the sample standard deviation;
// flagging thresholds are calibrated against this measure.
func meanAbsDeviation(values []float64, mean float64) float64 {
	var sum float64
	for _, v := range values {
		sum += math.Abs(v - mean)
	}
	return sum / float64(len(values))
}

// fences derives the 1.5·IQR fence. Quartiles come from direct positional
// indexing into the sorted values; on small samples this disagrees with
// interpolated percentile conventions and is kept that way on purpose.
func fences(sorted []float64) Bounds {
	n := len(sorted)
	q1 := sorted[int(math.Floor(float64(n)*0.25))]
	q3 := sorted[int(math.Floor(float64(n)*0.75))]
	iqr := q3 - q1
	return Bounds{
		Q1:         q1,
		Q3:         q3,
		IQR:        iqr,
		LowerFence: q1 - iqrFenceFactor*iqr,
		UpperFence: q3 + iqrFenceFactor*iqr,
	}
}
