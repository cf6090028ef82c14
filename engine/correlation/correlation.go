package correlation

import (
	"fmt"
	"math"
	"sort"

	"pulsegrid/domain/series"
)

const (
	minOverlap = 3

	// Insight strength buckets on |r|.
	thresholdModerate   = 0.45
	thresholdStrong     = 0.65
	thresholdVeryStrong = 0.85

	maxInsights = 5
)

// Matrix is the pairwise Pearson correlation matrix over a set of labeled
// series. Cells are nil when the pair had fewer than 3 overlapping years.
// The diagonal is fixed at 1.0 and the matrix is symmetric.
type Matrix struct {
	Labels   []string     `json:"labels"`
	Cells    [][]*float64 `json:"cells"`
	Insights []Insight    `json:"insights"`
}

// Insight is one ranked correlation finding surfaced to the dashboard.
type Insight struct {
	LabelA      string  `json:"label_a"`
	LabelB      string  `json:"label_b"`
	R           float64 `json:"r"`
	Strength    string  `json:"strength"` // "very strong" | "strong" | "moderate"
	Description string  `json:"description"`
}

// Pearson computes the correlation between two series over their shared
// observed years, rounded to 3 decimal places. ok is false with fewer than 3
// overlapping points. A degenerate denominator (zero variance on either side)
// yields 0 rather than NaN.
func Pearson(a, b series.TimeSeries) (float64, bool) {
	pair := series.Align(a, b)
	if pair.Len() < minOverlap {
		return 0, false
	}

	n := float64(pair.Len())
	meanX := 0.0
	meanY := 0.0
	for i := range pair.Xs {
		meanX += pair.Xs[i]
		meanY += pair.Ys[i]
	}
	meanX /= n
	meanY /= n

	numerator := 0.0
	sumXX := 0.0
	sumYY := 0.0
	for i := range pair.Xs {
		dx := pair.Xs[i] - meanX
		dy := pair.Ys[i] - meanY
		numerator += dx * dy
		sumXX += dx * dx
		sumYY += dy * dy
	}

	denominator := math.Sqrt(sumXX * sumYY)
	if denominator == 0 {
		return 0, true
	}
	return round3(numerator / denominator), true
}

// BuildMatrix computes the full symmetric correlation matrix over the given
// datasets and derives the ranked insight list for every pair clearing the
// moderate threshold.
func BuildMatrix(datasets []series.Named) *Matrix {
	n := len(datasets)
	m := &Matrix{
		Labels: make([]string, n),
		Cells:  make([][]*float64, n),
	}
	for i, d := range datasets {
		m.Labels[i] = d.Label
		m.Cells[i] = make([]*float64, n)
	}

	for i := 0; i < n; i++ {
		one := 1.0
		m.Cells[i][i] = &one
		for j := i + 1; j < n; j++ {
			r, ok := Pearson(datasets[i].Series, datasets[j].Series)
			if !ok {
				continue
			}
			v := r
			m.Cells[i][j] = &v
			m.Cells[j][i] = &v

			if math.Abs(r) >= thresholdModerate {
				m.Insights = append(m.Insights, makeInsight(datasets[i].Label, datasets[j].Label, r))
			}
		}
	}

	sort.SliceStable(m.Insights, func(a, b int) bool {
		return math.Abs(m.Insights[a].R) > math.Abs(m.Insights[b].R)
	})
	if len(m.Insights) > maxInsights {
		m.Insights = m.Insights[:maxInsights]
	}
	return m
}

func makeInsight(labelA, labelB string, r float64) Insight {
	strength := strengthBucket(r)
	direction := "positive"
	if r < 0 {
		direction = "negative"
	}
	return Insight{
		LabelA:      labelA,
		LabelB:      labelB,
		R:           r,
		Strength:    strength,
		Description: fmt.Sprintf("%s %s correlation between %s and %s (r=%.3f)", strength, direction, labelA, labelB, r),
	}
}

func strengthBucket(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs >= thresholdVeryStrong:
		return "very strong"
	case abs >= thresholdStrong:
		return "strong"
	default:
		return "moderate"
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
