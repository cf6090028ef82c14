package forecast

import (
	"math"

	"pulsegrid/domain/core"
	"pulsegrid/domain/series"
	"pulsegrid/internal/metrics"
)

// Config controls the double-exponential-smoothing forecaster. Zero values
// fall back to the dashboard defaults via Normalize.
type Config struct {
	Alpha           float64 `json:"alpha"`            // level smoothing, (0,1]
	Beta            float64 `json:"beta"`             // trend smoothing, (0,1]
	Horizon         int     `json:"horizon"`          // forecast steps (years)
	ConfidenceLevel int     `json:"confidence_level"` // 90, 95 or 99
}

// DefaultConfig returns the forecaster defaults.
func DefaultConfig() Config {
	return Config{Alpha: 0.3, Beta: 0.1, Horizon: 5, ConfidenceLevel: 95}
}

// Normalize fills in unset fields with defaults.
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.Alpha <= 0 || c.Alpha > 1 {
		c.Alpha = def.Alpha
	}
	if c.Beta <= 0 || c.Beta > 1 {
		c.Beta = def.Beta
	}
	if c.Horizon <= 0 {
		c.Horizon = def.Horizon
	}
	if c.ConfidenceLevel == 0 {
		c.ConfidenceLevel = def.ConfidenceLevel
	}
	return c
}

// zScore maps a confidence level to its normal quantile. Unrecognized levels
// silently fall back to 95% rather than failing the call.
func zScore(confidenceLevel int) float64 {
	switch confidenceLevel {
	case 90:
		return 1.645
	case 95:
		return 1.960
	case 99:
		return 2.576
	default:
		return 1.960
	}
}

// Accuracy summarizes in-sample fit quality.
type Accuracy struct {
	MAPE float64 `json:"mape"`
	RMSE float64 `json:"rmse"`
	N    int     `json:"n"`
}

// Result is the immutable output of one forecaster run: the historical echo,
// the smoothed in-sample values, the horizon forecast and its confidence band.
type Result struct {
	History  series.TimeSeries `json:"history"`
	Fitted   series.TimeSeries `json:"fitted"`
	Forecast series.TimeSeries `json:"forecast"`
	Upper    series.TimeSeries `json:"upper"`
	Lower    series.TimeSeries `json:"lower"`
	Accuracy Accuracy          `json:"accuracy"`
	Config   Config            `json:"config"`
}

// Forecaster runs Holt's linear method (additive trend, no seasonality).
// It only writes to the injected metrics Recorder; it holds no other state.
type Forecaster struct {
	rec metrics.Recorder
}

// New creates a forecaster reporting model runs to rec. A nil rec disables
// counting.
func New(rec metrics.Recorder) *Forecaster {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Forecaster{rec: rec}
}

// Run executes double exponential smoothing over the observed points of s and
// extends the fitted level/trend Horizon steps past the last observed year.
// Returns core.ErrInsufficientData with fewer than 3 valid points.
func (f *Forecaster) Run(s series.TimeSeries, cfg Config) (*Result, error) {
	cfg = cfg.Normalize()
	valid := s.Valid()
	if len(valid) < 3 {
		return nil, core.NewInsufficientDataError("forecast", len(valid), 3)
	}
	f.rec.Inc(metrics.CounterForecastRuns)

	level := valid[0].Value
	trend := valid[1].Value - valid[0].Value

	fitted := make(series.TimeSeries, 0, len(valid))
	residuals := make([]float64, 0, len(valid))
	for _, p := range valid {
		// Fitted value is the pre-update one-step projection.
		predicted := level + trend
		fitted = append(fitted, series.TimePoint{Year: p.Year, Value: predicted})
		residuals = append(residuals, p.Value-predicted)

		newLevel := cfg.Alpha*p.Value + (1-cfg.Alpha)*(level+trend)
		trend = cfg.Beta*(newLevel-level) + (1-cfg.Beta)*trend
		level = newLevel
	}

	lastYear := valid[len(valid)-1].Year
	z := zScore(cfg.ConfidenceLevel)
	residStd := sampleStd(residuals)

	forecastPts := make(series.TimeSeries, 0, cfg.Horizon)
	upper := make(series.TimeSeries, 0, cfg.Horizon)
	lower := make(series.TimeSeries, 0, cfg.Horizon)
	for h := 1; h <= cfg.Horizon; h++ {
		year := lastYear + h
		point := level + float64(h)*trend
		// Ad hoc horizon widening carried over from the original model; the
		// downstream band rendering keys on these exact values.
		stderr := residStd * math.Sqrt(1+0.1*float64(h))
		forecastPts = append(forecastPts, series.TimePoint{Year: year, Value: point})
		upper = append(upper, series.TimePoint{Year: year, Value: point + z*stderr})
		lower = append(lower, series.TimePoint{Year: year, Value: point - z*stderr})
	}

	return &Result{
		History:  valid,
		Fitted:   fitted,
		Forecast: forecastPts,
		Upper:    upper,
		Lower:    lower,
		Accuracy: accuracy(valid, fitted),
		Config:   cfg,
	}, nil
}

// accuracy computes MAPE and RMSE over fitted-vs-actual pairs. Zero actuals
// are excluded from the MAPE average instead of being scored as 100% error.
func accuracy(actual, fitted series.TimeSeries) Accuracy {
	sumSq := 0.0
	sumPct := 0.0
	pctN := 0
	for i := range actual {
		err := actual[i].Value - fitted[i].Value
		sumSq += err * err
		if actual[i].Value != 0 {
			sumPct += math.Abs(err/actual[i].Value) * 100
			pctN++
		}
	}

	acc := Accuracy{N: len(actual)}
	if len(actual) > 0 {
		acc.RMSE = math.Sqrt(sumSq / float64(len(actual)))
	}
	if pctN > 0 {
		acc.MAPE = sumPct / float64(pctN)
	}
	return acc
}

// sampleStd is the same n-1 (fallback 1) standard deviation the descriptive
// package uses, applied to the residual vector.
func sampleStd(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	denom := float64(len(values) - 1)
	if len(values) <= 1 {
		denom = 1
	}
	return math.Sqrt(sumSq / denom)
}
