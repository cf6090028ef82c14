package causality

import (
	"errors"

	"pulsegrid/domain/core"
	"pulsegrid/domain/series"
	"pulsegrid/engine/linalg"
	"pulsegrid/internal/metrics"
)

const (
	// DefaultMaxLag bounds the lag search.
	DefaultMaxLag = 3

	// significanceLevel is the p-value cutoff for declaring causality.
	significanceLevel = 0.05
)

// Config controls a Granger test run.
type Config struct {
	MaxLag int `json:"max_lag"`
}

// Normalize fills in unset fields with defaults.
func (c Config) Normalize() Config {
	if c.MaxLag <= 0 {
		c.MaxLag = DefaultMaxLag
	}
	return c
}

// LagResult is the F-test outcome at one specific lag.
type LagResult struct {
	Lag         int     `json:"lag"`
	FStat       float64 `json:"f_stat"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
}

// Result is the outcome of one directed Granger-style test: does the past of
// X improve prediction of Y beyond Y's own past?
type Result struct {
	Causal       bool        `json:"causal"`
	BestLag      int         `json:"best_lag"`
	FStat        float64     `json:"f_stat"`
	PValue       float64     `json:"p_value"`
	Observations int         `json:"observations"`
	Lags         []LagResult `json:"lags"`
}

// Tester runs Granger-style causality tests on top of the OLS kernel.
type Tester struct {
	rec metrics.Recorder
}

// NewTester creates a tester reporting runs to rec. A nil rec disables
// counting.
func NewTester(rec metrics.Recorder) *Tester {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Tester{rec: rec}
}

// Test checks whether cause Granger-causes effect. For each lag L up to
// MaxLag it fits a restricted model (effect on its own past) and an
// unrestricted one (adding the candidate cause's past) and compares fits
// with an F-test. Lags that cannot be fitted are skipped, not fatal; the lag
// with the minimum p-value is reported. Returns core.ErrInsufficientData
// when the aligned overlap is too short or no lag at all could be computed.
func (t *Tester) Test(cause, effect series.TimeSeries, cfg Config) (*Result, error) {
	cfg = cfg.Normalize()
	t.rec.Inc(metrics.CounterCausalityTests)

	pair := series.Align(cause, effect)
	n := pair.Len()
	need := 3*cfg.MaxLag + 2
	if n < need {
		return nil, core.NewInsufficientDataError("granger test", n, need)
	}

	result := &Result{Observations: n}
	for lag := 1; lag <= cfg.MaxLag; lag++ {
		if n-lag < 2*lag+2 {
			// Not enough effective observations left at this depth.
			continue
		}
		lr, err := t.testLag(pair, lag)
		if err != nil {
			// A singular fit or degenerate RSS invalidates this lag only.
			continue
		}
		result.Lags = append(result.Lags, *lr)
	}

	if len(result.Lags) == 0 {
		return nil, core.NewInsufficientDataError("granger test lags", 0, 1)
	}

	best := result.Lags[0]
	for _, lr := range result.Lags[1:] {
		if lr.PValue < best.PValue {
			best = lr
		}
	}
	result.BestLag = best.Lag
	result.FStat = best.FStat
	result.PValue = best.PValue
	result.Causal = best.Significant
	return result, nil
}

var errDegenerateFit = errors.New("degenerate model fit")

// testLag fits the restricted and unrestricted models at one lag depth and
// evaluates the F-test on their residual sums of squares.
func (t *Tester) testLag(pair series.AlignedPair, lag int) (*LagResult, error) {
	n := pair.Len()
	rows := n - lag

	yVec := make([]float64, 0, rows)
	restricted := make([][]float64, 0, rows)
	unrestricted := make([][]float64, 0, rows)
	for i := lag; i < n; i++ {
		yVec = append(yVec, pair.Ys[i])

		// Intercept plus the effect's own past.
		rRow := make([]float64, 0, 1+lag)
		rRow = append(rRow, 1)
		for l := 1; l <= lag; l++ {
			rRow = append(rRow, pair.Ys[i-l])
		}
		restricted = append(restricted, rRow)

		// Same regressors plus the candidate cause's past.
		uRow := make([]float64, 0, 1+2*lag)
		uRow = append(uRow, rRow...)
		for l := 1; l <= lag; l++ {
			uRow = append(uRow, pair.Xs[i-l])
		}
		unrestricted = append(unrestricted, uRow)
	}

	fitR, err := linalg.SolveNormalEquations(restricted, yVec)
	if err != nil {
		return nil, err
	}
	fitU, err := linalg.SolveNormalEquations(unrestricted, yVec)
	if err != nil {
		return nil, err
	}
	if fitU.RSS <= 0 {
		return nil, errDegenerateFit
	}

	df2 := rows - 2*lag - 1
	if df2 <= 0 {
		return nil, errDegenerateFit
	}

	fStat := ((fitR.RSS - fitU.RSS) / float64(lag)) / (fitU.RSS / float64(df2))
	pValue := fPValue(fStat, lag, df2)
	return &LagResult{
		Lag:         lag,
		FStat:       fStat,
		PValue:      pValue,
		Significant: pValue < significanceLevel,
	}, nil
}
