package app

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"pulsegrid/domain/core"
	"pulsegrid/domain/series"
	"pulsegrid/engine/anomaly"
	"pulsegrid/engine/causality"
	"pulsegrid/engine/correlation"
	"pulsegrid/engine/descriptive"
	"pulsegrid/engine/forecast"
	"pulsegrid/engine/profile"
	"pulsegrid/engine/risk"
	"pulsegrid/internal/metrics"
)

// EngineDefaults carries the per-component configuration the service applies
// when a caller does not override it.
type EngineDefaults struct {
	Forecast  forecast.Config
	Anomaly   anomaly.Config
	Causality causality.Config
}

// IndicatorReport bundles every single-series result for one indicator.
// Optional values are nil when the underlying series was too short.
type IndicatorReport struct {
	Key        string                     `json:"key"`
	Summary    descriptive.Summary        `json:"summary"`
	CAGR       *float64                   `json:"cagr"`
	Volatility *float64                   `json:"volatility"`
	Change     *descriptive.ChangeResult  `json:"change"`
	Profile    profile.SeriesProfile      `json:"profile"`
	Forecast   *forecast.Result           `json:"forecast"`
	Anomalies  *anomaly.Result            `json:"anomalies"`
}

// DashboardReport is the one-call analysis product for a country: every
// engine output the dashboard tabs render.
type DashboardReport struct {
	ID          core.ResultID           `json:"id"`
	Country     core.CountryCode        `json:"country"`
	GeneratedAt time.Time               `json:"generated_at"`
	Indicators  []IndicatorReport       `json:"indicators"`
	Correlation *correlation.Matrix     `json:"correlation"`
	Causality   *causality.MatrixResult `json:"causality"`
	Risk        *risk.Timeline          `json:"risk"`
}

// AnalysisService orchestrates the engine components over a country's
// indicator bundle. All engine calls are pure; the service only fans them
// out and assembles the report.
type AnalysisService struct {
	forecaster *forecast.Forecaster
	tester     *causality.Tester
	scorer     *risk.Scorer
	rec        metrics.Recorder
	defaults   EngineDefaults
}

// NewAnalysisService wires the engine components around a shared metrics
// Recorder.
func NewAnalysisService(rec metrics.Recorder, defaults EngineDefaults) *AnalysisService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AnalysisService{
		forecaster: forecast.New(rec),
		tester:     causality.NewTester(rec),
		scorer:     risk.NewScorer(rec),
		rec:        rec,
		defaults:   defaults,
	}
}

// Forecaster exposes the underlying forecaster for single-series calls.
func (s *AnalysisService) Forecaster() *forecast.Forecaster { return s.forecaster }

// Tester exposes the underlying causality tester.
func (s *AnalysisService) Tester() *causality.Tester { return s.tester }

// Scorer exposes the underlying composite risk scorer.
func (s *AnalysisService) Scorer() *risk.Scorer { return s.scorer }

// Defaults returns the configured engine defaults.
func (s *AnalysisService) Defaults() EngineDefaults { return s.defaults }

// BuildDashboard computes the full report for one country. The pairwise
// matrices and per-indicator passes are independent computations, so they
// run concurrently; a short series degrades its own sections to nil without
// failing the report.
func (s *AnalysisService) BuildDashboard(ctx context.Context, country core.CountryCode, data map[core.IndicatorKey]series.TimeSeries) (*DashboardReport, error) {
	report := &DashboardReport{
		ID:          core.ResultID(core.NewID()),
		Country:     country,
		GeneratedAt: time.Now().UTC(),
	}

	keys := make([]core.IndicatorKey, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	datasets := make([]series.Named, 0, len(keys))
	for _, k := range keys {
		datasets = append(datasets, series.Named{Label: k.String(), Series: data[k]})
	}

	report.Indicators = make([]IndicatorReport, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, k := range keys {
		i, k := i, k
		g.Go(func() error {
			report.Indicators[i] = s.indicatorReport(k, data[k])
			return nil
		})
	}
	g.Go(func() error {
		report.Correlation = correlation.BuildMatrix(datasets)
		return nil
	})
	g.Go(func() error {
		report.Causality = s.tester.BuildMatrix(gctx, datasets, s.defaults.Causality)
		return nil
	})
	g.Go(func() error {
		timeline, err := s.scorer.Score(country, data)
		if err != nil {
			// Not enough indicator coverage for a risk timeline; the rest
			// of the report still stands.
			return nil
		}
		report.Risk = timeline
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

// indicatorReport runs every single-series component over one indicator.
func (s *AnalysisService) indicatorReport(key core.IndicatorKey, ts series.TimeSeries) IndicatorReport {
	rep := IndicatorReport{
		Key:     key.String(),
		Summary: descriptive.Describe(ts),
	}
	if v, ok := descriptive.CAGR(ts); ok {
		rep.CAGR = &v
	}
	if v, ok := descriptive.Volatility(ts); ok {
		rep.Volatility = &v
	}
	if c, ok := descriptive.Change(ts); ok {
		rep.Change = &c
	}
	if p, err := profile.Analyze(ts); err == nil {
		rep.Profile = p
	}
	if f, err := s.forecaster.Run(ts, s.defaults.Forecast); err == nil {
		rep.Forecast = f
	}
	rep.Anomalies = anomaly.Detect(ts, s.defaults.Anomaly)
	s.rec.Inc(metrics.CounterAnomalyScans)
	return rep
}
