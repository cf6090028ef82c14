package risk

import (
	"fmt"
	"math"

	"pulsegrid/domain/core"
	"pulsegrid/domain/series"
	"pulsegrid/internal/metrics"
)

// Risk level thresholds on the composite probability.
const (
	levelHigh     = 0.60
	levelElevated = 0.35
	levelModerate = 0.15

	trendLookback  = 2 // 3-point lookback: latest vs latest-2
	slopeWindow    = 5
	watchTrendStep = 0.15
)

// Signal maps an indicator observation onto a [0,1] recession pressure score.
// prior is nil when the previous year has no data.
type Signal func(current float64, prior *float64) float64

// Indicator couples a series key with its weight and signal function in the
// composite leading-indicator model.
type Indicator struct {
	Key    core.IndicatorKey
	Name   string
	Weight float64
	Signal Signal
}

// Model returns the fixed six-indicator recession model. Weights sum to 1.0;
// the order here is the canonical evaluation order, so scoring is independent
// of the order indicators arrive in.
func Model() []Indicator {
	return []Indicator{
		{
			Key: core.IndicatorGDPGrowth, Name: "GDP Growth", Weight: 0.30,
			Signal: func(v float64, _ *float64) float64 {
				switch {
				case v < 0:
					return 1
				case v < 1:
					return 0.5
				default:
					return 0
				}
			},
		},
		{
			Key: core.IndicatorUnemployment, Name: "Unemployment", Weight: 0.20,
			Signal: func(v float64, prior *float64) float64 {
				if prior == nil {
					return 0
				}
				delta := v - *prior
				switch {
				case delta > 2:
					return 1
				case delta > 0.5:
					return 0.6
				case delta > 0:
					return 0.3
				default:
					return 0
				}
			},
		},
		{
			Key: core.IndicatorInflation, Name: "Inflation", Weight: 0.15,
			Signal: func(v float64, _ *float64) float64 {
				switch {
				case v > 10:
					return 1
				case v < 0:
					return 0.7 // deflation pressure
				case v > 6:
					return 0.6
				default:
					return 0
				}
			},
		},
		{
			Key: core.IndicatorTradeBalance, Name: "Trade Balance", Weight: 0.15,
			Signal: func(v float64, _ *float64) float64 {
				switch {
				case v < -5:
					return 1
				case v < -2:
					return 0.5
				default:
					return 0
				}
			},
		},
		{
			Key: core.IndicatorGovDebt, Name: "Government Debt", Weight: 0.10,
			Signal: func(v float64, _ *float64) float64 {
				switch {
				case v > 100:
					return 1
				case v > 77:
					return 0.5
				default:
					return 0
				}
			},
		},
		{
			Key: core.IndicatorInvestment, Name: "Investment", Weight: 0.10,
			Signal: func(v float64, prior *float64) float64 {
				if prior == nil {
					return 0
				}
				delta := v - *prior
				switch {
				case delta < -3:
					return 1
				case delta < -1:
					return 0.5
				default:
					return 0
				}
			},
		},
	}
}

// Entry is the composite score for one year.
type Entry struct {
	Year        int                `json:"year"`
	Probability float64            `json:"probability"`
	Signals     map[string]float64 `json:"per_signal_breakdown"`
	RiskLevel   string             `json:"risk_level"`
}

// Timeline is the scored history for one country, plus the derived trend,
// projection and alert classification.
type Timeline struct {
	Country   core.CountryCode `json:"country"`
	Entries   []Entry          `json:"entries"`
	Latest    float64          `json:"latest"`
	Trend     float64          `json:"trend"`
	Projected float64          `json:"projected"`
	Alerts    []string         `json:"alerts"`
}

// Scorer evaluates the composite leading-indicator model.
type Scorer struct {
	rec        metrics.Recorder
	indicators []Indicator
}

// NewScorer creates a scorer using the fixed model, reporting to rec. A nil
// rec disables counting.
func NewScorer(rec metrics.Recorder) *Scorer {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Scorer{rec: rec, indicators: Model()}
}

// Score builds the probability timeline for one country from its indicator
// series. Indicators missing entirely just lower the present weight mass;
// returns core.ErrInsufficientData only when no indicator has any data.
func (s *Scorer) Score(country core.CountryCode, data map[core.IndicatorKey]series.TimeSeries) (*Timeline, error) {
	all := make([]series.TimeSeries, 0, len(s.indicators))
	for _, ind := range s.indicators {
		if ts, ok := data[ind.Key]; ok {
			all = append(all, ts)
		}
	}
	years := series.UnionYears(all...)
	if len(years) == 0 {
		return nil, core.NewInsufficientDataError("composite risk score", 0, 1)
	}
	s.rec.Inc(metrics.CounterRiskTimelines)

	timeline := &Timeline{Country: country, Entries: make([]Entry, 0, len(years))}
	for _, year := range years {
		entry := Entry{Year: year, Signals: make(map[string]float64)}
		weightPresent := 0.0
		weighted := 0.0

		for _, ind := range s.indicators {
			ts, ok := data[ind.Key]
			if !ok {
				continue
			}
			value, ok := ts.ValueAt(year)
			if !ok {
				continue
			}
			var prior *float64
			if pv, ok := ts.ValueAt(year - 1); ok {
				prior = &pv
			}
			sig := ind.Signal(value, prior)
			entry.Signals[ind.Name] = sig
			weighted += sig * ind.Weight
			weightPresent += ind.Weight
		}

		if weightPresent > 0 {
			entry.Probability = math.Min(1, weighted/weightPresent)
		}
		entry.RiskLevel = riskLevel(entry.Probability)
		timeline.Entries = append(timeline.Entries, entry)
	}

	s.finishTimeline(timeline)
	return timeline, nil
}

// riskLevel buckets a probability into the dashboard's four levels.
func riskLevel(p float64) string {
	switch {
	case p >= levelHigh:
		return "high"
	case p >= levelElevated:
		return "elevated"
	case p >= levelModerate:
		return "moderate"
	default:
		return "low"
	}
}

// finishTimeline derives the trend, projection and alerts from the entries.
func (s *Scorer) finishTimeline(t *Timeline) {
	n := len(t.Entries)
	if n == 0 {
		return
	}
	latest := t.Entries[n-1]
	t.Latest = latest.Probability

	if n > trendLookback {
		t.Trend = latest.Probability - t.Entries[n-1-trendLookback].Probability
	}

	// Average slope over the last few periods projects one step forward.
	window := slopeWindow
	if window > n-1 {
		window = n - 1
	}
	if window > 0 {
		slopeSum := 0.0
		for i := n - window; i < n; i++ {
			slopeSum += t.Entries[i].Probability - t.Entries[i-1].Probability
		}
		t.Projected = clamp01(latest.Probability + slopeSum/float64(window))
	} else {
		t.Projected = latest.Probability
	}

	if latest.Probability >= levelHigh {
		t.Alerts = append(t.Alerts, fmt.Sprintf("Critical: composite recession probability at %d%%", int(math.Round(latest.Probability*100))))
	} else if latest.Probability >= levelElevated {
		t.Alerts = append(t.Alerts, fmt.Sprintf("Elevated: composite recession probability at %d%%", int(math.Round(latest.Probability*100))))
	}
	if t.Trend > watchTrendStep {
		t.Alerts = append(t.Alerts, fmt.Sprintf("Watch: risk rose %.0f points over the last %d years", t.Trend*100, trendLookback))
	}
	// Model order keeps the alert list deterministic.
	for _, ind := range s.indicators {
		if sig, ok := latest.Signals[ind.Name]; ok && sig >= 0.6 {
			t.Alerts = append(t.Alerts, fmt.Sprintf("%s signaling at %d%%", ind.Name, int(math.Round(sig*100))))
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
