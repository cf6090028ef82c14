package testkit

import (
	"math"
	"math/rand"

	"pulsegrid/domain/series"
)

// GeneratorConfig controls the synthetic annual series used by the engine
// tests. Everything is seeded so a failing case replays exactly.
type GeneratorConfig struct {
	Years     int
	StartYear int
	Seed      int64
	Noise     float64 // standard deviation of the additive noise
}

// DefaultConfig returns a 40-year series starting in 1980.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Years:     40,
		StartYear: 1980,
		Seed:      42,
		Noise:     0.5,
	}
}

// GrowthSeries builds v[t] = base * (1+rate)^t with no noise. CAGR on this
// series must recover rate exactly (up to floating point).
func GrowthSeries(cfg GeneratorConfig, base, rate float64) series.TimeSeries {
	out := make(series.TimeSeries, cfg.Years)
	for t := 0; t < cfg.Years; t++ {
		out[t] = series.TimePoint{
			Year:  cfg.StartYear + t,
			Value: base * math.Pow(1+rate, float64(t)),
		}
	}
	return out
}

// TrendSeries builds base + slope*t plus seeded Gaussian noise.
func TrendSeries(cfg GeneratorConfig, base, slope float64) series.TimeSeries {
	rng := rand.New(rand.NewSource(cfg.Seed))
	out := make(series.TimeSeries, cfg.Years)
	for t := 0; t < cfg.Years; t++ {
		out[t] = series.TimePoint{
			Year:  cfg.StartYear + t,
			Value: base + slope*float64(t) + rng.NormFloat64()*cfg.Noise,
		}
	}
	return out
}

// CoupledPair builds an independent driver X and a follower
// Y(t) = coupling*X(t-lag) + noise. A Granger test must find X→Y at the
// given lag and must not find Y→X.
func CoupledPair(cfg GeneratorConfig, coupling float64, lag int) (x, y series.TimeSeries) {
	rng := rand.New(rand.NewSource(cfg.Seed))

	xs := make([]float64, cfg.Years)
	for t := range xs {
		xs[t] = rng.NormFloat64()
	}

	x = make(series.TimeSeries, cfg.Years)
	y = make(series.TimeSeries, cfg.Years)
	for t := 0; t < cfg.Years; t++ {
		x[t] = series.TimePoint{Year: cfg.StartYear + t, Value: xs[t]}
		yv := rng.NormFloat64() * cfg.Noise
		if t >= lag {
			yv += coupling * xs[t-lag]
		}
		y[t] = series.TimePoint{Year: cfg.StartYear + t, Value: yv}
	}
	return x, y
}

// ConstantSeries builds a flat series, useful for degenerate-variance paths.
func ConstantSeries(cfg GeneratorConfig, value float64) series.TimeSeries {
	out := make(series.TimeSeries, cfg.Years)
	for t := 0; t < cfg.Years; t++ {
		out[t] = series.TimePoint{Year: cfg.StartYear + t, Value: value}
	}
	return out
}

// WithSpike copies a series and replaces the value at one year.
func WithSpike(s series.TimeSeries, year int, value float64) series.TimeSeries {
	out := make(series.TimeSeries, len(s))
	copy(out, s)
	for i := range out {
		if out[i].Year == year {
			out[i].Value = value
		}
	}
	return out
}
