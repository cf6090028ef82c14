package forecast

import (
	"math"
	"testing"

	"pulsegrid/domain/core"
	"pulsegrid/domain/series"
	"pulsegrid/internal/metrics"
	"pulsegrid/internal/testkit"
)

func linearSeries(n int, base, slope float64) series.TimeSeries {
	out := make(series.TimeSeries, n)
	for t := 0; t < n; t++ {
		out[t] = series.TimePoint{Year: 2000 + t, Value: base + slope*float64(t)}
	}
	return out
}

func TestRun_InsufficientData(t *testing.T) {
	f := New(nil)
	s := series.FromPairs([]int{2000, 2001}, []float64{1, 2})

	_, err := f.Run(s, Config{})
	if err == nil {
		t.Fatal("expected error for 2-point series")
	}
	if !core.IsInsufficientData(err) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestRun_MissingPointsIgnored(t *testing.T) {
	f := New(nil)
	s := series.TimeSeries{
		{Year: 2000, Value: 10},
		series.MissingPoint(2001),
		{Year: 2002, Value: 12},
		{Year: 2003, Value: 14},
	}

	result, err := f.Run(s, Config{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.History) != 3 {
		t.Errorf("expected 3 history points, got %d", len(result.History))
	}
	if len(result.Fitted) != 3 {
		t.Errorf("expected a fitted value per observation, got %d", len(result.Fitted))
	}
}

func TestRun_ForecastYearsFollowLastObservation(t *testing.T) {
	f := New(nil)
	s := linearSeries(20, 100, 2)

	result, err := f.Run(s, Config{Horizon: 4})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Forecast) != 4 {
		t.Fatalf("expected 4 forecast points, got %d", len(result.Forecast))
	}
	lastYear := s[len(s)-1].Year
	for h, p := range result.Forecast {
		if p.Year != lastYear+h+1 {
			t.Errorf("forecast step %d has year %d, want %d", h+1, p.Year, lastYear+h+1)
		}
	}
}

// TestRun_TrendTracking checks the forecast continues an established linear
// trend closely after the smoother has had time to converge.
func TestRun_TrendTracking(t *testing.T) {
	f := New(nil)
	s := linearSeries(40, 50, 1.5)

	result, err := f.Run(s, Config{Horizon: 5})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	lastValue := s[len(s)-1].Value
	for h, p := range result.Forecast {
		want := lastValue + 1.5*float64(h+1)
		if math.Abs(p.Value-want) > 0.5 {
			t.Errorf("forecast step %d: got %.3f, want about %.3f", h+1, p.Value, want)
		}
	}
}

// TestRun_BandWideningHeuristic pins the sqrt(1+0.1*h) widening: the band
// half-width at each step must scale exactly with that factor.
func TestRun_BandWideningHeuristic(t *testing.T) {
	f := New(nil)
	cfg := testkit.DefaultConfig()
	s := testkit.TrendSeries(cfg, 10, 0.8)

	result, err := f.Run(s, Config{Horizon: 5, ConfidenceLevel: 95})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	widths := make([]float64, len(result.Forecast))
	for h := range result.Forecast {
		widths[h] = result.Upper[h].Value - result.Forecast[h].Value
		if low := result.Forecast[h].Value - result.Lower[h].Value; math.Abs(low-widths[h]) > 1e-9 {
			t.Errorf("band asymmetric at step %d: upper %v lower %v", h+1, widths[h], low)
		}
	}
	if widths[0] <= 0 {
		t.Fatal("noisy series must have a positive band width")
	}
	for h := 1; h < len(widths); h++ {
		want := widths[0] * math.Sqrt((1+0.1*float64(h+1))/1.1)
		if math.Abs(widths[h]-want) > 1e-9 {
			t.Errorf("step %d width %v, want %v", h+1, widths[h], want)
		}
	}
}

func TestRun_ConfidenceLevels(t *testing.T) {
	f := New(nil)
	cfg := testkit.DefaultConfig()
	s := testkit.TrendSeries(cfg, 10, 0.8)

	run := func(level int) float64 {
		result, err := f.Run(s, Config{ConfidenceLevel: level})
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		return result.Upper[0].Value - result.Forecast[0].Value
	}

	w90, w95, w99 := run(90), run(95), run(99)
	if !(w90 < w95 && w95 < w99) {
		t.Errorf("band widths must grow with confidence: %v %v %v", w90, w95, w99)
	}

	// Unrecognized levels fall back to 95%.
	if w := run(42); math.Abs(w-w95) > 1e-12 {
		t.Errorf("unrecognized level should match 95%%: got %v want %v", w, w95)
	}
}

func TestRun_AccuracyBookkeeping(t *testing.T) {
	f := New(nil)
	s := linearSeries(15, 100, 2)

	result, err := f.Run(s, Config{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Accuracy.N != 15 {
		t.Errorf("expected N=15, got %d", result.Accuracy.N)
	}
	if result.Accuracy.RMSE < 0 || result.Accuracy.MAPE < 0 {
		t.Errorf("accuracy must be non-negative: %+v", result.Accuracy)
	}
}

func TestRun_IncrementsRunCounter(t *testing.T) {
	reg := metrics.NewRegistry()
	f := New(reg)
	s := linearSeries(10, 5, 1)

	if _, err := f.Run(s, Config{}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, err := f.Run(s, Config{}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := reg.Snapshot()[metrics.CounterForecastRuns]; got != 2 {
		t.Errorf("expected 2 recorded runs, got %d", got)
	}
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{}.Normalize()
	if cfg != DefaultConfig() {
		t.Errorf("zero config should normalize to defaults, got %+v", cfg)
	}

	cfg = Config{Alpha: 1.5, Beta: -0.2, Horizon: 3, ConfidenceLevel: 90}.Normalize()
	if cfg.Alpha != 0.3 || cfg.Beta != 0.1 {
		t.Errorf("out-of-range smoothing factors should fall back: %+v", cfg)
	}
	if cfg.Horizon != 3 || cfg.ConfidenceLevel != 90 {
		t.Errorf("valid fields must be preserved: %+v", cfg)
	}
}
