package descriptive

import (
	"math"
	"testing"

	"pulsegrid/domain/series"
	"pulsegrid/internal/testkit"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestDescribe_KnownValues(t *testing.T) {
	s := series.FromPairs(
		[]int{2000, 2001, 2002, 2003, 2004, 2005, 2006, 2007},
		[]float64{2, 4, 4, 4, 5, 5, 7, 9},
	)

	sum := Describe(s)
	if sum.Count != 8 {
		t.Fatalf("expected count 8, got %d", sum.Count)
	}
	if sum.Mean != 5 {
		t.Errorf("expected mean 5, got %v", sum.Mean)
	}
	// Sample variance: sum of squared deviations is 32, divided by n-1.
	if !approxEqual(sum.Variance, 32.0/7.0, 1e-12) {
		t.Errorf("expected variance %.6f, got %v", 32.0/7.0, sum.Variance)
	}
	if !approxEqual(sum.StdDev, math.Sqrt(32.0/7.0), 1e-12) {
		t.Errorf("unexpected std dev %v", sum.StdDev)
	}
	if sum.Median != 4.5 {
		t.Errorf("expected median 4.5, got %v", sum.Median)
	}
	if sum.Min != 2 || sum.Max != 9 {
		t.Errorf("unexpected min/max: %v/%v", sum.Min, sum.Max)
	}
}

func TestDescribe_SinglePointDividesByOne(t *testing.T) {
	sum := Describe(series.TimeSeries{{Year: 2000, Value: 7}})
	if sum.Count != 1 {
		t.Fatalf("expected count 1, got %d", sum.Count)
	}
	if sum.Variance != 0 || sum.StdDev != 0 {
		t.Errorf("single point should have zero variance, got %v", sum.Variance)
	}
	if sum.Mean != 7 || sum.Median != 7 {
		t.Errorf("unexpected mean/median: %v/%v", sum.Mean, sum.Median)
	}
}

func TestDescribe_EmptySeries(t *testing.T) {
	sum := Describe(series.TimeSeries{series.MissingPoint(2000)})
	if sum.Count != 0 {
		t.Fatalf("expected empty summary, got count %d", sum.Count)
	}
}

// TestCAGR_RoundTrip verifies the growth rate of a pure compound series is
// recovered exactly.
func TestCAGR_RoundTrip(t *testing.T) {
	cfg := testkit.DefaultConfig()
	s := testkit.GrowthSeries(cfg, 100, 0.03)

	got, ok := CAGR(s)
	if !ok {
		t.Fatal("expected CAGR to be computable")
	}
	if !approxEqual(got, 3.0, 1e-9) {
		t.Errorf("expected CAGR 3.0, got %v", got)
	}
}

func TestCAGR_FiltersNonPositiveValues(t *testing.T) {
	s := series.FromPairs(
		[]int{2000, 2001, 2002, 2003},
		[]float64{-5, 0, 100, 121},
	)

	// Only the last two points survive: (121/100)^(1/1) - 1 = 21%.
	got, ok := CAGR(s)
	if !ok {
		t.Fatal("expected CAGR to be computable")
	}
	if !approxEqual(got, 21.0, 1e-9) {
		t.Errorf("expected CAGR 21.0, got %v", got)
	}
}

func TestCAGR_InsufficientPoints(t *testing.T) {
	if _, ok := CAGR(series.TimeSeries{{Year: 2000, Value: 10}}); ok {
		t.Error("single point must not produce a CAGR")
	}
	same := series.TimeSeries{{Year: 2000, Value: 10}, {Year: 2000, Value: 12}}
	if _, ok := CAGR(same); ok {
		t.Error("zero-year span must not produce a CAGR")
	}
}

func TestVolatility_ConstantGrowthIsZero(t *testing.T) {
	cfg := testkit.DefaultConfig()
	s := testkit.GrowthSeries(cfg, 100, 0.05)

	got, ok := Volatility(s)
	if !ok {
		t.Fatal("expected volatility to be computable")
	}
	if !approxEqual(got, 0, 1e-9) {
		t.Errorf("constant growth should have zero volatility, got %v", got)
	}
}

func TestVolatility_SkipsZeroBase(t *testing.T) {
	s := series.FromPairs(
		[]int{2000, 2001, 2002, 2003, 2004},
		[]float64{0, 10, 11, 12.1, 13.31},
	)

	// The step off the zero base is skipped; the remaining growths are all 10%.
	got, ok := Volatility(s)
	if !ok {
		t.Fatal("expected volatility to be computable")
	}
	if !approxEqual(got, 0, 1e-9) {
		t.Errorf("expected zero volatility, got %v", got)
	}
}

func TestVolatility_InsufficientGrowths(t *testing.T) {
	s := series.FromPairs([]int{2000, 2001}, []float64{10, 11})
	if _, ok := Volatility(s); ok {
		t.Error("one growth observation must not produce volatility")
	}
}

func TestChange_FirstToLast(t *testing.T) {
	s := series.TimeSeries{
		{Year: 2000, Value: 50},
		series.MissingPoint(2001),
		{Year: 2002, Value: 75},
	}

	ch, ok := Change(s)
	if !ok {
		t.Fatal("expected change to be computable")
	}
	if ch.Absolute != 25 {
		t.Errorf("expected absolute 25, got %v", ch.Absolute)
	}
	if !ch.HasPercent || !approxEqual(ch.Percent, 50, 1e-12) {
		t.Errorf("expected percent 50, got %v (has=%v)", ch.Percent, ch.HasPercent)
	}
	if ch.FirstYear != 2000 || ch.LastYear != 2002 {
		t.Errorf("unexpected year span: %d-%d", ch.FirstYear, ch.LastYear)
	}
}

func TestChange_ZeroBaseSuppressesPercent(t *testing.T) {
	s := series.FromPairs([]int{2000, 2001}, []float64{0, 10})
	ch, ok := Change(s)
	if !ok {
		t.Fatal("expected change to be computable")
	}
	if ch.HasPercent {
		t.Error("percent must be suppressed when the first value is 0")
	}
	if ch.Absolute != 10 {
		t.Errorf("expected absolute 10, got %v", ch.Absolute)
	}
}
