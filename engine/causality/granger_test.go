package causality

import (
	"context"
	"testing"

	"pulsegrid/domain/core"
	"pulsegrid/domain/series"
	"pulsegrid/internal/metrics"
	"pulsegrid/internal/testkit"
)

// TestTest_Directionality drives the tester with a coupled pair
// Y(t) = 0.8*X(t-1) + noise. The X→Y direction must be significant at lag 1;
// the reverse direction must come out with a far higher p-value.
func TestTest_Directionality(t *testing.T) {
	tester := NewTester(nil)
	x, y := testkit.CoupledPair(testkit.DefaultConfig(), 0.8, 1)

	forward, err := tester.Test(x, y, Config{})
	if err != nil {
		t.Fatalf("forward test failed: %v", err)
	}
	if !forward.Causal {
		t.Errorf("expected X→Y causal, p=%v", forward.PValue)
	}
	lag1Significant := false
	for _, lr := range forward.Lags {
		if lr.Lag == 1 && lr.Significant {
			lag1Significant = true
		}
	}
	if !lag1Significant {
		t.Errorf("expected lag 1 to be significant: %+v", forward.Lags)
	}

	reverse, err := tester.Test(y, x, Config{})
	if err != nil {
		t.Fatalf("reverse test failed: %v", err)
	}
	if reverse.PValue <= forward.PValue*100 {
		t.Errorf("directionality lost: forward p=%v, reverse p=%v", forward.PValue, reverse.PValue)
	}
}

func TestTest_InsufficientOverlap(t *testing.T) {
	tester := NewTester(nil)
	x := series.FromPairs([]int{2000, 2001, 2002, 2003}, []float64{1, 2, 3, 4})
	y := series.FromPairs([]int{2000, 2001, 2002, 2003}, []float64{4, 3, 2, 1})

	// maxLag 3 needs 3*3+2 = 11 aligned observations.
	_, err := tester.Test(x, y, Config{})
	if !core.IsInsufficientData(err) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestTest_ConstantEffectSkipsAllLags(t *testing.T) {
	tester := NewTester(nil)
	cfg := testkit.DefaultConfig()
	x := testkit.TrendSeries(cfg, 5, 0.3)
	y := testkit.ConstantSeries(cfg, 42)

	// A constant effect makes every unrestricted fit degenerate (RSS_u = 0 or
	// singular), so no lag survives.
	_, err := tester.Test(x, y, Config{})
	if !core.IsInsufficientData(err) {
		t.Errorf("expected ErrInsufficientData when no lag is computable, got %v", err)
	}
}

func TestTest_ObservationsCount(t *testing.T) {
	tester := NewTester(nil)
	x, y := testkit.CoupledPair(testkit.DefaultConfig(), 0.8, 1)

	result, err := tester.Test(x, y, Config{MaxLag: 2})
	if err != nil {
		t.Fatalf("test failed: %v", err)
	}
	if result.Observations != 40 {
		t.Errorf("expected 40 aligned observations, got %d", result.Observations)
	}
	if len(result.Lags) == 0 || len(result.Lags) > 2 {
		t.Errorf("expected 1-2 lag results, got %d", len(result.Lags))
	}
}

func TestTest_CountsRuns(t *testing.T) {
	reg := metrics.NewRegistry()
	tester := NewTester(reg)
	x, y := testkit.CoupledPair(testkit.DefaultConfig(), 0.8, 1)

	if _, err := tester.Test(x, y, Config{}); err != nil {
		t.Fatalf("test failed: %v", err)
	}
	if got := reg.Snapshot()[metrics.CounterCausalityTests]; got != 1 {
		t.Errorf("expected 1 recorded test, got %d", got)
	}
}

func TestBuildMatrix_ShapeAndDiagonal(t *testing.T) {
	tester := NewTester(nil)
	cfg := testkit.DefaultConfig()
	x, y := testkit.CoupledPair(cfg, 0.8, 1)
	z := testkit.TrendSeries(cfg, 20, -0.4)

	datasets := []series.Named{
		{Label: "driver", Series: x},
		{Label: "follower", Series: y},
		{Label: "unrelated", Series: z},
	}

	m := tester.BuildMatrix(context.Background(), datasets, Config{})
	if len(m.Labels) != 3 || len(m.Cells) != 3 {
		t.Fatalf("expected 3x3 matrix, got %dx%d", len(m.Labels), len(m.Cells))
	}
	for i := range m.Cells {
		if len(m.Cells[i]) != 3 {
			t.Fatalf("row %d has %d cells", i, len(m.Cells[i]))
		}
		diag := m.Cells[i][i]
		if diag == nil || diag.Causal || diag.PValue != 1 {
			t.Errorf("diagonal cell %d should be non-causal with p=1, got %+v", i, diag)
		}
	}

	cell := m.Cells[0][1]
	if cell == nil || !cell.Causal {
		t.Errorf("expected driver→follower to be causal, got %+v", cell)
	}
}

func TestBuildMatrix_InsightsSortedAscendingByP(t *testing.T) {
	tester := NewTester(nil)
	cfg := testkit.DefaultConfig()
	x, y := testkit.CoupledPair(cfg, 0.8, 1)

	cfg2 := cfg
	cfg2.Seed = 7
	x2, y2 := testkit.CoupledPair(cfg2, 0.6, 2)

	datasets := []series.Named{
		{Label: "a", Series: x},
		{Label: "b", Series: y},
		{Label: "c", Series: x2},
		{Label: "d", Series: y2},
	}

	m := tester.BuildMatrix(context.Background(), datasets, Config{})
	if len(m.Insights) == 0 {
		t.Fatal("expected at least one causal insight")
	}
	for i := 1; i < len(m.Insights); i++ {
		if m.Insights[i].PValue < m.Insights[i-1].PValue {
			t.Errorf("insights not sorted ascending by p: %v", m.Insights)
		}
	}
	for _, ins := range m.Insights {
		if ins.PValue >= 0.05 {
			t.Errorf("insight above significance cutoff leaked through: %+v", ins)
		}
		if ins.Severity != "strong" && ins.Severity != "significant" {
			t.Errorf("unexpected severity %q", ins.Severity)
		}
	}
}

func TestBuildMatrix_ShortSeriesLeavesNilCells(t *testing.T) {
	tester := NewTester(nil)
	cfg := testkit.DefaultConfig()
	long := testkit.TrendSeries(cfg, 10, 0.5)
	short := series.FromPairs([]int{1980, 1981, 1982}, []float64{1, 2, 3})

	datasets := []series.Named{
		{Label: "long", Series: long},
		{Label: "short", Series: short},
	}

	m := tester.BuildMatrix(context.Background(), datasets, Config{})
	if m.Cells[0][1] != nil || m.Cells[1][0] != nil {
		t.Errorf("pairs without enough overlap must stay nil: %+v / %+v", m.Cells[0][1], m.Cells[1][0])
	}
}
