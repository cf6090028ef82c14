package causality

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

// TestLogGamma_AgainstStdlib compares the Lanczos series with math.Lgamma.
func TestLogGamma_AgainstStdlib(t *testing.T) {
	for _, x := range []float64{0.5, 1, 1.5, 2, 3.5, 5, 10, 25.5, 100} {
		want, _ := math.Lgamma(x)
		got := logGamma(x)
		if math.Abs(got-want) > 1e-10 {
			t.Errorf("logGamma(%v) = %v, want %v", x, got, want)
		}
	}
}

func TestRegularizedIncompleteBeta_Bounds(t *testing.T) {
	if got := regularizedIncompleteBeta(2, 3, 0); got != 0 {
		t.Errorf("I_0 should be 0, got %v", got)
	}
	if got := regularizedIncompleteBeta(2, 3, 1); got != 1 {
		t.Errorf("I_1 should be 1, got %v", got)
	}
	if got := regularizedIncompleteBeta(2, 3, -0.5); got != 0 {
		t.Errorf("negative x should clamp to 0, got %v", got)
	}
	if got := regularizedIncompleteBeta(2, 3, 1.5); got != 1 {
		t.Errorf("x beyond 1 should clamp to 1, got %v", got)
	}
}

// TestRegularizedIncompleteBeta_Symmetry checks I_x(a,b) = 1 - I_{1-x}(b,a).
func TestRegularizedIncompleteBeta_Symmetry(t *testing.T) {
	cases := []struct{ a, b, x float64 }{
		{0.5, 0.5, 0.3},
		{1, 5, 0.1},
		{2.5, 1.5, 0.7},
		{10, 3, 0.9},
	}
	for _, c := range cases {
		left := regularizedIncompleteBeta(c.a, c.b, c.x)
		right := 1 - regularizedIncompleteBeta(c.b, c.a, 1-c.x)
		if math.Abs(left-right) > 1e-7 {
			t.Errorf("symmetry broken at a=%v b=%v x=%v: %v vs %v", c.a, c.b, c.x, left, right)
		}
	}
}

// TestRegularizedIncompleteBeta_KnownValue uses the closed form for a=1:
// I_x(1, b) = 1 - (1-x)^b.
func TestRegularizedIncompleteBeta_KnownValue(t *testing.T) {
	for _, b := range []float64{1, 2, 5.5} {
		for _, x := range []float64{0.1, 0.4, 0.8} {
			want := 1 - math.Pow(1-x, b)
			got := regularizedIncompleteBeta(1, b, x)
			if math.Abs(got-want) > 1e-7 {
				t.Errorf("I_%v(1, %v) = %v, want %v", x, b, got, want)
			}
		}
	}
}

// TestFPValue_AgainstGonum cross-checks the hand-written F tail probability
// with the reference distribution.
func TestFPValue_AgainstGonum(t *testing.T) {
	for _, d1 := range []int{1, 2, 3} {
		for _, d2 := range []int{5, 10, 30} {
			for _, f := range []float64{0.1, 0.5, 1, 2.27, 5, 12} {
				ref := distuv.F{D1: float64(d1), D2: float64(d2)}
				want := 1 - ref.CDF(f)
				got := fPValue(f, d1, d2)
				if math.Abs(got-want) > 1e-6 {
					t.Errorf("fPValue(%v, %d, %d) = %v, want %v", f, d1, d2, got, want)
				}
			}
		}
	}
}

func TestFPValue_Monotonicity(t *testing.T) {
	prev := 1.0
	for _, f := range []float64{0.1, 1, 2, 5, 10, 50} {
		p := fPValue(f, 2, 20)
		if p > prev {
			t.Fatalf("p-value must decrease as F grows: p(%v)=%v > %v", f, p, prev)
		}
		prev = p
	}
	if p := fPValue(0, 2, 20); math.Abs(p-1) > 1e-9 {
		t.Errorf("F=0 should give p=1, got %v", p)
	}
	if p := fPValue(1e9, 2, 20); p > 1e-6 {
		t.Errorf("huge F should give a vanishing p, got %v", p)
	}
}
