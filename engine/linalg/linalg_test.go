package linalg

import (
	"math"
	"testing"

	"pulsegrid/domain/core"
)

func TestGaussianSolve_KnownSystem(t *testing.T) {
	// 2x + y = 5, x + 3y = 10 has the exact solution x=1, y=3.
	A := [][]float64{{2, 1}, {1, 3}}
	b := []float64{5, 10}

	x, err := gaussianSolve(A, b)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if math.Abs(x[0]-1) > 1e-12 || math.Abs(x[1]-3) > 1e-12 {
		t.Errorf("expected [1 3], got %v", x)
	}
}

func TestGaussianSolve_SingularMatrix(t *testing.T) {
	// Second row is a multiple of the first.
	A := [][]float64{{1, 2}, {2, 4}}
	b := []float64{1, 2}

	_, err := gaussianSolve(A, b)
	if err == nil {
		t.Fatal("expected singular matrix error")
	}
	if !core.IsSingularMatrix(err) {
		t.Errorf("expected ErrSingularMatrix, got %v", err)
	}
}

func TestGaussianSolve_PivotSwap(t *testing.T) {
	// A zero in the leading position forces a row swap.
	A := [][]float64{{0, 1}, {1, 0}}
	b := []float64{2, 3}

	x, err := gaussianSolve(A, b)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if math.Abs(x[0]-3) > 1e-12 || math.Abs(x[1]-2) > 1e-12 {
		t.Errorf("expected [3 2], got %v", x)
	}
}

// TestSolveNormalEquations_ExactLine fits y = 2x + 1 with no noise; the
// coefficients must come back exact and the residual must vanish.
func TestSolveNormalEquations_ExactLine(t *testing.T) {
	X := make([][]float64, 10)
	y := make([]float64, 10)
	for i := range X {
		xv := float64(i)
		X[i] = []float64{1, xv}
		y[i] = 2*xv + 1
	}

	fit, err := SolveNormalEquations(X, y)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if math.Abs(fit.Coefficients[0]-1) > 1e-9 || math.Abs(fit.Coefficients[1]-2) > 1e-9 {
		t.Errorf("expected coefficients [1 2], got %v", fit.Coefficients)
	}
	if fit.RSS > 1e-9 {
		t.Errorf("expected zero RSS, got %v", fit.RSS)
	}
}

func TestSolveNormalEquations_CollinearColumns(t *testing.T) {
	// The second regressor duplicates the first, so the Gram matrix is singular.
	X := [][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}}
	y := []float64{1, 2, 3, 4}

	_, err := SolveNormalEquations(X, y)
	if !core.IsSingularMatrix(err) {
		t.Errorf("expected ErrSingularMatrix, got %v", err)
	}
}

func TestSolveNormalEquations_InvalidInput(t *testing.T) {
	if _, err := SolveNormalEquations(nil, nil); err == nil {
		t.Error("empty system must fail")
	}
	if _, err := SolveNormalEquations([][]float64{{1}}, []float64{1, 2}); err == nil {
		t.Error("row/response length mismatch must fail")
	}
	if _, err := SolveNormalEquations([][]float64{{1, 2}, {1}}, []float64{1, 2}); err == nil {
		t.Error("ragged design matrix must fail")
	}
}

func TestResidualSumOfSquares(t *testing.T) {
	X := [][]float64{{1, 0}, {1, 1}, {1, 2}}
	y := []float64{1, 3, 5}
	beta := []float64{1, 2} // exact fit

	if rss := ResidualSumOfSquares(X, y, beta); rss != 0 {
		t.Errorf("expected zero RSS for exact fit, got %v", rss)
	}

	off := []float64{0, 2} // predictions 0, 2, 4 -> residuals 1 each
	if rss := ResidualSumOfSquares(X, y, off); math.Abs(rss-3) > 1e-12 {
		t.Errorf("expected RSS 3, got %v", rss)
	}
}
