package linalg

import (
	"fmt"
	"math"

	"pulsegrid/domain/core"
)

// pivotEpsilon is the magnitude below which a pivot is treated as zero and
// the system declared singular.
const pivotEpsilon = 1e-12

// RegressionResult is the output of a single OLS fit: the coefficient vector
// (one entry per design-matrix column) and the residual sum of squares used
// as the fit-quality metric downstream.
type RegressionResult struct {
	Coefficients []float64 `json:"coefficients"`
	RSS          float64   `json:"rss"`
}

// SolveNormalEquations fits ordinary least squares by forming the normal
// equations XᵗX·β = Xᵗy and solving them with Gaussian elimination. X is
// n×k row-major (the caller includes the intercept column); y has length n.
//
// Returns core.ErrSingularMatrix when the system cannot be solved. Callers
// treat that as "this particular model could not be fit", not as a failure
// of the whole request.
func SolveNormalEquations(X [][]float64, y []float64) (*RegressionResult, error) {
	n := len(X)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("%w: design matrix has %d rows, response has %d", core.ErrInvalidInput, n, len(y))
	}
	k := len(X[0])
	if k == 0 {
		return nil, fmt.Errorf("%w: design matrix has no columns", core.ErrInvalidInput)
	}

	// Gram matrix XᵗX (k×k, symmetric) and vector Xᵗy.
	gram := make([][]float64, k)
	xty := make([]float64, k)
	for i := 0; i < k; i++ {
		gram[i] = make([]float64, k)
	}
	for _, row := range X {
		if len(row) != k {
			return nil, fmt.Errorf("%w: ragged design matrix", core.ErrInvalidInput)
		}
	}
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			sum := 0.0
			for r := 0; r < n; r++ {
				sum += X[r][i] * X[r][j]
			}
			gram[i][j] = sum
			gram[j][i] = sum
		}
		sum := 0.0
		for r := 0; r < n; r++ {
			sum += X[r][i] * y[r]
		}
		xty[i] = sum
	}

	beta, err := gaussianSolve(gram, xty)
	if err != nil {
		return nil, err
	}

	return &RegressionResult{
		Coefficients: beta,
		RSS:          ResidualSumOfSquares(X, y, beta),
	}, nil
}

// ResidualSumOfSquares computes Σ(y − Xβ)² for a fitted coefficient vector.
func ResidualSumOfSquares(X [][]float64, y []float64, beta []float64) float64 {
	rss := 0.0
	for r := range X {
		pred := 0.0
		for j, b := range beta {
			pred += X[r][j] * b
		}
		resid := y[r] - pred
		rss += resid * resid
	}
	return rss
}

// gaussianSolve solves A·x = b in place using Gaussian elimination with
// partial pivoting: each column picks the largest-magnitude pivot among the
// remaining rows before eliminating below it.
func gaussianSolve(A [][]float64, b []float64) ([]float64, error) {
	k := len(A)

	// Augment so row swaps carry the right-hand side along.
	aug := make([][]float64, k)
	for i := range A {
		aug[i] = make([]float64, k+1)
		copy(aug[i], A[i])
		aug[i][k] = b[i]
	}

	for col := 0; col < k; col++ {
		// Partial pivoting: largest absolute value in this column wins.
		pivotRow := col
		for r := col + 1; r < k; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivotRow][col]) {
				pivotRow = r
			}
		}
		if math.Abs(aug[pivotRow][col]) < pivotEpsilon {
			return nil, fmt.Errorf("%w: pivot %g in column %d", core.ErrSingularMatrix, aug[pivotRow][col], col)
		}
		aug[col], aug[pivotRow] = aug[pivotRow], aug[col]

		for r := col + 1; r < k; r++ {
			factor := aug[r][col] / aug[col][col]
			for c := col; c <= k; c++ {
				aug[r][c] -= factor * aug[col][c]
			}
		}
	}

	// Back substitution.
	x := make([]float64, k)
	for i := k - 1; i >= 0; i-- {
		sum := aug[i][k]
		for j := i + 1; j < k; j++ {
			sum -= aug[i][j] * x[j]
		}
		x[i] = sum / aug[i][i]
	}
	return x, nil
}
