package causality

import "math"

// Special functions needed to turn an F-statistic into a p-value. These are
// deliberate approximations: a Lanczos series for log-gamma and Lentz's
// continued fraction for the regularized incomplete beta. No math library is
// pulled in for the core path.

const (
	betaMaxIterations = 200
	betaEpsilon       = 1e-8
	betaTiny          = 1e-30
)

// lanczosCoefficients for the log-gamma series (g=5, 6 terms).
var lanczosCoefficients = [6]float64{
	76.18009172947146,
	-86.50532032941677,
	24.01409824083091,
	-1.231739572450155,
	0.1208650973866179e-2,
	-0.5395239384953e-5,
}

// logGamma evaluates ln Γ(x) for x > 0 using the Lanczos approximation.
func logGamma(x float64) float64 {
	y := x
	tmp := x + 5.5
	tmp -= (x + 0.5) * math.Log(tmp)
	ser := 1.000000000190015
	for _, c := range lanczosCoefficients {
		y++
		ser += c / y
	}
	return -tmp + math.Log(2.5066282746310005*ser/x)
}

// regularizedIncompleteBeta evaluates I_x(a, b). Out-of-range x is clamped to
// the saturated value so a numerically wild F-statistic degrades to p=0 or
// p=1 instead of NaN.
func regularizedIncompleteBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	// ln of the prefactor x^a (1-x)^b / B(a,b).
	lnBeta := logGamma(a+b) - logGamma(a) - logGamma(b) + a*math.Log(x) + b*math.Log(1-x)
	front := math.Exp(lnBeta)

	// Use the continued fraction directly where it converges fast, the
	// symmetry relation otherwise.
	if x < (a+1)/(a+b+2) {
		return front * betaContinuedFraction(a, b, x) / a
	}
	return 1 - front*betaContinuedFraction(b, a, 1-x)/b
}

// betaContinuedFraction evaluates the incomplete-beta continued fraction with
// the modified Lentz algorithm and the even/odd recurrence. Convergence is
// declared when a multiplicative correction differs from 1 by less than
// betaEpsilon; runaway inputs bail out after betaMaxIterations.
func betaContinuedFraction(a, b, x float64) float64 {
	qab := a + b
	qap := a + 1
	qam := a - 1

	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < betaTiny {
		d = betaTiny
	}
	d = 1 / d
	h := d

	for m := 1; m <= betaMaxIterations; m++ {
		m2 := 2 * m

		// Even step.
		aa := float64(m) * (b - float64(m)) * x / ((qam + float64(m2)) * (a + float64(m2)))
		d = 1 + aa*d
		if math.Abs(d) < betaTiny {
			d = betaTiny
		}
		c = 1 + aa/c
		if math.Abs(c) < betaTiny {
			c = betaTiny
		}
		d = 1 / d
		h *= d * c

		// Odd step.
		aa = -(a + float64(m)) * (qab + float64(m)) * x / ((a + float64(m2)) * (qap + float64(m2)))
		d = 1 + aa*d
		if math.Abs(d) < betaTiny {
			d = betaTiny
		}
		c = 1 + aa/c
		if math.Abs(c) < betaTiny {
			c = betaTiny
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < betaEpsilon {
			break
		}
	}
	return h
}

// fPValue converts an F-statistic with (d1, d2) degrees of freedom into the
// right-tail probability P(F' > F). The tail is I_x(d2/2, d1/2) evaluated at
// x = d2/(d2+d1·F).
func fPValue(f float64, d1, d2 int) float64 {
	x := float64(d2) / (float64(d2) + float64(d1)*f)
	p := regularizedIncompleteBeta(float64(d2)/2, float64(d1)/2, x)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
