package main

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrShortDistribution = errors.New("distribution needs at least two matching samples")
	ErrZeroWeight        = errors.New("distribution has zero total weight")
)

// Moments computes the zeroth moment m0 and the normalized first and
// second moments m1 and m2 of the weights w sampled at x. The
// integrals use the left Riemann rule, so the last sample only
// contributes its interval boundary.
func Moments(x, w []float64) (m0, m1, m2 float64, err error) {
	if len(x) < 2 || len(x) != len(w) {
		err = ErrShortDistribution
		return
	}
	n := len(x) - 1
	dx := make([]float64, n)
	floats.SubTo(dx, x[1:], x[:n])
	wdx := make([]float64, n)
	floats.MulTo(wdx, w[:n], dx)
	m0 = floats.Sum(wdx)
	if m0 == 0 {
		err = ErrZeroWeight
		return
	}
	for i, v := range wdx {
		m1 += v * x[i]
		m2 += v * x[i] * x[i]
	}
	m1 /= m0
	m2 /= m0
	return
}

// RMSWidth returns the mean and root-mean-square width of the
// distribution w(x), using the central second moment in place of
// m2 - m1²
func RMSWidth(x, w []float64) (mean, rms float64, err error) {
	m0, mean, _, err := Moments(x, w)
	if err != nil {
		return
	}
	var variance float64
	for i := 0; i < len(x)-1; i++ {
		d := x[i] - mean
		variance += w[i] * (x[i+1] - x[i]) * d * d
	}
	variance /= m0
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance), nil
}

// countAboveHalf returns the number of entries in v strictly greater
// than half of its maximum
func countAboveHalf(v []float64) int {
	if len(v) == 0 {
		return 0
	}
	half := floats.Max(v) / 2
	var count int
	for _, x := range v {
		if x > half {
			count++
		}
	}
	return count
}
