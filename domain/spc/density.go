package spc

import (
	"math"
)

// NormalDensity evaluates the Gaussian probability density at x for the given
// mean and standard deviation. A zero (or negative) stdDev returns 0: the
// density only feeds a comparison curve, and a zero-width distribution has no
// drawable density.
func NormalDensity(x, mean, stdDev float64) float64 {
	if stdDev <= 0 {
		return 0
	}
	d := x - mean
	return math.Exp(-d*d/(2*stdDev*stdDev)) / (stdDev * math.Sqrt(2*math.Pi))
}
