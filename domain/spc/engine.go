package spc

import (
	"math"
)

// d2 control-chart constant for a moving-range window of 2 observations.
// Converts the mean moving range into an unbiased standard deviation estimate.
const d2MovingRange = 1.128

// ComputeStatistics converts an ordered numeric sequence plus optional spec
// limits into dispersion estimates, capability indices and control limits.
//
// The function is total: every degenerate input (empty, single point, zero
// variance) maps to a defined result and it never returns an error. It runs
// on every filter or spec-limit change in the host, so surfacing transient
// invalid states as errors would destabilize the interactive loop.
//
// Within-subgroup variation is estimated from the successive-difference moving
// range, which makes the result sensitive to the original row order. Callers
// must narrow the sequence by filtering, never reorder it.
func ComputeStatistics(values []float64, specs SpecLimits) StatisticsResult {
	n := len(values)
	if n == 0 {
		// Empty filters are a normal UI state, not an error.
		return StatisticsResult{
			Ca:  None(),
			Cp:  None(),
			Cpk: None(),
			Ppk: None(),
		}
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	stdevOverall := 0.0
	if n > 1 {
		sumSq := 0.0
		for _, v := range values {
			d := v - mean
			sumSq += d * d
		}
		stdevOverall = math.Sqrt(sumSq / float64(n-1))
	}

	stdevWithin := stdevOverall
	if n > 1 {
		mrSum := 0.0
		for i := 1; i < n; i++ {
			mrSum += math.Abs(values[i] - values[i-1])
		}
		mrBar := mrSum / float64(n-1)
		stdevWithin = mrBar / d2MovingRange
	}

	// Clamped at zero: the moving-range estimate can exceed the overall
	// spread on short or oscillating sequences.
	betweenVar := stdevOverall*stdevOverall - stdevWithin*stdevWithin
	stdevBetween := math.Sqrt(math.Max(0, betweenVar))

	result := StatisticsResult{
		N:            n,
		Mean:         mean,
		StdevOverall: stdevOverall,
		StdevWithin:  stdevWithin,
		StdevBetween: stdevBetween,
		Ca:           None(),
		Cp:           None(),
		Cpk:          None(),
		Ppk:          None(),
		UCL:          mean + 3*stdevWithin,
		LCL:          mean - 3*stdevWithin,
	}

	usl, hasUSL := specs.USL.Float64()
	lsl, hasLSL := specs.LSL.Float64()

	// Divisions by a zero stdev intentionally yield ±Inf: a degenerate but
	// valid capability, handled by display as an "unbounded" marker.
	switch {
	case hasUSL && hasLSL:
		tolerance := usl - lsl
		center := (usl + lsl) / 2
		result.Ca = Some((mean - center) / (tolerance / 2))
		result.Cp = Some(tolerance / (6 * stdevWithin))
		result.Cpk = Some(math.Min((usl-mean)/(3*stdevWithin), (mean-lsl)/(3*stdevWithin)))
		result.Ppk = Some(math.Min((usl-mean)/(3*stdevOverall), (mean-lsl)/(3*stdevOverall)))
	case hasUSL:
		result.Cpk = Some((usl - mean) / (3 * stdevWithin))
		result.Ppk = Some((usl - mean) / (3 * stdevOverall))
	case hasLSL:
		result.Cpk = Some((mean - lsl) / (3 * stdevWithin))
		result.Ppk = Some((mean - lsl) / (3 * stdevOverall))
	}

	return result
}
