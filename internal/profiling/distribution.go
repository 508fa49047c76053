package profiling

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"gospc/domain/spc"
)

// HistogramBin is one bar of the distribution chart
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// CurvePoint is one sample of the normal comparison curve. Density is the raw
// Gaussian PDF value; Scaled is the density scaled to the histogram's count
// axis (n times bin width) so both render on the same Y axis.
type CurvePoint struct {
	X       float64 `json:"x"`
	Density float64 `json:"density"`
	Scaled  float64 `json:"scaled"`
}

// Distribution carries the histogram and its normal overlay for the chart
// collaborator. The service computes numbers only; drawing happens elsewhere.
type Distribution struct {
	Bins     []HistogramBin `json:"bins"`
	Curve    []CurvePoint   `json:"curve"`
	BinWidth float64        `json:"bin_width"`
}

// DefaultBinCount is used when the caller does not choose a bin count
const DefaultBinCount = 20

// BuildDistribution bins the observation sequence and samples the normal
// comparison curve from the given mean and overall standard deviation.
func BuildDistribution(values []float64, mean, stdDev float64, binCount int) Distribution {
	if binCount <= 0 {
		binCount = DefaultBinCount
	}
	if len(values) == 0 {
		return Distribution{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	min, max := sorted[0], sorted[len(sorted)-1]
	if min == max {
		// Zero-spread data gets a single unit-wide bin around the value
		min -= 0.5
		max += 0.5
	}

	// Stretch the top divider so the maximum sample lands inside the last bin
	span := max - min
	dividers := make([]float64, binCount+1)
	floats.Span(dividers, min, max+span*1e-9)

	counts := stat.Histogram(nil, dividers, sorted, nil)

	binWidth := span / float64(binCount)
	dist := Distribution{
		Bins:     make([]HistogramBin, binCount),
		BinWidth: binWidth,
	}
	for i := 0; i < binCount; i++ {
		dist.Bins[i] = HistogramBin{
			Lower: dividers[i],
			Upper: dividers[i+1],
			Count: int(counts[i]),
		}
	}

	scale := float64(len(values)) * binWidth
	for i := 0; i <= binCount; i++ {
		x := min + binWidth*float64(i)
		density := spc.NormalDensity(x, mean, stdDev)
		dist.Curve = append(dist.Curve, CurvePoint{
			X:       x,
			Density: density,
			Scaled:  density * scale,
		})
	}

	return dist
}
