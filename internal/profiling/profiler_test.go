package profiling

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"
)

// TestProfile_Basics verifies the summary statistics on a known series
func TestProfile_Basics(t *testing.T) {
	data := []float64{10, 12, 11, 13, 9}
	profile, err := Profile("measurement", data, 2)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}

	if profile.SampleSize != 5 || profile.MissingCount != 2 {
		t.Errorf("Expected n=5 missing=2, got n=%d missing=%d", profile.SampleSize, profile.MissingCount)
	}
	if profile.Mean != 11 {
		t.Errorf("Expected mean=11, got %f", profile.Mean)
	}
	if math.Abs(profile.StdDev-math.Sqrt(2.5)) > 1e-12 {
		t.Errorf("Expected sample stdev sqrt(2.5), got %f", profile.StdDev)
	}
	if profile.Min != 9 || profile.Max != 13 || profile.Median != 11 {
		t.Errorf("Unexpected order statistics: min=%f max=%f median=%f",
			profile.Min, profile.Max, profile.Median)
	}
	if profile.ZeroVariance {
		t.Error("Series with spread must not report zero variance")
	}
}

// TestProfile_Empty verifies empty input yields a zeroed profile, not an error
func TestProfile_Empty(t *testing.T) {
	profile, err := Profile("measurement", nil, 7)
	if err != nil {
		t.Fatalf("Profile on empty input must not fail: %v", err)
	}
	if profile.SampleSize != 0 || profile.MissingCount != 7 {
		t.Errorf("Unexpected counts: %+v", profile)
	}
}

// TestProfile_SingleObservation verifies a one-point column stays finite and
// JSON-encodable; a sample deviation is undefined for it and must come back 0.
func TestProfile_SingleObservation(t *testing.T) {
	profile, err := Profile("measurement", []float64{5}, 3)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.SampleSize != 1 || profile.MissingCount != 3 {
		t.Errorf("Unexpected counts: %+v", profile)
	}
	if profile.Mean != 5 || profile.Median != 5 || profile.Min != 5 || profile.Max != 5 {
		t.Errorf("Unexpected location statistics: %+v", profile)
	}
	if profile.StdDev != 0 {
		t.Errorf("Expected zero stdev for a single observation, got %v", profile.StdDev)
	}
	if !profile.ZeroVariance {
		t.Error("Single observation should report zero variance")
	}
	if _, err := json.Marshal(profile); err != nil {
		t.Errorf("Profile must be JSON-encodable: %v", err)
	}
}

// TestProfile_ZeroVariance verifies the flat-series flag
func TestProfile_ZeroVariance(t *testing.T) {
	profile, err := Profile("measurement", []float64{5, 5, 5, 5}, 0)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if !profile.ZeroVariance {
		t.Error("Expected zero variance flag for a flat series")
	}
	if profile.Skewness != 0 || profile.Kurtosis != 0 {
		t.Error("Flat series should report zero shape statistics")
	}
}

// TestProfile_NormalityOnGaussianData verifies normal data passes the check
func TestProfile_NormalityOnGaussianData(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	data := make([]float64, 500)
	for i := range data {
		data[i] = 50 + rng.NormFloat64()*3
	}

	profile, err := Profile("measurement", data, 0)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if !profile.IsNormal {
		t.Errorf("Expected Gaussian data to pass the normality check, p=%f skew=%f kurt=%f",
			profile.NormalityP, profile.Skewness, profile.Kurtosis)
	}
}

// TestProfile_Outliers verifies the IQR rule counts the planted outlier
func TestProfile_Outliers(t *testing.T) {
	data := []float64{10, 11, 10.5, 9.5, 10.2, 9.8, 10.1, 100}
	profile, err := Profile("measurement", data, 0)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.OutlierCount < 1 {
		t.Errorf("Expected at least one outlier, got %d", profile.OutlierCount)
	}
}

// TestBuildDistribution verifies binning covers every sample exactly once
func TestBuildDistribution(t *testing.T) {
	values := []float64{10, 12, 11, 13, 9, 10.5, 11.5, 12.5, 9.5, 11.2}
	dist := BuildDistribution(values, 11, 1.3, 5)

	if len(dist.Bins) != 5 {
		t.Fatalf("Expected 5 bins, got %d", len(dist.Bins))
	}

	total := 0
	for _, bin := range dist.Bins {
		total += bin.Count
	}
	if total != len(values) {
		t.Errorf("Expected all %d samples binned, got %d", len(values), total)
	}

	if len(dist.Curve) != 6 {
		t.Errorf("Expected bins+1 curve points, got %d", len(dist.Curve))
	}

	// Curve peak should sit at the sample closest to the mean
	peakIdx := 0
	for i, p := range dist.Curve {
		if p.Density > dist.Curve[peakIdx].Density {
			peakIdx = i
		}
	}
	if math.Abs(dist.Curve[peakIdx].X-11) > dist.BinWidth {
		t.Errorf("Curve peak at x=%f, expected near the mean 11", dist.Curve[peakIdx].X)
	}
}

// TestBuildDistribution_Degenerate verifies empty and flat inputs do not panic
func TestBuildDistribution_Degenerate(t *testing.T) {
	if dist := BuildDistribution(nil, 0, 0, 10); len(dist.Bins) != 0 {
		t.Error("Empty input should produce no bins")
	}

	dist := BuildDistribution([]float64{7, 7, 7}, 7, 0, 4)
	total := 0
	for _, bin := range dist.Bins {
		total += bin.Count
	}
	if total != 3 {
		t.Errorf("Flat input should still bin all samples, got %d", total)
	}

	// Zero stdev: curve exists but is identically zero
	for _, p := range dist.Curve {
		if p.Density != 0 {
			t.Errorf("Expected zero density for zero stdev, got %f at x=%f", p.Density, p.X)
		}
	}
}
