package spc

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// TestComputeStatistics_NoSpecs verifies the dispersion math on a known series
func TestComputeStatistics_NoSpecs(t *testing.T) {
	values := []float64{10, 12, 11, 13, 9}
	result := ComputeStatistics(values, NoSpecLimits())

	if result.N != 5 {
		t.Fatalf("Expected n=5, got %d", result.N)
	}
	if result.Mean != 11 {
		t.Errorf("Expected mean=11, got %f", result.Mean)
	}

	// Sample stdev with n-1 divisor: sqrt(10/4)
	wantOverall := math.Sqrt(2.5)
	if !almostEqual(result.StdevOverall, wantOverall, 1e-12) {
		t.Errorf("Expected stdevOverall=%f, got %f", wantOverall, result.StdevOverall)
	}

	// Moving ranges [2,1,2,4], mean 2.25, divided by d2=1.128
	wantWithin := 2.25 / 1.128
	if !almostEqual(result.StdevWithin, wantWithin, 1e-12) {
		t.Errorf("Expected stdevWithin=%f, got %f", wantWithin, result.StdevWithin)
	}

	if !almostEqual(result.UCL, 11+3*wantWithin, 1e-12) {
		t.Errorf("Expected ucl=%f, got %f", 11+3*wantWithin, result.UCL)
	}
	if !almostEqual(result.LCL, 11-3*wantWithin, 1e-12) {
		t.Errorf("Expected lcl=%f, got %f", 11-3*wantWithin, result.LCL)
	}

	// No specs: every capability index absent, not zero
	for name, idx := range map[string]OptionalFloat{
		"ca": result.Ca, "cp": result.Cp, "cpk": result.Cpk, "ppk": result.Ppk,
	} {
		if idx.IsPresent() {
			t.Errorf("Expected %s to be absent without spec limits", name)
		}
	}
}

// TestComputeStatistics_SinglePoint verifies the zero-variance division policy
func TestComputeStatistics_SinglePoint(t *testing.T) {
	specs := SpecLimits{Target: None(), USL: Some(110), LSL: Some(90)}
	result := ComputeStatistics([]float64{100}, specs)

	if result.N != 1 || result.Mean != 100 {
		t.Fatalf("Expected n=1 mean=100, got n=%d mean=%f", result.N, result.Mean)
	}
	if result.StdevOverall != 0 {
		t.Errorf("Expected stdevOverall=0 for n=1, got %f", result.StdevOverall)
	}
	if result.StdevWithin != result.StdevOverall {
		t.Errorf("Expected stdevWithin to equal stdevOverall for n=1")
	}

	// Mean is exactly centered, so both numerators are positive and the
	// zero-stdev division yields +Inf, never NaN.
	cp, ok := result.Cp.Float64()
	if !ok || !math.IsInf(cp, 1) {
		t.Errorf("Expected cp=+Inf, got %v (present=%v)", cp, ok)
	}
	cpk, ok := result.Cpk.Float64()
	if !ok || !math.IsInf(cpk, 1) {
		t.Errorf("Expected cpk=+Inf, got %v (present=%v)", cpk, ok)
	}
	ppk, ok := result.Ppk.Float64()
	if !ok || !math.IsInf(ppk, 1) {
		t.Errorf("Expected ppk=+Inf, got %v (present=%v)", ppk, ok)
	}
	ca, ok := result.Ca.Float64()
	if !ok || ca != 0 {
		t.Errorf("Expected ca=0 for a centered mean, got %v (present=%v)", ca, ok)
	}
}

// TestComputeStatistics_Empty verifies the zeroed terminal case
func TestComputeStatistics_Empty(t *testing.T) {
	specs := SpecLimits{Target: Some(5), USL: Some(10), LSL: Some(1)}
	result := ComputeStatistics(nil, specs)

	if result.N != 0 {
		t.Errorf("Expected n=0, got %d", result.N)
	}
	if result.Mean != 0 || result.StdevOverall != 0 || result.StdevWithin != 0 || result.StdevBetween != 0 {
		t.Error("Expected all statistics zeroed for empty input")
	}
	if result.UCL != 0 || result.LCL != 0 {
		t.Errorf("Expected ucl=lcl=0, got ucl=%f lcl=%f", result.UCL, result.LCL)
	}
	if result.Ca.IsPresent() || result.Cp.IsPresent() || result.Cpk.IsPresent() || result.Ppk.IsPresent() {
		t.Error("Expected all indices absent for empty input even with spec limits")
	}
}

// TestComputeStatistics_SingleSided verifies USL-only and LSL-only branches
func TestComputeStatistics_SingleSided(t *testing.T) {
	values := []float64{10, 12, 11, 13, 9}
	base := ComputeStatistics(values, NoSpecLimits())

	uslOnly := ComputeStatistics(values, SpecLimits{Target: None(), USL: Some(15), LSL: None()})
	if uslOnly.Ca.IsPresent() || uslOnly.Cp.IsPresent() {
		t.Error("Expected ca and cp absent for a single-sided spec")
	}
	wantCpk := (15 - base.Mean) / (3 * base.StdevWithin)
	cpk, _ := uslOnly.Cpk.Float64()
	if !almostEqual(cpk, wantCpk, 1e-12) {
		t.Errorf("Expected cpk=%f, got %f", wantCpk, cpk)
	}
	wantPpk := (15 - base.Mean) / (3 * base.StdevOverall)
	ppk, _ := uslOnly.Ppk.Float64()
	if !almostEqual(ppk, wantPpk, 1e-12) {
		t.Errorf("Expected ppk=%f, got %f", wantPpk, ppk)
	}

	lslOnly := ComputeStatistics(values, SpecLimits{Target: None(), USL: None(), LSL: Some(7)})
	wantCpk = (base.Mean - 7) / (3 * base.StdevWithin)
	cpk, _ = lslOnly.Cpk.Float64()
	if !almostEqual(cpk, wantCpk, 1e-12) {
		t.Errorf("Expected mirrored cpk=%f, got %f", wantCpk, cpk)
	}
}

// TestComputeStatistics_DoubleSided verifies the full capability block
func TestComputeStatistics_DoubleSided(t *testing.T) {
	values := []float64{10, 12, 11, 13, 9}
	specs := SpecLimits{Target: Some(11), USL: Some(16), LSL: Some(8)}
	result := ComputeStatistics(values, specs)

	// T=8, U=12, mean=11
	ca, _ := result.Ca.Float64()
	if !almostEqual(ca, (11.0-12.0)/4.0, 1e-12) {
		t.Errorf("Expected ca=-0.25, got %f", ca)
	}
	cp, _ := result.Cp.Float64()
	if !almostEqual(cp, 8/(6*result.StdevWithin), 1e-12) {
		t.Errorf("Unexpected cp=%f", cp)
	}
	cpk, _ := result.Cpk.Float64()
	wantCpk := math.Min((16-11)/(3*result.StdevWithin), (11-8)/(3*result.StdevWithin))
	if !almostEqual(cpk, wantCpk, 1e-12) {
		t.Errorf("Expected cpk=%f, got %f", wantCpk, cpk)
	}
	ppk, _ := result.Ppk.Float64()
	wantPpk := math.Min((16-11)/(3*result.StdevOverall), (11-8)/(3*result.StdevOverall))
	if !almostEqual(ppk, wantPpk, 1e-12) {
		t.Errorf("Expected ppk=%f, got %f", wantPpk, ppk)
	}
}

// TestComputeStatistics_BetweenClamped verifies stdevBetween never goes negative
func TestComputeStatistics_BetweenClamped(t *testing.T) {
	// An oscillating series makes the moving-range estimate exceed the
	// overall spread, which would drive the between-variance negative.
	sequences := [][]float64{
		{1, -1, 1, -1, 1, -1, 1, -1},
		{5, 10, 5, 10, 5, 10},
		{10, 12, 11, 13, 9},
		{3, 3, 3, 3},
		{42},
	}

	for _, values := range sequences {
		result := ComputeStatistics(values, NoSpecLimits())
		if result.StdevBetween < 0 {
			t.Errorf("stdevBetween must never be negative, got %f for %v", result.StdevBetween, values)
		}
		if math.IsNaN(result.StdevBetween) {
			t.Errorf("stdevBetween must never be NaN, got NaN for %v", values)
		}
	}
}

// TestComputeStatistics_OrderSensitivity verifies the moving range tracks sequence order
func TestComputeStatistics_OrderSensitivity(t *testing.T) {
	ordered := ComputeStatistics([]float64{1, 2, 3, 4, 5}, NoSpecLimits())
	shuffled := ComputeStatistics([]float64{3, 1, 5, 2, 4}, NoSpecLimits())

	if ordered.StdevOverall != shuffled.StdevOverall {
		t.Error("Overall stdev should not depend on order")
	}
	if ordered.StdevWithin == shuffled.StdevWithin {
		t.Error("Within stdev should depend on order for these sequences")
	}
}

// TestComputeStatistics_ControlLimitRoundTrip cross-checks the capability branches:
// feeding UCL back as a single-sided USL must give cpk exactly 1.
func TestComputeStatistics_ControlLimitRoundTrip(t *testing.T) {
	values := []float64{10, 12, 11, 13, 9, 10.5, 11.5, 12.5}
	first := ComputeStatistics(values, NoSpecLimits())

	viaUCL := ComputeStatistics(values, SpecLimits{Target: None(), USL: Some(first.UCL), LSL: None()})
	cpk, _ := viaUCL.Cpk.Float64()
	if !almostEqual(cpk, 1.0, 1e-12) {
		t.Errorf("Expected cpk=1 when USL is the UCL, got %f", cpk)
	}
	ppk, _ := viaUCL.Ppk.Float64()
	wantPpk := first.StdevWithin / first.StdevOverall
	if !almostEqual(ppk, wantPpk, 1e-12) {
		t.Errorf("Expected ppk=%f when USL is the UCL, got %f", wantPpk, ppk)
	}

	viaLCL := ComputeStatistics(values, SpecLimits{Target: None(), USL: None(), LSL: Some(first.LCL)})
	cpk, _ = viaLCL.Cpk.Float64()
	if !almostEqual(cpk, 1.0, 1e-12) {
		t.Errorf("Expected cpk=1 when LSL is the LCL, got %f", cpk)
	}
}

// TestComputeStatistics_Deterministic verifies identical inputs give identical outputs
func TestComputeStatistics_Deterministic(t *testing.T) {
	values := []float64{3.2, 1.7, 4.4, 2.9, 3.8, 2.2}
	specs := SpecLimits{Target: Some(3), USL: Some(5), LSL: Some(1)}

	first := ComputeStatistics(values, specs)
	for i := 0; i < 10; i++ {
		if ComputeStatistics(values, specs) != first {
			t.Fatal("ComputeStatistics must be bit-reproducible for identical inputs")
		}
	}
}
