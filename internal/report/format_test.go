package report

import (
	"math"
	"testing"

	"gospc/domain/spc"
)

// TestFormatValue verifies fixed-precision and marker rendering
func TestFormatValue(t *testing.T) {
	tests := []struct {
		value     float64
		precision int
		expected  string
	}{
		{1.58113883, 4, "1.5811"},
		{11, 4, "11.0000"},
		{0, 2, "0.00"},
		{-5.016, 4, "-5.0160"},
		{math.Inf(1), 2, "unbounded"},
		{math.Inf(-1), 2, "-unbounded"},
		{math.NaN(), 2, "n/a"},
	}

	for _, test := range tests {
		if got := FormatValue(test.value, test.precision); got != test.expected {
			t.Errorf("FormatValue(%v, %d) = %q, expected %q",
				test.value, test.precision, got, test.expected)
		}
	}
}

// TestFormatOptional verifies absence maps to the n/a marker, not a number
func TestFormatOptional(t *testing.T) {
	if got := FormatOptional(spc.None(), 2); got != MarkerNotApplicable {
		t.Errorf("Expected %q for absent, got %q", MarkerNotApplicable, got)
	}
	if got := FormatOptional(spc.Some(0), 2); got != "0.00" {
		t.Errorf("Absent and zero must render differently, got %q for zero", got)
	}
	if got := FormatOptional(spc.Some(math.Inf(1)), 2); got != MarkerUnbounded {
		t.Errorf("Expected %q for +Inf, got %q", MarkerUnbounded, got)
	}
}

// TestNewSummaryView verifies the display contract on a computed result
func TestNewSummaryView(t *testing.T) {
	result := spc.ComputeStatistics([]float64{10, 12, 11, 13, 9}, spc.NoSpecLimits())
	view := NewSummaryView(result, 4, 2)

	if view.Mean != "11.0000" {
		t.Errorf("Expected mean 11.0000, got %s", view.Mean)
	}
	if view.StdevOverall != "1.5811" {
		t.Errorf("Expected stdev 1.5811, got %s", view.StdevOverall)
	}
	if view.Cpk != MarkerNotApplicable {
		t.Errorf("Expected cpk n/a without specs, got %s", view.Cpk)
	}
	if view.UCL != "16.9840" {
		t.Errorf("Expected ucl 16.9840, got %s", view.UCL)
	}
	if view.LCL != "5.0160" {
		t.Errorf("Expected lcl 5.0160, got %s", view.LCL)
	}
}
