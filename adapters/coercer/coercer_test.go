package coercer

import (
	"math"
	"testing"
)

// TestCoerceNumber_FormattedStrings verifies display-formatted cells parse correctly
func TestCoerceNumber_FormattedStrings(t *testing.T) {
	c := NewNumberCoercer(DefaultCoercionConfig())

	tests := []struct {
		raw      string
		expected float64
	}{
		{"$1,234.50", 1234.5},
		{"1,234", 1234},
		{"  42  ", 42},
		{"-17.5", -17.5},
		{"+3.25", 3.25},
		{"1.5e3", 1500},
		{"2E-2", 0.02},
		{"(123.45)", -123.45},
		{"€9.99", 9.99},
		{"85%", 85},
		{"0", 0},
	}

	for _, test := range tests {
		v := c.CoerceNumber(test.raw)
		got, ok := v.Float64()
		if !ok {
			t.Errorf("Expected %q to coerce to a number", test.raw)
			continue
		}
		if got != test.expected {
			t.Errorf("Expected %q -> %v, got %v", test.raw, test.expected, got)
		}
	}
}

// TestCoerceNumber_Unparseable verifies bad input maps to missing, never zero
func TestCoerceNumber_Unparseable(t *testing.T) {
	c := NewNumberCoercer(DefaultCoercionConfig())

	for _, raw := range []interface{}{
		"", "abc", "12abc", "--5", "()", nil, true, []byte("42"),
		math.NaN(), math.Inf(1), "NaN", "Inf",
	} {
		v := c.CoerceNumber(raw)
		if v.IsNumeric() {
			got, _ := v.Float64()
			t.Errorf("Expected %v to be missing, got number %v", raw, got)
		}
		if !v.IsMissing {
			t.Errorf("Expected %v to carry the missing marker", raw)
		}
	}
}

// TestCoerceNumber_PassThrough verifies already-numeric values are untouched
func TestCoerceNumber_PassThrough(t *testing.T) {
	c := NewNumberCoercer(DefaultCoercionConfig())

	for _, raw := range []float64{42, 0, -0.001, 1e300, 1.0000000000000002} {
		v := c.CoerceNumber(raw)
		got, ok := v.Float64()
		if !ok || got != raw {
			t.Errorf("Expected %v to pass through unchanged, got %v (ok=%v)", raw, got, ok)
		}
	}

	if got, ok := c.CoerceNumber(7).Float64(); !ok || got != 7 {
		t.Errorf("Expected int 7 to coerce to 7.0, got %v", got)
	}
}

// TestCoerceNumber_Idempotent verifies re-coercing a coerced number is a no-op
func TestCoerceNumber_Idempotent(t *testing.T) {
	c := NewNumberCoercer(DefaultCoercionConfig())

	for _, raw := range []interface{}{"$1,234.50", "42", 3.14, "(8)"} {
		first := c.CoerceNumber(raw)
		n, ok := first.Float64()
		if !ok {
			t.Fatalf("Expected %v to coerce on the first pass", raw)
		}
		second := c.CoerceNumber(n)
		m, ok := second.Float64()
		if !ok || m != n {
			t.Errorf("Re-coercing %v changed %v into %v", raw, n, m)
		}
	}
}

// TestCoerceValue_Categories verifies the categorical fallback
func TestCoerceValue_Categories(t *testing.T) {
	c := NewNumberCoercer(DefaultCoercionConfig())

	if v := c.CoerceValue("Line A "); !v.IsMissing && v.String() != "Line A" {
		t.Errorf("Expected trimmed category string, got %q", v.String())
	}
	if v := c.CoerceValue("12.5"); !v.IsNumeric() {
		t.Error("Numeric-looking cells should stay numeric in CoerceValue")
	}
	if v := c.CoerceValue(""); !v.IsMissing {
		t.Error("Blank cells should be missing")
	}
}
