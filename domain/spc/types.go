package spc

import (
	"encoding/json"
	"fmt"
	"math"
)

// OptionalFloat is a float64 that is either present or explicitly absent.
// Absent spec limits and non-computable capability indices use this instead of
// a NaN sentinel so "no value" can never be confused with a value of zero.
type OptionalFloat struct {
	value   float64
	present bool
}

// Some creates a present OptionalFloat
func Some(v float64) OptionalFloat {
	return OptionalFloat{value: v, present: true}
}

// None creates an absent OptionalFloat
func None() OptionalFloat {
	return OptionalFloat{}
}

// FromFloat treats NaN as absent; any other value (including ±Inf) is present.
// This is the bridge for callers that still carry NaN-sentinel inputs, such as
// half-edited spec limit fields.
func FromFloat(v float64) OptionalFloat {
	if math.IsNaN(v) {
		return None()
	}
	return Some(v)
}

// Float64 returns the value and whether it is present
func (o OptionalFloat) Float64() (float64, bool) {
	return o.value, o.present
}

// IsPresent reports whether a value is present
func (o OptionalFloat) IsPresent() bool {
	return o.present
}

// IsInf reports whether the value is present and infinite in either direction
func (o OptionalFloat) IsInf() bool {
	return o.present && math.IsInf(o.value, 0)
}

// MarshalJSON emits null when absent and a quoted marker for infinities,
// which encoding/json cannot represent as numbers.
func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	if math.IsInf(o.value, 1) {
		return []byte(`"+Inf"`), nil
	}
	if math.IsInf(o.value, -1) {
		return []byte(`"-Inf"`), nil
	}
	if math.IsNaN(o.value) {
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(o.value)
}

func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	s := string(data)
	switch s {
	case "null":
		*o = None()
		return nil
	case `"+Inf"`:
		*o = Some(math.Inf(1))
		return nil
	case `"-Inf"`:
		*o = Some(math.Inf(-1))
		return nil
	case `"NaN"`:
		*o = Some(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("optional float: %w", err)
	}
	*o = Some(v)
	return nil
}

// SpecLimits holds the optional specification triple. Target is carried for
// chart consumers (percentage-deviation axis) but not used by the engine.
type SpecLimits struct {
	Target OptionalFloat `json:"target"`
	USL    OptionalFloat `json:"usl"`
	LSL    OptionalFloat `json:"lsl"`
}

// NoSpecLimits returns a limits triple with every field absent
func NoSpecLimits() SpecLimits {
	return SpecLimits{Target: None(), USL: None(), LSL: None()}
}

// StatisticsResult is the immutable output of ComputeStatistics. It is always
// replaced wholesale on recompute, never mutated, so every consumer observes a
// single consistent snapshot.
type StatisticsResult struct {
	N            int     `json:"n"`
	Mean         float64 `json:"mean"`
	StdevOverall float64 `json:"stdev_overall"`
	StdevWithin  float64 `json:"stdev_within"`
	StdevBetween float64 `json:"stdev_between"`

	Ca  OptionalFloat `json:"ca"`
	Cp  OptionalFloat `json:"cp"`
	Cpk OptionalFloat `json:"cpk"`
	Ppk OptionalFloat `json:"ppk"`

	UCL float64 `json:"ucl"`
	LCL float64 `json:"lcl"`
}
