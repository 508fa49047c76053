package report

import (
	"math"
	"strconv"

	"gospc/domain/spc"
)

// Display markers for values that have no finite decimal rendering. The
// summary display must distinguish "no spec configured" from "index is zero"
// and from a degenerate zero-dispersion division.
const (
	MarkerNotApplicable = "n/a"
	MarkerUnbounded     = "unbounded"
	MarkerUnboundedNeg  = "-unbounded"
)

// FormatValue renders a finite float at fixed decimal precision
func FormatValue(v float64, precision int) string {
	if math.IsInf(v, 1) {
		return MarkerUnbounded
	}
	if math.IsInf(v, -1) {
		return MarkerUnboundedNeg
	}
	if math.IsNaN(v) {
		return MarkerNotApplicable
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// FormatOptional renders an optional index, mapping absence to an explicit
// not-applicable marker rather than a numeric string.
func FormatOptional(o spc.OptionalFloat, precision int) string {
	v, ok := o.Float64()
	if !ok {
		return MarkerNotApplicable
	}
	return FormatValue(v, precision)
}

// SummaryView is the formatted numeric summary for display consumers
type SummaryView struct {
	N            int    `json:"n"`
	Mean         string `json:"mean"`
	StdevOverall string `json:"stdev_overall"`
	StdevWithin  string `json:"stdev_within"`
	StdevBetween string `json:"stdev_between"`
	Ca           string `json:"ca"`
	Cp           string `json:"cp"`
	Cpk          string `json:"cpk"`
	Ppk          string `json:"ppk"`
	UCL          string `json:"ucl"`
	LCL          string `json:"lcl"`
}

// NewSummaryView formats a result with the given precisions: statPrecision
// for mean and dispersion, indexPrecision for the capability indices.
func NewSummaryView(result spc.StatisticsResult, statPrecision, indexPrecision int) SummaryView {
	return SummaryView{
		N:            result.N,
		Mean:         FormatValue(result.Mean, statPrecision),
		StdevOverall: FormatValue(result.StdevOverall, statPrecision),
		StdevWithin:  FormatValue(result.StdevWithin, statPrecision),
		StdevBetween: FormatValue(result.StdevBetween, statPrecision),
		Ca:           FormatOptional(result.Ca, indexPrecision),
		Cp:           FormatOptional(result.Cp, indexPrecision),
		Cpk:          FormatOptional(result.Cpk, indexPrecision),
		Ppk:          FormatOptional(result.Ppk, indexPrecision),
		UCL:          FormatValue(result.UCL, statPrecision),
		LCL:          FormatValue(result.LCL, statPrecision),
	}
}
