package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gospc/app"
)

// Capability verdict thresholds, the conventional 4-sigma / 3-sigma cutoffs
const (
	cpkCapable  = 1.33
	cpkMarginal = 1.0
)

// Verdict classifies a cpk value for the report summary line
func Verdict(cpk float64) string {
	switch {
	case math.IsInf(cpk, 1) || cpk >= cpkCapable:
		return "capable"
	case cpk >= cpkMarginal:
		return "marginally capable"
	default:
		return "not capable"
	}
}

// BuildMarkdown renders a capability report for one snapshot
func BuildMarkdown(snap *app.Snapshot, statPrecision, indexPrecision int) string {
	view := NewSummaryView(snap.Stats, statPrecision, indexPrecision)

	var b strings.Builder
	fmt.Fprintf(&b, "# Process Capability Report\n\n")
	fmt.Fprintf(&b, "Source: %s (sheet %s)\n\n", orDash(snap.State.Source), orDash(snap.State.Sheet))
	fmt.Fprintf(&b, "Value column: %s", orDash(snap.State.ValueColumn))
	if snap.State.CategoryColumn != "" {
		fmt.Fprintf(&b, ", grouped by %s", snap.State.CategoryColumn)
		if len(snap.State.FilterValues) > 0 {
			fmt.Fprintf(&b, " (filtered to %s)", strings.Join(snap.State.FilterValues, ", "))
		}
	}
	fmt.Fprintf(&b, "\n\n")

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "| Statistic | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| n | %d |\n", view.N)
	fmt.Fprintf(&b, "| Excluded cells | %d |\n", snap.Excluded)
	fmt.Fprintf(&b, "| Mean | %s |\n", view.Mean)
	fmt.Fprintf(&b, "| Stdev (overall) | %s |\n", view.StdevOverall)
	fmt.Fprintf(&b, "| Stdev (within) | %s |\n", view.StdevWithin)
	fmt.Fprintf(&b, "| Stdev (between) | %s |\n", view.StdevBetween)
	fmt.Fprintf(&b, "| UCL | %s |\n", view.UCL)
	fmt.Fprintf(&b, "| LCL | %s |\n", view.LCL)

	fmt.Fprintf(&b, "\n## Capability\n\n")
	fmt.Fprintf(&b, "| Index | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Ca | %s |\n", view.Ca)
	fmt.Fprintf(&b, "| Cp | %s |\n", view.Cp)
	fmt.Fprintf(&b, "| Cpk | %s |\n", view.Cpk)
	fmt.Fprintf(&b, "| Ppk | %s |\n", view.Ppk)

	if cpk, ok := snap.Stats.Cpk.Float64(); ok {
		fmt.Fprintf(&b, "\nProcess is **%s** (Cpk %s).\n", Verdict(cpk), view.Cpk)
	} else {
		fmt.Fprintf(&b, "\nNo specification limits configured; capability not assessed.\n")
	}

	return b.String()
}

// RenderHTML converts the markdown report to a standalone HTML page
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.CompletePage,
		Title: "Process Capability Report",
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

// WriteCSV exports the coerced observation sequence with its control-limit
// columns, one row per retained observation in original order.
func WriteCSV(w io.Writer, snap *app.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "category", "value", "mean", "ucl", "lcl"}); err != nil {
		return err
	}

	mean := strconv.FormatFloat(snap.Stats.Mean, 'g', -1, 64)
	ucl := strconv.FormatFloat(snap.Stats.UCL, 'g', -1, 64)
	lcl := strconv.FormatFloat(snap.Stats.LCL, 'g', -1, 64)

	for _, point := range snap.Trend {
		record := []string{
			strconv.Itoa(point.Index),
			point.Label,
			strconv.FormatFloat(point.Value, 'g', -1, 64),
			mean,
			ucl,
			lcl,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
