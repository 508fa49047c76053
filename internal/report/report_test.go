package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"gospc/app"
	"gospc/domain/analysis"
	"gospc/domain/spc"
)

func sampleSnapshot() *app.Snapshot {
	values := []float64{10, 12, 11, 13, 9}
	specs := spc.SpecLimits{Target: spc.Some(11), USL: spc.Some(16), LSL: spc.Some(8)}
	trend := make([]analysis.TrendPoint, len(values))
	for i, v := range values {
		trend[i] = analysis.TrendPoint{Index: i, Value: v, Label: "A"}
	}
	return &app.Snapshot{
		State: analysis.State{
			Source:         "line_a.xlsx",
			Sheet:          "Sheet1",
			ValueColumn:    "measurement",
			CategoryColumn: "line",
			FilterValues:   []string{"A"},
			Specs:          specs,
		},
		Stats:  spc.ComputeStatistics(values, specs),
		Values: values,
		Trend:  trend,
	}
}

// TestBuildMarkdown verifies the report carries the summary and a verdict
func TestBuildMarkdown(t *testing.T) {
	md := BuildMarkdown(sampleSnapshot(), 4, 2)

	for _, want := range []string{
		"# Process Capability Report",
		"line_a.xlsx",
		"| Mean | 11.0000 |",
		"| Cpk |",
		"Process is **",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Report missing %q:\n%s", want, md)
		}
	}
}

// TestBuildMarkdown_NoSpecs verifies the no-specification path
func TestBuildMarkdown_NoSpecs(t *testing.T) {
	snap := sampleSnapshot()
	snap.State.Specs = spc.NoSpecLimits()
	snap.Stats = spc.ComputeStatistics(snap.Values, snap.State.Specs)

	md := BuildMarkdown(snap, 4, 2)
	if !strings.Contains(md, "No specification limits configured") {
		t.Error("Expected the no-specification notice")
	}
	if !strings.Contains(md, "| Cpk | n/a |") {
		t.Error("Expected cpk rendered as n/a")
	}
}

// TestRenderHTML verifies the markdown pipeline produces a page with tables
func TestRenderHTML(t *testing.T) {
	html := string(RenderHTML(BuildMarkdown(sampleSnapshot(), 4, 2)))

	if !strings.Contains(html, "<table>") {
		t.Error("Expected rendered tables in the HTML report")
	}
	if !strings.Contains(html, "<h1") {
		t.Error("Expected a rendered heading")
	}
}

// TestVerdict verifies the capability thresholds
func TestVerdict(t *testing.T) {
	tests := []struct {
		cpk      float64
		expected string
	}{
		{2.0, "capable"},
		{1.33, "capable"},
		{1.1, "marginally capable"},
		{0.9, "not capable"},
		{math.Inf(1), "capable"},
		{math.Inf(-1), "not capable"},
	}
	for _, test := range tests {
		if got := Verdict(test.cpk); got != test.expected {
			t.Errorf("Verdict(%v) = %q, expected %q", test.cpk, got, test.expected)
		}
	}
}

// TestWriteCSV verifies the export preserves order and control limits
func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleSnapshot()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("Expected header plus 5 rows, got %d lines", len(lines))
	}
	if lines[0] != "index,category,value,mean,ucl,lcl" {
		t.Errorf("Unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "0,A,10,") {
		t.Errorf("Unexpected first row: %s", lines[1])
	}
	if !strings.HasPrefix(lines[5], "4,A,9,") {
		t.Errorf("Rows must keep original order, got: %s", lines[5])
	}
}
