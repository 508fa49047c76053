package testkit

import (
	"fmt"
	"math/rand"
	"strconv"

	"gospc/domain/core"
	"gospc/domain/ingestion"
)

// ProcessConfig configures the synthetic process generator
type ProcessConfig struct {
	Mean       float64 `json:"mean"`
	Stdev      float64 `json:"stdev"`
	Count      int     `json:"count"`
	Categories int     `json:"categories"`
	Seed       int64   `json:"seed"`
}

// DefaultProcessConfig returns a stable in-control process: 200 observations
// around 10.0 with sigma 0.5, split across two production lines.
func DefaultProcessConfig() ProcessConfig {
	return ProcessConfig{
		Mean:       10.0,
		Stdev:      0.5,
		Count:      200,
		Categories: 2,
		Seed:       42,
	}
}

// ProcessGenerator produces deterministic synthetic measurement series for
// tests and demos. The same seed always yields the same series.
type ProcessGenerator struct {
	config ProcessConfig
	rng    *rand.Rand
}

// NewProcessGenerator creates a generator from config
func NewProcessGenerator(config ProcessConfig) *ProcessGenerator {
	return &ProcessGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// InControlSeries generates a series with constant mean and spread
func (g *ProcessGenerator) InControlSeries() []float64 {
	values := make([]float64, g.config.Count)
	for i := range values {
		values[i] = g.config.Mean + g.rng.NormFloat64()*g.config.Stdev
	}
	return values
}

// ShiftedSeries generates a series whose mean jumps by delta at index shiftAt.
// Useful for exercising control-limit violations.
func (g *ProcessGenerator) ShiftedSeries(shiftAt int, delta float64) []float64 {
	values := make([]float64, g.config.Count)
	for i := range values {
		mean := g.config.Mean
		if i >= shiftAt {
			mean += delta
		}
		values[i] = mean + g.rng.NormFloat64()*g.config.Stdev
	}
	return values
}

// TrendingSeries generates a series drifting by slope per observation
func (g *ProcessGenerator) TrendingSeries(slope float64) []float64 {
	values := make([]float64, g.config.Count)
	for i := range values {
		values[i] = g.config.Mean + slope*float64(i) + g.rng.NormFloat64()*g.config.Stdev
	}
	return values
}

// Table wraps a generated series in an ingestion table with a category column
// and a sprinkling of dirty cells, so ingestion and coercion paths get
// exercised the way real spreadsheets exercise them.
func (g *ProcessGenerator) Table(name string, values []float64) *ingestion.Table {
	headers := []string{"measurement", "line"}
	rows := make([]ingestion.RowRecord, len(values))

	for i, v := range values {
		cell := strconv.FormatFloat(v, 'f', 4, 64)
		switch {
		case i%17 == 0 && i > 0:
			// Currency-formatted cell, coercible
			cell = "$" + cell
		case i%29 == 0 && i > 0:
			// Missing measurement
			cell = ""
		}
		rows[i] = ingestion.RowRecord{
			"measurement": cell,
			"line":        g.categoryFor(i),
		}
	}

	rawRows := make([]map[string]string, len(rows))
	for i, row := range rows {
		rawRows[i] = map[string]string(row)
	}

	return &ingestion.Table{
		ID:          core.DatasetID(core.NewID()),
		Source:      name,
		Sheet:       "Sheet1",
		Headers:     headers,
		Rows:        rows,
		Fingerprint: core.NewDatasetHash(headers, rawRows),
	}
}

func (g *ProcessGenerator) categoryFor(i int) string {
	if g.config.Categories <= 1 {
		return "A"
	}
	return fmt.Sprintf("%c", 'A'+i%g.config.Categories)
}
