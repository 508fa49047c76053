package ingestion

import (
	"fmt"

	"gospc/domain/core"
)

// Value represents a typed cell value with deterministic coercion
type Value struct {
	Type       ValueType `json:"type"`
	StringVal  *string   `json:"string_val,omitempty"`
	NumericVal *float64  `json:"numeric_val,omitempty"`
	IsMissing  bool      `json:"is_missing"`
}

// ValueType defines the storage type for cell values
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeNumeric ValueType = "numeric"
	ValueTypeMissing ValueType = "missing"
)

// NewStringValue creates a string value
func NewStringValue(s string) Value {
	if s == "" {
		return Value{Type: ValueTypeMissing, IsMissing: true}
	}
	return Value{Type: ValueTypeString, StringVal: &s}
}

// NewNumericValue creates a numeric value
func NewNumericValue(n float64) Value {
	return Value{Type: ValueTypeNumeric, NumericVal: &n}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing, IsMissing: true}
}

// IsNumeric returns true if the value represents a valid number
func (v Value) IsNumeric() bool {
	return v.Type == ValueTypeNumeric && v.NumericVal != nil
}

// Float64 returns the numeric value and whether one is present
func (v Value) Float64() (float64, bool) {
	if !v.IsNumeric() {
		return 0, false
	}
	return *v.NumericVal, true
}

// String returns the display representation of the value
func (v Value) String() string {
	switch v.Type {
	case ValueTypeString:
		if v.StringVal != nil {
			return *v.StringVal
		}
	case ValueTypeNumeric:
		if v.NumericVal != nil {
			return fmt.Sprintf("%g", *v.NumericVal)
		}
	case ValueTypeMissing:
		return "<missing>"
	}
	return "<invalid>"
}

// RowRecord maps column name to the raw cell string as read from the sheet.
// Columns absent in a sparse row are simply not present in the map.
type RowRecord map[string]string

// Get returns the raw cell value and whether the column is present in the row
func (r RowRecord) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Table is an ordered set of row records under a fixed header list. Row order
// is the sheet's original order and is load-bearing: the moving-range
// estimator downstream reads it as production order.
type Table struct {
	ID          core.DatasetID   `json:"id"`
	Source      string           `json:"source"`
	Sheet       string           `json:"sheet"`
	Headers     []string         `json:"headers"`
	Rows        []RowRecord      `json:"rows"`
	Fingerprint core.DatasetHash `json:"fingerprint"`
}

// SheetInfo describes one worksheet in a loaded workbook
type SheetInfo struct {
	Name     string `json:"name"`
	Index    int    `json:"index"`
	RowCount int    `json:"row_count"`
}

// HasColumn reports whether the header list contains the named column
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Column extracts the raw cells of one column in row order. Missing cells are
// returned as empty strings so positions stay aligned with row indices.
func (t *Table) Column(name string) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i], _ = row.Get(name)
	}
	return out
}
