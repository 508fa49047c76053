package coercer

import (
	"math"
	"strconv"
	"strings"

	"gospc/domain/ingestion"
)

// NumberCoercer converts heterogeneous raw cell values into numeric values or
// an explicit missing marker. Unparseable text is never silently mapped to 0:
// zero is a legitimate measurement, so downstream filtering must be able to
// tell "no value" from "value of zero".
type NumberCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the punctuation stripped before numeric parsing
type CoercionConfig struct {
	CurrencySymbols []string `json:"currency_symbols"` // Stripped before parsing
	GroupSeparators []string `json:"group_separators"` // Thousands separators stripped before parsing
}

// DefaultCoercionConfig returns the symbols spreadsheet exports commonly carry
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		CurrencySymbols: []string{"$", "€", "£", "¥", "%"},
		GroupSeparators: []string{",", " "},
	}
}

// NewNumberCoercer creates a coercer with the given config
func NewNumberCoercer(config CoercionConfig) *NumberCoercer {
	return &NumberCoercer{config: config}
}

// CoerceNumber deterministically converts a raw cell value to a numeric
// ingestion.Value, or a missing value when no finite number can be produced.
//
// Already-numeric inputs pass through unchanged with no re-parsing or
// rounding. Strings get currency symbols and grouping punctuation stripped,
// then a decimal parse with optional sign, decimal point and exponent.
func (c *NumberCoercer) CoerceNumber(raw interface{}) ingestion.Value {
	if raw == nil {
		return ingestion.NewMissingValue()
	}

	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ingestion.NewMissingValue()
		}
		return ingestion.NewNumericValue(v)
	case float32:
		return c.CoerceNumber(float64(v))
	case int:
		return ingestion.NewNumericValue(float64(v))
	case int32:
		return ingestion.NewNumericValue(float64(v))
	case int64:
		return ingestion.NewNumericValue(float64(v))
	case string:
		if n, ok := c.parseNumeric(v); ok {
			return ingestion.NewNumericValue(n)
		}
		return ingestion.NewMissingValue()
	default:
		// Booleans, timestamps and anything exotic are not measurements
		return ingestion.NewMissingValue()
	}
}

// CoerceValue converts a raw cell to its best typed value: numeric when it
// parses as a number, categorical string otherwise, missing when blank.
// Category filter columns go through this instead of CoerceNumber.
func (c *NumberCoercer) CoerceValue(raw interface{}) ingestion.Value {
	if raw == nil {
		return ingestion.NewMissingValue()
	}

	if v := c.CoerceNumber(raw); v.IsNumeric() {
		return v
	}

	if s, ok := raw.(string); ok {
		return ingestion.NewStringValue(strings.TrimSpace(s))
	}
	return ingestion.NewMissingValue()
}

// parseNumeric strips display formatting and parses a decimal number
func (c *NumberCoercer) parseNumeric(raw string) (float64, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return 0, false
	}

	// Accounting exports write negatives as (123.45)
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range c.config.CurrencySymbols {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	for _, sep := range c.config.GroupSeparators {
		cleanVal = strings.ReplaceAll(cleanVal, sep, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	// ParseFloat handles sign, decimal point and exponent notation
	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val, true
}
