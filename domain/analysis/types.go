package analysis

import (
	"gospc/domain/core"
	"gospc/domain/spc"
)

// State captures every user choice that drives a recomputation: data source,
// axis designation, category filter and specification limits. It is what gets
// persisted when an analysis is saved.
type State struct {
	SessionID      core.SessionID `json:"session_id"`
	Name           string         `json:"name"`
	Source         string         `json:"source"`
	Sheet          string         `json:"sheet"`
	ValueColumn    string         `json:"value_column"`
	CategoryColumn string         `json:"category_column"`
	FilterValues   []string       `json:"filter_values"`
	Specs          spc.SpecLimits `json:"specs"`
	CreatedAt      core.Timestamp `json:"created_at"`
	UpdatedAt      core.Timestamp `json:"updated_at"`
}

// FilterAllows reports whether a row's category value passes the filter.
// An empty filter list admits every row.
func (s *State) FilterAllows(category string) bool {
	if len(s.FilterValues) == 0 {
		return true
	}
	for _, v := range s.FilterValues {
		if v == category {
			return true
		}
	}
	return false
}

// TrendPoint is one observation on the trend chart, indexed by its position
// in the filtered sequence. Label carries the category value when one is set.
type TrendPoint struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
}
