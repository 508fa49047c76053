package app

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"gospc/adapters/coercer"
	"gospc/domain/analysis"
	"gospc/domain/core"
	"gospc/domain/ingestion"
	"gospc/domain/spc"
	"gospc/internal"
	"gospc/internal/errors"
	"gospc/internal/profiling"
	"gospc/ports"
)

// EventSnapshotUpdated is published after every successful recompute
const EventSnapshotUpdated = "snapshot_updated"

// Snapshot is the complete computed output for one analysis state. It is
// immutable: every state change builds a fresh snapshot and swaps it in
// wholesale, so the trend chart, the distribution chart and the summary
// display always observe one consistent set of numbers.
type Snapshot struct {
	SessionID    core.SessionID         `json:"session_id"`
	DatasetID    core.DatasetID         `json:"dataset_id,omitempty"`
	Fingerprint  core.DatasetHash       `json:"fingerprint,omitempty"`
	State        analysis.State         `json:"state"`
	Stats        spc.StatisticsResult   `json:"stats"`
	Values       []float64              `json:"values"`
	Excluded     int                    `json:"excluded"`
	Trend        []analysis.TrendPoint  `json:"trend"`
	Distribution profiling.Distribution `json:"distribution"`
	ComputedAt   core.Timestamp         `json:"computed_at"`
}

type session struct {
	state    analysis.State
	table    *ingestion.Table
	snapshot *Snapshot
}

// AnalysisService owns analysis sessions and implements the
// recompute-on-change contract: every mutation synchronously replaces the
// session's snapshot and notifies live consumers. The compute path itself is
// pure; the service only serializes state changes.
type AnalysisService struct {
	mu        sync.RWMutex
	sessions  map[core.SessionID]*session
	coercer   *coercer.NumberCoercer
	repo      ports.SessionRepository // nil when persistence is disabled
	publisher ports.EventPublisher    // nil when nobody listens
	logger    *internal.Logger
}

// NewAnalysisService creates the service. repo and publisher may be nil.
func NewAnalysisService(repo ports.SessionRepository, publisher ports.EventPublisher) *AnalysisService {
	return &AnalysisService{
		sessions:  make(map[core.SessionID]*session),
		coercer:   coercer.NewNumberCoercer(coercer.DefaultCoercionConfig()),
		repo:      repo,
		publisher: publisher,
		logger:    internal.DefaultLogger,
	}
}

// CreateSession starts an empty analysis session
func (s *AnalysisService) CreateSession(name string) *Snapshot {
	id := core.SessionID(core.NewID())
	now := core.Now()

	sess := &session{
		state: analysis.State{
			SessionID: id,
			Name:      name,
			Specs:     spc.NoSpecLimits(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	sess.snapshot = s.compute(sess)

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.Info("Created analysis session %s (%q)", id, name)
	return sess.snapshot
}

// LoadTable attaches a table read from the given reader to the session and
// recomputes. Axis choices that no longer match the new headers are cleared.
func (s *AnalysisService) LoadTable(id core.SessionID, reader ports.TableReader, sheet string) (*Snapshot, error) {
	table, err := reader.ReadTable(sheet)
	if err != nil {
		return nil, errors.IngestFailed("failed to read table", err)
	}

	return s.mutate(id, func(sess *session) error {
		sess.table = table
		sess.state.Source = table.Source
		sess.state.Sheet = table.Sheet
		if sess.state.ValueColumn != "" && !table.HasColumn(sess.state.ValueColumn) {
			sess.state.ValueColumn = ""
		}
		if sess.state.CategoryColumn != "" && !table.HasColumn(sess.state.CategoryColumn) {
			sess.state.CategoryColumn = ""
			sess.state.FilterValues = nil
		}
		return nil
	})
}

// SetAxes designates the value column and the optional category column
func (s *AnalysisService) SetAxes(id core.SessionID, valueColumn, categoryColumn string) (*Snapshot, error) {
	return s.mutate(id, func(sess *session) error {
		if sess.table == nil {
			return errors.InvalidInput("no table loaded")
		}
		if valueColumn != "" && !sess.table.HasColumn(valueColumn) {
			return errors.InvalidInput("unknown value column: " + valueColumn)
		}
		if categoryColumn != "" && !sess.table.HasColumn(categoryColumn) {
			return errors.InvalidInput("unknown category column: " + categoryColumn)
		}
		sess.state.ValueColumn = valueColumn
		if sess.state.CategoryColumn != categoryColumn {
			// Filter values belong to the previous category column
			sess.state.FilterValues = nil
		}
		sess.state.CategoryColumn = categoryColumn
		return nil
	})
}

// SetFilter narrows the observation set to rows whose category value is in
// values. An empty list clears the filter. Filtering never reorders rows.
func (s *AnalysisService) SetFilter(id core.SessionID, values []string) (*Snapshot, error) {
	return s.mutate(id, func(sess *session) error {
		if len(values) > 0 && sess.state.CategoryColumn == "" {
			return errors.InvalidInput("no category column designated")
		}
		sess.state.FilterValues = values
		return nil
	})
}

// SetSpecLimits replaces the specification triple
func (s *AnalysisService) SetSpecLimits(id core.SessionID, specs spc.SpecLimits) (*Snapshot, error) {
	return s.mutate(id, func(sess *session) error {
		sess.state.Specs = specs
		return nil
	})
}

// Snapshot returns the session's current snapshot
func (s *AnalysisService) Snapshot(id core.SessionID) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NotFound("session")
	}
	return sess.snapshot, nil
}

// CategoryValues lists the distinct values of the category column in first-
// occurrence order, for the filter dropdown.
func (s *AnalysisService) CategoryValues(id core.SessionID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NotFound("session")
	}
	if sess.table == nil || sess.state.CategoryColumn == "" {
		return nil, nil
	}

	seen := make(map[string]bool)
	var values []string
	for _, raw := range sess.table.Column(sess.state.CategoryColumn) {
		if raw == "" || seen[raw] {
			continue
		}
		seen[raw] = true
		values = append(values, raw)
	}
	return values, nil
}

// Columns returns the loaded table's header list
func (s *AnalysisService) Columns(id core.SessionID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NotFound("session")
	}
	if sess.table == nil {
		return nil, nil
	}
	return sess.table.Headers, nil
}

// ProfileColumns profiles every column of the loaded table concurrently.
// Columns whose cells never coerce to numbers come back with SampleSize 0.
func (s *AnalysisService) ProfileColumns(ctx context.Context, id core.SessionID) (map[string]profiling.ColumnProfile, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.RUnlock()
		return nil, errors.NotFound("session")
	}
	table := sess.table
	s.mu.RUnlock()

	if table == nil {
		return nil, errors.InvalidInput("no table loaded")
	}

	profiles := make([]profiling.ColumnProfile, len(table.Headers))
	g, ctx := errgroup.WithContext(ctx)
	for i, header := range table.Headers {
		i, header := i, header
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			values, excluded := s.coerceColumn(table, header)
			profile, err := profiling.Profile(header, values, excluded)
			if err != nil {
				return errors.Wrapf(err, "failed to profile column %q", header)
			}
			profiles[i] = profile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]profiling.ColumnProfile, len(profiles))
	for _, p := range profiles {
		result[p.Column] = p
	}
	return result, nil
}

// SaveState persists the session's current state through the repository
func (s *AnalysisService) SaveState(ctx context.Context, id core.SessionID) error {
	if s.repo == nil {
		return errors.InvalidInput("persistence is not configured")
	}

	s.mu.RLock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.RUnlock()
		return errors.NotFound("session")
	}
	state := sess.state
	s.mu.RUnlock()

	return s.repo.Save(ctx, &state)
}

// RestoreState loads a saved state, re-reads its source through reader, and
// reapplies the saved axes, filter and spec limits.
func (s *AnalysisService) RestoreState(ctx context.Context, id core.SessionID, reader ports.TableReader) (*Snapshot, error) {
	if s.repo == nil {
		return nil, errors.InvalidInput("persistence is not configured")
	}

	saved, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	table, err := reader.ReadTable(saved.Sheet)
	if err != nil {
		return nil, errors.IngestFailed("failed to re-read saved source", err)
	}

	sess := &session{state: *saved, table: table}
	sess.snapshot = s.compute(sess)

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.publish(sess.snapshot)
	return sess.snapshot, nil
}

// mutate applies fn to the session under the lock, recomputes the snapshot
// and publishes the update. State is untouched when fn fails.
func (s *AnalysisService) mutate(id core.SessionID, fn func(*session) error) (*Snapshot, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, errors.NotFound("session")
	}

	prior := sess.state
	if err := fn(sess); err != nil {
		sess.state = prior
		s.mu.Unlock()
		return nil, err
	}
	sess.state.UpdatedAt = core.Now()
	sess.snapshot = s.compute(sess)
	snapshot := sess.snapshot
	s.mu.Unlock()

	s.publish(snapshot)
	return snapshot, nil
}

// compute builds a fresh snapshot from the session's table and state
func (s *AnalysisService) compute(sess *session) *Snapshot {
	snapshot := &Snapshot{
		SessionID:  sess.state.SessionID,
		State:      sess.state,
		ComputedAt: core.Now(),
	}

	if sess.table == nil || sess.state.ValueColumn == "" {
		snapshot.Stats = spc.ComputeStatistics(nil, sess.state.Specs)
		return snapshot
	}

	snapshot.DatasetID = sess.table.ID
	snapshot.Fingerprint = sess.table.Fingerprint

	values, trend, excluded := s.observationSequence(sess)
	snapshot.Values = values
	snapshot.Trend = trend
	snapshot.Excluded = excluded
	snapshot.Stats = spc.ComputeStatistics(values, sess.state.Specs)
	snapshot.Distribution = profiling.BuildDistribution(
		values, snapshot.Stats.Mean, snapshot.Stats.StdevOverall, profiling.DefaultBinCount)

	return snapshot
}

// observationSequence extracts the filtered numeric sequence in row order.
// The moving-range estimator downstream depends on this order, so rows are
// only ever skipped, never rearranged.
func (s *AnalysisService) observationSequence(sess *session) ([]float64, []analysis.TrendPoint, int) {
	var values []float64
	var trend []analysis.TrendPoint
	excluded := 0

	for _, row := range sess.table.Rows {
		category := ""
		if sess.state.CategoryColumn != "" {
			category, _ = row.Get(sess.state.CategoryColumn)
			if !sess.state.FilterAllows(category) {
				continue
			}
		}

		raw, _ := row.Get(sess.state.ValueColumn)
		v := s.coercer.CoerceNumber(raw)
		n, ok := v.Float64()
		if !ok {
			excluded++
			continue
		}

		trend = append(trend, analysis.TrendPoint{Index: len(values), Value: n, Label: category})
		values = append(values, n)
	}

	return values, trend, excluded
}

// coerceColumn extracts one column's coerced numeric sequence
func (s *AnalysisService) coerceColumn(table *ingestion.Table, column string) ([]float64, int) {
	var values []float64
	excluded := 0
	for _, raw := range table.Column(column) {
		if n, ok := s.coercer.CoerceNumber(raw).Float64(); ok {
			values = append(values, n)
		} else {
			excluded++
		}
	}
	return values, excluded
}

func (s *AnalysisService) publish(snapshot *Snapshot) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(snapshot.SessionID, EventSnapshotUpdated, snapshot)
}
