package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"gospc/domain/analysis"
	"gospc/domain/core"
	apperrors "gospc/internal/errors"
	"gospc/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS saved_analyses (
	session_id   TEXT PRIMARY KEY,
	name         TEXT NOT NULL DEFAULT '',
	state        JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
)`

// SessionRepositoryImpl implements ports.SessionRepository for PostgreSQL.
// The full analysis state is stored as one JSONB document keyed by session ID.
type SessionRepositoryImpl struct {
	db *sqlx.DB
}

// NewSessionRepository creates a PostgreSQL session repository and ensures
// its table exists.
func NewSessionRepository(db *sqlx.DB) (ports.SessionRepository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, apperrors.Wrap(err, "failed to create saved_analyses table")
	}
	return &SessionRepositoryImpl{db: db}, nil
}

// Save upserts the analysis state keyed by its session ID
func (r *SessionRepositoryImpl) Save(ctx context.Context, state *analysis.State) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal analysis state")
	}

	query := `
		INSERT INTO saved_analyses (session_id, name, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE SET
			name = EXCLUDED.name,
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		state.SessionID.String(),
		state.Name,
		stateJSON,
		state.CreatedAt.Time(),
		time.Now().UTC(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to save analysis state")
	}
	return nil
}

// Get retrieves a saved analysis state by session ID
func (r *SessionRepositoryImpl) Get(ctx context.Context, id core.SessionID) (*analysis.State, error) {
	var stateJSON []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT state FROM saved_analyses WHERE session_id = $1`,
		id.String(),
	).Scan(&stateJSON)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("saved analysis")
		}
		return nil, apperrors.Wrap(err, "failed to get analysis state")
	}

	var state analysis.State
	if err := json.Unmarshal(stateJSON, &state); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal analysis state")
	}
	return &state, nil
}

// List returns all saved analysis states, most recently updated first
func (r *SessionRepositoryImpl) List(ctx context.Context) ([]*analysis.State, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT state FROM saved_analyses ORDER BY updated_at DESC`)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list saved analyses")
	}
	defer rows.Close()

	var states []*analysis.State
	for rows.Next() {
		var stateJSON []byte
		if err := rows.Scan(&stateJSON); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan analysis state")
		}
		var state analysis.State
		if err := json.Unmarshal(stateJSON, &state); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal analysis state")
		}
		states = append(states, &state)
	}
	return states, rows.Err()
}

// Delete removes a saved analysis. Deleting a missing row is not an error.
func (r *SessionRepositoryImpl) Delete(ctx context.Context, id core.SessionID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM saved_analyses WHERE session_id = $1`, id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to delete analysis state")
	}
	return nil
}
