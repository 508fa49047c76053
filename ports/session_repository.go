package ports

import (
	"context"

	"gospc/domain/analysis"
	"gospc/domain/core"
)

// SessionRepository persists saved analysis states. Implementations must
// treat Save as an upsert keyed by session ID.
type SessionRepository interface {
	Save(ctx context.Context, state *analysis.State) error
	Get(ctx context.Context, id core.SessionID) (*analysis.State, error)
	List(ctx context.Context) ([]*analysis.State, error)
	Delete(ctx context.Context, id core.SessionID) error
}
