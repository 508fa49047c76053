package ports

import (
	"gospc/domain/core"
)

// EventPublisher pushes recompute notifications to live consumers. The app
// layer publishes; the SSE hub fans out.
type EventPublisher interface {
	Publish(sessionID core.SessionID, eventType string, payload interface{})
}
