package jobrunner

import (
	"github.com/google/uuid"

	"github.com/glyphlang/glyph/pkg/websocket"
)

// StatusEvent is broadcast to subscribed clients on every job-status
// transition.
type StatusEvent struct {
	JobID  uuid.UUID `json:"job_id"`
	Status Status    `json:"status"`
	Error  string    `json:"error,omitempty"`
}

// Notifier broadcasts job-status transitions over the shared WebSocket
// hub, reusing the teacher's existing connection/room plumbing rather
// than inventing a second pub/sub path.
type Notifier struct {
	hub *websocket.Hub
}

// NewNotifier wraps an already-running *websocket.Hub.
func NewNotifier(hub *websocket.Hub) *Notifier {
	return &Notifier{hub: hub}
}

// Notify broadcasts a status transition to every connected client. Errors
// broadcasting are swallowed: a client missing a status update is not a
// reason to fail the job itself.
func (n *Notifier) Notify(event StatusEvent) {
	if n == nil || n.hub == nil {
		return
	}
	_ = n.hub.BroadcastJSON(event)
}
