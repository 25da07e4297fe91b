package history

import (
	"context"
	"time"

	"accsetup/internal/setup"
)

// Kinds of Record.
const (
	KindGenerate = "generate"
	KindRefine   = "refine"
)

// Record is one setup produced on a session: the initial generation
// (revision 1, no feedback) or a refinement.
type Record struct {
	SessionID string      `json:"sessionId"`
	Revision  int         `json:"revision"`
	Kind      string      `json:"kind"`
	Car       string      `json:"car"`
	Track     string      `json:"track"`
	Style     string      `json:"style"`
	Feedback  string      `json:"feedback,omitempty"`
	Setup     setup.Setup `json:"setup"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Store keeps the setups produced per session.
type Store interface {
	Append(ctx context.Context, rec Record) error
	List(ctx context.Context, sessionID string) ([]Record, error)
}
