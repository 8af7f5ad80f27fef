// Package session owns the wizard's durable state: one project, one
// evidence bundle per category, and at most one aggregate per session.
package session

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/brandscope/internal/model"
)

// ErrNotFound is returned when a session id does not exist.
var ErrNotFound = eris.New("session not found")

// Store defines the persistence interface for wizard sessions. Sessions
// are written wholesale: the wizard owns the in-memory state and the
// store is its save/load boundary.
type Store interface {
	CreateSession(ctx context.Context, project model.Project) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	SaveSession(ctx context.Context, s *model.Session) error
	ListSessions(ctx context.Context, limit, offset int) ([]model.Session, error)
	DeleteSession(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Guard tracks the per-category in-flight flag for each session. A
// category can have at most one analysis running; there is no queue.
type Guard struct {
	mu       sync.Mutex
	inFlight map[string]bool
}

// NewGuard creates an empty Guard.
func NewGuard() *Guard {
	return &Guard{inFlight: make(map[string]bool)}
}

// Begin marks a category run as in flight. Returns false when a run for
// the same session and category is already in progress.
func (g *Guard) Begin(sessionID string, cat model.Category) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := sessionID + "/" + string(cat)
	if g.inFlight[key] {
		return false
	}
	g.inFlight[key] = true
	return true
}

// End clears the in-flight flag so the user may re-trigger manually.
func (g *Guard) End(sessionID string, cat model.Category) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, sessionID+"/"+string(cat))
}

// Running reports whether a run is in flight for the session and category.
func (g *Guard) Running(sessionID string, cat model.Category) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight[sessionID+"/"+string(cat)]
}
