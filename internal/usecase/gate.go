package usecase

import (
	"sync"

	"github.com/google/uuid"
)

// awaitingGate allows at most one completion call in flight per session.
// Completion calls bill tokens remotely, so a duplicate submission must be
// rejected up front rather than assumed harmless.
type awaitingGate struct {
	mu      sync.Mutex
	pending map[uuid.UUID]bool
}

func newAwaitingGate() *awaitingGate {
	return &awaitingGate{
		pending: make(map[uuid.UUID]bool),
	}
}

func (g *awaitingGate) begin(sessionID uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending[sessionID] {
		return false
	}
	g.pending[sessionID] = true
	return true
}

func (g *awaitingGate) end(sessionID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, sessionID)
}

func (g *awaitingGate) awaiting(sessionID uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending[sessionID]
}
