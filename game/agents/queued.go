package agents

import (
	"sync"

	"github.com/wricardo/fogquest/game/engine"
)

// Queued plays the directions pushed into it, oldest first.
// Deciding with an empty queue yields no direction, which the engine rejects.
type Queued struct {
	name string

	mu      sync.Mutex
	pending []engine.Direction
}

// NewQueued creates an agent driven from outside the engine
func NewQueued(name string) *Queued {
	return &Queued{name: name}
}

func (a *Queued) Name() string { return a.name }

// Push appends directions to the queue
func (a *Queued) Push(dirs ...engine.Direction) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = append(a.pending, dirs...)
}

// Pending returns how many directions are waiting
func (a *Queued) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Clear drops every waiting direction
func (a *Queued) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = nil
}

func (a *Queued) Decide(engine.Observation) engine.Direction {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.pending) == 0 {
		return ""
	}
	dir := a.pending[0]
	a.pending = a.pending[1:]
	return dir
}
