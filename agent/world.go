package agent

import (
	"sync"

	"github.com/nstehr/pitch/pitch-core/model"
)

// World holds the latest perceived state. Readers get copies; the decision
// loop never works on the shared value.
type World struct {
	mu    sync.RWMutex
	state model.WorldState
	tick  int
	has   bool
}

// Publish replaces the current state.
func (w *World) Publish(s model.WorldState, tick int) {
	w.mu.Lock()
	w.state = s
	w.tick = tick
	w.has = true
	w.mu.Unlock()
}

// Snapshot copies out the current state. ok is false before the first
// Publish.
func (w *World) Snapshot() (s model.WorldState, tick int, ok bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state, w.tick, w.has
}

// Modify edits the current state in place under the lock. It reports false,
// without calling fn, when there is no state yet.
func (w *World) Modify(fn func(s *model.WorldState)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.has {
		return false
	}
	fn(&w.state)
	return true
}
