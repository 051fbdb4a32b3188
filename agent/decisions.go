package agent

import (
	"sync"
	"time"

	"github.com/nstehr/pitch/pitch-core/model"
	"github.com/nstehr/pitch/pitch-core/search"
)

// Published is a committed decision as the rest of the process sees it.
type Published struct {
	search.Result
	Tick      int
	Group     string
	State     model.WorldState // state the decision was made on
	Committed time.Time
}

// Decisions holds the latest published decision of each side.
type Decisions struct {
	mu     sync.RWMutex
	latest [2]*Published
}

func (d *Decisions) Publish(p Published) {
	d.mu.Lock()
	d.latest[p.Player] = &p
	d.mu.Unlock()
}

// Latest returns a copy of the newest decision for side p.
func (d *Decisions) Latest(p model.Player) (Published, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.latest[p] == nil {
		return Published{}, false
	}
	return *d.latest[p], true
}

// Clear drops both sides' decisions, e.g. when robot indices were remapped.
func (d *Decisions) Clear() {
	d.mu.Lock()
	d.latest = [2]*Published{}
	d.mu.Unlock()
}
