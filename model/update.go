package model

import (
	"fmt"

	"github.com/nstehr/pitch/pitch-core/geom"
)

// WorldUpdate is one perception frame as the vision feed reports it.
type WorldUpdate struct {
	Tick int           `json:"tick"`
	Ball BallRecord    `json:"ball"`
	Min  []RobotRecord `json:"min"`
	Max  []RobotRecord `json:"max"`
}

type BallRecord struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

type RobotRecord struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

func (r RobotRecord) Pos() geom.Vector { return geom.Vector{X: r.X, Y: r.Y} }
func (r RobotRecord) Vel() geom.Vector { return geom.Vector{X: r.VX, Y: r.VY} }

// Side returns the records reported for p.
func (u WorldUpdate) Side(p Player) []RobotRecord {
	if p == Min {
		return u.Min
	}
	return u.Max
}

// IDTable maps the feed's robot ids to engine indices, per side. Ids are
// assigned slots in the order they are first seen. When the roster changes
// the table is rebuilt from scratch, so indices are not guaranteed stable
// across roster changes.
type IDTable struct {
	ids [RobotCount]int
	set [RobotCount]bool
}

// Index returns the engine index for external id on side p.
func (t *IDTable) Index(p Player, id int) (int, bool) {
	lo, hi := p.Range()
	for i := lo; i < hi; i++ {
		if t.set[i] && t.ids[i] == id {
			return i, true
		}
	}
	return -1, false
}

// ID returns the external id assigned to engine index i.
func (t *IDTable) ID(i int) (int, bool) {
	if i < 0 || i >= RobotCount || !t.set[i] {
		return 0, false
	}
	return t.ids[i], true
}

// matches reports whether recs is exactly the roster currently held for p.
func (t *IDTable) matches(p Player, recs []RobotRecord) bool {
	lo, hi := p.Range()
	n := 0
	for i := lo; i < hi; i++ {
		if t.set[i] {
			n++
		}
	}
	if n != len(recs) {
		return false
	}
	for _, r := range recs {
		if _, ok := t.Index(p, r.ID); !ok {
			return false
		}
	}
	return true
}

func (t *IDTable) rebuild(p Player, recs []RobotRecord) {
	lo, hi := p.Range()
	for i := lo; i < hi; i++ {
		t.set[i] = false
		t.ids[i] = 0
	}
	for k, r := range recs {
		t.ids[lo+k] = r.ID
		t.set[lo+k] = true
	}
}

// Apply converts a perception frame into a WorldState, updating the id table
// when a side's roster changed. Slots without a reported robot are marked
// Absent. Both sides are validated before the table is touched, so a rejected
// frame leaves it unchanged. The returned bool reports whether the table was
// rebuilt for either side.
func (t *IDTable) Apply(u WorldUpdate) (WorldState, bool, error) {
	for _, p := range []Player{Min, Max} {
		if err := validate(p, u.Side(p)); err != nil {
			return WorldState{}, false, err
		}
	}

	var s WorldState
	s.Ball = geom.Vector{X: u.Ball.X, Y: u.Ball.Y}
	s.BallVel = geom.Vector{X: u.Ball.VX, Y: u.Ball.VY}

	rebuilt := false
	for _, p := range []Player{Min, Max} {
		recs := u.Side(p)
		if !t.matches(p, recs) {
			t.rebuild(p, recs)
			rebuilt = true
		}
		for _, r := range recs {
			i, _ := t.Index(p, r.ID)
			s.Robots[i] = r.Pos()
			s.RobotVels[i] = r.Vel()
		}
	}
	for i := range s.Absent {
		s.Absent[i] = !t.set[i]
	}
	return s, rebuilt, nil
}

func validate(p Player, recs []RobotRecord) error {
	if len(recs) > TeamSize {
		return fmt.Errorf("side %s reports %d robots, team size is %d", p, len(recs), TeamSize)
	}
	seen := make(map[int]bool, len(recs))
	for _, r := range recs {
		if seen[r.ID] {
			return fmt.Errorf("side %s reports robot id %d twice", p, r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}
