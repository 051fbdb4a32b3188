package model

import (
	"math/rand"

	"github.com/nstehr/pitch/pitch-core/geom"
)

// TeamSize is the number of robots per side. Robots are addressed by a flat
// index in [0, RobotCount): indices below TeamSize belong to Min, the rest to Max.
const (
	TeamSize   = 5
	RobotCount = 2 * TeamSize
)

// Player identifies a side.
type Player int

const (
	Min Player = iota
	Max
)

func (p Player) String() string {
	switch p {
	case Min:
		return "min"
	case Max:
		return "max"
	default:
		return "unknown"
	}
}

// Enemy returns the opposing side.
func (p Player) Enemy() Player {
	if p == Min {
		return Max
	}
	return Min
}

// Range returns the half-open index range [lo, hi) of p's robots.
func (p Player) Range() (lo, hi int) {
	if p == Min {
		return 0, TeamSize
	}
	return TeamSize, RobotCount
}

// Indices lists p's robot indices in ascending order.
func (p Player) Indices() []int {
	lo, hi := p.Range()
	out := make([]int, 0, TeamSize)
	for i := lo; i < hi; i++ {
		out = append(out, i)
	}
	return out
}

// Owner returns the side robot i plays for.
func Owner(i int) Player {
	if i < TeamSize {
		return Min
	}
	return Max
}

// Local maps a global robot index to its slot within its team.
func Local(i int) int { return i % TeamSize }

// ParsePlayer accepts "min" or "max".
func ParsePlayer(s string) (Player, bool) {
	switch s {
	case "min":
		return Min, true
	case "max":
		return Max, true
	}
	return Min, false
}

// WorldState is one instant of the match. It is a plain value: assigning it
// copies every array, so a snapshot can be handed to another goroutine.
type WorldState struct {
	Ball      geom.Vector             `json:"ball"`
	BallVel   geom.Vector             `json:"ballVel"`
	Robots    [RobotCount]geom.Vector `json:"robots"`
	RobotVels [RobotCount]geom.Vector `json:"robotVels"`
	// Absent marks slots the vision feed reported no robot for. Absent robots
	// are left out of possession, occlusion and planning.
	Absent [RobotCount]bool `json:"absent"`
}

// Present reports whether robot i is on the pitch.
func (s *WorldState) Present(i int) bool { return !s.Absent[i] }

// Active lists p's robots that are on the pitch, in index order.
func (s *WorldState) Active(p Player) []int {
	out := make([]int, 0, TeamSize)
	for _, i := range p.Indices() {
		if !s.Absent[i] {
			out = append(out, i)
		}
	}
	return out
}

// RandomWorldState scatters the ball and every robot uniformly over the field,
// at rest. Used for simulation and tests.
func RandomWorldState(rng *rand.Rand, f Field) WorldState {
	var s WorldState
	hx, hy := f.Length/2, f.Width/2
	s.Ball = geom.UniformRandomVector(rng, hx, hy)
	for i := range s.Robots {
		s.Robots[i] = geom.UniformRandomVector(rng, hx, hy)
	}
	return s
}
