// Package decision holds the per-robot action model, the team-wide Decision,
// the continuity Table the search commits into, and the possession rules
// that decide who acts on the ball.
package decision

import (
	"fmt"

	"github.com/nstehr/pitch/pitch-core/geom"
)

// Kind tags the active Action variant.
type Kind int

const (
	None Kind = iota
	Move
	Kick
	Pass
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Move:
		return "move"
	case Kick:
		return "kick"
	case Pass:
		return "pass"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Action is one robot's order for a cycle. Exactly one variant is active;
// only its payload is meaningful, and the accessors report which one that is.
// The zero value is NoAction.
type Action struct {
	kind     Kind
	target   geom.Vector
	receiver int
}

func NoAction() Action                 { return Action{} }
func MoveTo(target geom.Vector) Action { return Action{kind: Move, target: target} }
func KickTo(target geom.Vector) Action { return Action{kind: Kick, target: target} }
func PassTo(receiver int) Action       { return Action{kind: Pass, receiver: receiver} }

func (a Action) Kind() Kind { return a.kind }

// Target returns the point a Move or Kick aims at.
func (a Action) Target() (geom.Vector, bool) {
	if a.kind != Move && a.kind != Kick {
		return geom.Vector{}, false
	}
	return a.target, true
}

// Receiver returns the robot index a Pass aims at.
func (a Action) Receiver() (int, bool) {
	if a.kind != Pass {
		return -1, false
	}
	return a.receiver, true
}

func (a Action) String() string {
	switch a.kind {
	case Move, Kick:
		return fmt.Sprintf("%s%v", a.kind, a.target)
	case Pass:
		return fmt.Sprintf("pass(%d)", a.receiver)
	default:
		return "none"
	}
}
