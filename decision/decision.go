package decision

import (
	"fmt"
	"strings"

	"github.com/nstehr/pitch/pitch-core/geom"
	"github.com/nstehr/pitch/pitch-core/model"
)

// Decision is what one side does this cycle: one Action per robot, indexed
// by global robot index modulo the team size.
type Decision struct {
	Player  model.Player
	Actions [model.TeamSize]Action
}

func New(p model.Player) Decision { return Decision{Player: p} }

// At returns the action of global robot i.
func (d Decision) At(i int) Action { return d.Actions[model.Local(i)] }

// Set assigns the action of global robot i.
func (d *Decision) Set(i int, a Action) { d.Actions[model.Local(i)] = a }

// Robot maps a team slot back to its global index.
func (d Decision) Robot(slot int) int {
	lo, _ := d.Player.Range()
	return lo + slot
}

func (d Decision) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[", d.Player)
	for k, a := range d.Actions {
		if k > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%d:%s", d.Robot(k), a)
	}
	b.WriteString("]")
	return b.String()
}

// Valued is a scored Decision, with the per-term breakdown of its value.
type Valued struct {
	Decision
	Value float64
	Terms []float64
}

// Table is a side's last committed Decision, kept across cycles as the
// continuity baseline. Moves holds the last committed Move of each robot;
// the ball owner's Kick or Pass lives in its own slot, with -1 as the robot
// index when nothing is committed.
type Table struct {
	Player    model.Player
	Moves     [model.TeamSize]Action
	KickRobot int
	Kick      Action
	PassRobot int
	Pass      Action
	seeded    bool
}

func NewTable(p model.Player) *Table {
	return &Table{Player: p, KickRobot: -1, PassRobot: -1}
}

func (t *Table) Seeded() bool { return t.seeded }

// Seed sets every committed Move to the robot's current position, so the
// first baseline is "stay put". Absent robots get no Move. It is a no-op once
// seeded.
func (t *Table) Seed(s *model.WorldState) {
	if t.seeded {
		return
	}
	lo, hi := t.Player.Range()
	for i := lo; i < hi; i++ {
		if s.Absent[i] {
			continue
		}
		t.Moves[model.Local(i)] = MoveTo(s.Robots[i])
	}
	t.seeded = true
}

// Reset forgets everything committed, e.g. after the id table was rebuilt.
func (t *Table) Reset() {
	*t = *NewTable(t.Player)
}

// MoveTarget returns the committed Move target of global robot i.
func (t *Table) MoveTarget(i int) (geom.Vector, bool) {
	return t.Moves[model.Local(i)].Target()
}

// Decision rebuilds the committed table as a Decision: every robot gets its
// Move, except the robots holding the committed Kick or Pass.
func (t *Table) Decision() Decision {
	d := New(t.Player)
	d.Actions = t.Moves
	if t.KickRobot >= 0 {
		d.Set(t.KickRobot, t.Kick)
	}
	if t.PassRobot >= 0 {
		d.Set(t.PassRobot, t.Pass)
	}
	return d
}

// Commit stores a winning Decision, split by action kind. Robots given None
// keep their previous Move.
func (t *Table) Commit(d Decision) {
	t.KickRobot, t.Kick = -1, NoAction()
	t.PassRobot, t.Pass = -1, NoAction()
	for k, a := range d.Actions {
		i := d.Robot(k)
		switch a.Kind() {
		case Move:
			t.Moves[k] = a
		case Kick:
			t.KickRobot, t.Kick = i, a
		case Pass:
			t.PassRobot, t.Pass = i, a
		}
	}
	t.seeded = true
}
