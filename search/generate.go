package search

import (
	"math/rand"

	"github.com/nstehr/pitch/pitch-core/decision"
	"github.com/nstehr/pitch/pitch-core/gap"
	"github.com/nstehr/pitch/pitch-core/geom"
	"github.com/nstehr/pitch/pitch-core/model"
	"github.com/nstehr/pitch/pitch-core/rules"
)

// generator produces single actions for one side during one cycle. Every
// random draw comes from rng.
type generator struct {
	player model.Player
	field  model.Field
	prm    rules.Params
	rng    *rand.Rand
	state  *model.WorldState
	table  *decision.Table
	occ    *Occupancy
	owner  int // robot with the ball, either side, -1 if none
}

func (g *generator) gapConfig() gap.Config {
	return gap.Config{RobotRadius: g.field.RobotRadius, Margin: g.prm.ViewMargin, Ratio: g.prm.GapRatio}
}

// genMove draws random targets around robot i until one is acceptable, up to
// MaxMoveRetries times. A target must stay on the pitch, keep out of the
// defense areas (the ball handler excepted), keep clear of the ball, and not
// overlap any robot's current position or any teammate's target in d.
// Exhausting the retries yields NoAction.
func (g *generator) genMove(i int, d *decision.Decision) decision.Action {
	f := g.field
	origin := g.state.Robots[i]
	for rep := 0; rep < g.prm.MaxMoveRetries; rep++ {
		r := g.prm.MoveRadii[g.rng.Intn(len(g.prm.MoveRadii))]
		target := origin.Add(geom.UniformRandomVector(g.rng, r, r))
		if g.acceptMove(i, target, d, f) {
			return decision.MoveTo(target)
		}
	}
	return decision.NoAction()
}

func (g *generator) acceptMove(i int, target geom.Vector, d *decision.Decision, f model.Field) bool {
	if !f.Contains(target) {
		return false
	}
	if i != g.owner {
		if f.InDefenseArea(target) {
			return false
		}
		if target.Dist(g.state.Ball) < g.prm.BallClearance {
			return false
		}
	}
	if g.occ.Blocked(target, i) {
		return false
	}
	reach := 2 * f.RobotRadius
	for k, a := range d.Actions {
		j := d.Robot(k)
		if j == i || a.Kind() != decision.Move {
			continue
		}
		if other, _ := a.Target(); other.Dist(target) < reach {
			return false
		}
	}
	return true
}

// genKick aims at the middle of the largest gap in the enemy goal as seen
// from the ball, with every robot but the kicker as an occluder. With the
// mouth fully covered it aims at the goal centre.
func (g *generator) genKick(i int) decision.Action {
	goal := g.field.EnemyGoal(g.player)
	res := gap.Discover(g.state, g.state.Ball, goal, gap.AllExcept(i), g.gapConfig())
	if big, ok := res.Largest(); ok {
		return decision.KickTo(geom.Vector{X: goal.X, Y: big.Mid()})
	}
	return decision.KickTo(goal.Center())
}

// genPass picks a random possible receiver. With none available it falls
// back to a kick or a move, per PreferKick.
func (g *generator) genPass(i int, d *decision.Decision) decision.Action {
	receivers := decision.DiscoverPossibleReceivers(g.state, g.table, i, g.field)
	if len(receivers) > 0 {
		return decision.PassTo(receivers[g.rng.Intn(len(receivers))])
	}
	if g.prm.PreferKick {
		return g.genKick(i)
	}
	return g.genMove(i, d)
}

// genPrimary decides what the ball handler does. A clear shot is always
// taken when PreferKick is set and taken half the time otherwise; everything
// else is a pass attempt.
func (g *generator) genPrimary(i int, d *decision.Decision, canKick bool) decision.Action {
	if canKick && (g.prm.PreferKick || g.rng.Intn(2) == 0) {
		return g.genKick(i)
	}
	return g.genPass(i, d)
}

// canKickDirectly reports whether the largest gap in the enemy goal, seen
// from the ball past the enemy robots only, is wider than MinKickAngle.
func (g *generator) canKickDirectly() bool {
	goal := g.field.EnemyGoal(g.player)
	res := gap.Discover(g.state, g.state.Ball, goal, gap.Team(g.player.Enemy(), -1), g.gapConfig())
	return res.MaxAngle() > g.prm.MinKickAngle
}
