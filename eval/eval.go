// Package eval scores a candidate Decision by the world it leads to.
package eval

import (
	"math"

	"github.com/nstehr/pitch/pitch-core/decision"
	"github.com/nstehr/pitch/pitch-core/gap"
	"github.com/nstehr/pitch/pitch-core/model"
	"github.com/nstehr/pitch/pitch-core/rules"
)

// Term indexes one weighted contribution to a value.
type Term int

const (
	BallGap Term = iota
	BlockAttacker
	TeammateGap
	PenalZone
	EnemyGap
	TotalMove
	MaxMove
	MoveChange
	PassChange
	KickChange
	NumTerms
)

var termNames = [NumTerms]string{
	"ball_gap",
	"block_attacker",
	"teammate_gap",
	"penal_zone",
	"enemy_gap",
	"total_move",
	"max_move",
	"move_change",
	"pass_change",
	"kick_change",
}

func (t Term) String() string {
	if t < 0 || t >= NumTerms {
		return "unknown"
	}
	return termNames[t]
}

// Terms is the per-term breakdown of a value. Bonuses are positive,
// penalties negative; the value is their sum.
type Terms [NumTerms]float64

func (ts Terms) Sum() float64 {
	sum := 0.0
	for _, v := range ts {
		sum += v
	}
	return sum
}

// Named maps term names to contributions, for logs and the decision log.
func (ts Terms) Named() map[string]float64 { return NamedValues(ts[:]) }

// NamedValues is Named for a term slice, as carried by decision.Valued.
func NamedValues(vals []float64) map[string]float64 {
	out := make(map[string]float64, len(vals))
	for t, v := range vals {
		out[Term(t).String()] = v
	}
	return out
}

// Evaluator scores decisions on one field.
type Evaluator struct {
	Field model.Field
}

func New(f model.Field) *Evaluator {
	return &Evaluator{Field: f}
}

// Evaluate applies d to a copy of s and scores the result for p. The table
// is the continuity baseline the change penalties compare against. Neither
// s, the table nor the params are modified.
func (e *Evaluator) Evaluate(p model.Player, s *model.WorldState, d decision.Decision, tbl *decision.Table, prm rules.Params) (float64, Terms) {
	f := e.Field
	next := decision.ApplyToState(*s, d, f)
	cfg := gap.Config{RobotRadius: f.RobotRadius, Margin: prm.ViewMargin, Ratio: prm.GapRatio}
	own, enemyGoal := f.OwnGoal(p), f.EnemyGoal(p)

	var ts Terms
	owner := decision.RobotWithBall(&next, f)
	if owner >= 0 && model.Owner(owner) == p {
		g := gap.Discover(&next, next.Ball, enemyGoal, gap.Team(p.Enemy(), -1), cfg)
		ts[BallGap] = prm.BallGapWeight * g.Value()
	} else {
		g := gap.Discover(&next, next.Ball, own, gap.Team(p, -1), cfg)
		ts[BlockAttacker] = -prm.BlockAttackerWeight * g.Value()
	}

	for _, i := range next.Active(p) {
		if i == owner {
			continue
		}
		g := gap.Discover(&next, next.Robots[i], enemyGoal, gap.Team(p.Enemy(), -1), cfg)
		ts[TeammateGap] += prm.TeammateGapWeight * g.Value()
		if next.Robots[i].Dist(enemyGoal.Center()) < prm.PenalDistance {
			ts[PenalZone] -= prm.PenalWeight
		}
	}

	for _, j := range next.Active(p.Enemy()) {
		g := gap.Discover(&next, next.Robots[j], own, gap.Team(p, -1), cfg)
		ts[EnemyGap] -= prm.EnemyGapWeight * g.Value()
	}

	total, longest, drift := 0.0, 0.0, 0.0
	for k, a := range d.Actions {
		if a.Kind() != decision.Move {
			continue
		}
		target, _ := a.Target()
		i := d.Robot(k)
		dist := target.Dist(s.Robots[i])
		total += dist
		longest = math.Max(longest, dist)
		if committed, ok := tbl.MoveTarget(i); ok {
			drift += target.Dist(committed)
		}
	}
	ts[TotalMove] = -prm.TotalMoveWeight * total
	ts[MaxMove] = -prm.MaxMoveWeight * longest
	ts[MoveChange] = -prm.MoveChangeWeight * drift

	ts[PassChange], ts[KickChange] = changeCost(d, tbl, prm)
	return ts.Sum(), ts
}

// changeCost penalises a Kick or Pass that departs from the committed one.
// Switching receivers, or giving up a committed pass for a kick, costs the
// flat pass-change weight; moving a committed kick target costs the
// kick-change weight per metre.
func changeCost(d decision.Decision, tbl *decision.Table, prm rules.Params) (pass, kick float64) {
	for k, a := range d.Actions {
		i := d.Robot(k)
		switch a.Kind() {
		case decision.Pass:
			r, _ := a.Receiver()
			committed, had := tbl.Pass.Receiver()
			if tbl.KickRobot >= 0 || (tbl.PassRobot >= 0 && (!had || tbl.PassRobot != i || committed != r)) {
				pass -= prm.PassChangeWeight
			}
		case decision.Kick:
			target, _ := a.Target()
			if prev, ok := tbl.Kick.Target(); ok && tbl.KickRobot >= 0 {
				kick -= prm.KickChangeWeight * target.Dist(prev)
			} else if tbl.PassRobot >= 0 {
				pass -= prm.PassChangeWeight
			}
		}
	}
	return pass, kick
}
