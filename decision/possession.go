package decision

import (
	"math"

	"github.com/nstehr/pitch/pitch-core/geom"
	"github.com/nstehr/pitch/pitch-core/model"
)

// RobotWithBall returns the robot, of either side, that can reach the ball
// first. Ties go to the lowest index. Absent robots take no part. It returns
// -1 when no robot can reach the ball at all.
func RobotWithBall(s *model.WorldState, f model.Field) int {
	return RobotWithBallIgnoring(s, f, -1)
}

// RobotWithBallIgnoring is RobotWithBall with one robot left out of the race.
func RobotWithBallIgnoring(s *model.WorldState, f model.Field, ignore int) int {
	best, bestT := -1, math.Inf(1)
	for i := 0; i < model.RobotCount; i++ {
		if i == ignore || s.Absent[i] {
			continue
		}
		t := geom.TimeToIntercept(s.Robots[i], s.RobotVels[i], s.Ball, s.BallVel, f.RobotMaxSpeed)
		if t < bestT {
			best, bestT = i, t
		}
	}
	return best
}

// Attacker reports which side currently has the ball.
func Attacker(s *model.WorldState, f model.Field) (model.Player, bool) {
	i := RobotWithBall(s, f)
	if i < 0 {
		return model.Min, false
	}
	return model.Owner(i), true
}

// DiscoverPossibleReceivers lists the teammates of kicker that would win the
// race to a ball kicked toward their committed Move target. The kicker takes
// part neither as receiver nor as competitor.
func DiscoverPossibleReceivers(s *model.WorldState, t *Table, kicker int, f model.Field) []int {
	var out []int
	for _, j := range s.Active(model.Owner(kicker)) {
		if j == kicker {
			continue
		}
		target, ok := t.MoveTarget(j)
		if !ok {
			target = s.Robots[j]
		}
		virtual := *s
		virtual.BallVel = target.Sub(s.Ball).Unit().Scale(f.KickSpeed)
		if RobotWithBallIgnoring(&virtual, f, kicker) == j {
			out = append(out, j)
		}
	}
	return out
}
