package decision

import (
	"github.com/nstehr/pitch/pitch-core/geom"
	"github.com/nstehr/pitch/pitch-core/model"
)

// ApplyToState returns the world one step after d is carried out. Moves are
// applied first, then the Kick or Pass, so a pass lands next to where the
// receiver is heading. Every acting robot and the ball end the step at rest.
func ApplyToState(s model.WorldState, d Decision, f model.Field) model.WorldState {
	ball := s.Ball
	for k, a := range d.Actions {
		if a.Kind() != Move {
			continue
		}
		i := d.Robot(k)
		s.Robots[i], _ = a.Target()
		s.RobotVels[i] = geom.Vector{}
	}

	for k, a := range d.Actions {
		i := d.Robot(k)
		switch a.Kind() {
		case Kick:
			s.Robots[i] = ball
			s.RobotVels[i] = geom.Vector{}
			s.Ball, _ = a.Target()
			s.BallVel = geom.Vector{}
		case Pass:
			r, _ := a.Receiver()
			s.Robots[i] = ball
			s.RobotVels[i] = geom.Vector{}
			s.Ball = receivePoint(s.Robots[r], ball, f)
			s.BallVel = geom.Vector{}
		}
	}
	return s
}

// receivePoint is where a passed ball comes to rest: just outside the
// receiver, on the side facing where the ball came from.
func receivePoint(receiver, from geom.Vector, f model.Field) geom.Vector {
	dir := from.Sub(receiver).Unit()
	if dir.IsZero() {
		dir = geom.Vector{X: 1}
	}
	return receiver.Add(dir.Scale(f.RobotRadius + f.BallRadius))
}
