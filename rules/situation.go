package rules

import (
	"math"

	"github.com/nstehr/pitch/pitch-core/decision"
	"github.com/nstehr/pitch/pitch-core/model"
)

// Situation summarises the match from one side's point of view. It is the
// environment parameter-group conditions run against, so its exported fields
// and methods are the vocabulary available to a `when` expression.
// Coordinates are mirrored so that +x always points at the enemy goal.
type Situation struct {
	Side        string
	HasBall     bool // one of our robots reaches the ball first
	Loose       bool // nobody can reach the ball
	BallX       float64
	BallY       float64
	BallSpeed   float64
	FieldLength float64
	FieldWidth  float64

	// Distances from the ball to the nearest robot of each side.
	MateDistance  float64
	EnemyDistance float64

	BallInOwnArea   bool
	BallInEnemyArea bool
}

// NewSituation builds p's view of s.
func NewSituation(p model.Player, s *model.WorldState, f model.Field) Situation {
	sign := 1.0
	if p == model.Max {
		sign = -1
	}
	owner := decision.RobotWithBall(s, f)
	return Situation{
		Side:            p.String(),
		HasBall:         owner >= 0 && model.Owner(owner) == p,
		Loose:           owner < 0,
		BallX:           sign * s.Ball.X,
		BallY:           s.Ball.Y,
		BallSpeed:       s.BallVel.Norm(),
		FieldLength:     f.Length,
		FieldWidth:      f.Width,
		MateDistance:    nearest(s, p),
		EnemyDistance:   nearest(s, p.Enemy()),
		BallInOwnArea:   f.InOwnDefenseArea(p, s.Ball),
		BallInEnemyArea: f.InOwnDefenseArea(p.Enemy(), s.Ball),
	}
}

func nearest(s *model.WorldState, p model.Player) float64 {
	best := math.Inf(1)
	for _, i := range s.Active(p) {
		best = math.Min(best, s.Robots[i].Dist(s.Ball))
	}
	return best
}

func (s Situation) OwnThird() bool    { return s.BallX < -s.FieldLength/6 }
func (s Situation) MiddleThird() bool { return !s.OwnThird() && !s.EnemyThird() }
func (s Situation) EnemyThird() bool  { return s.BallX > s.FieldLength/6 }

// Pressed reports whether an enemy is within r metres of the ball.
func (s Situation) Pressed(r float64) bool { return s.EnemyDistance < r }

// Wide reports whether the ball is further than frac of the half-width from
// the centre line.
func (s Situation) Wide(frac float64) bool { return math.Abs(s.BallY) > frac*s.FieldWidth/2 }
