package model

import (
	"math"

	"github.com/nstehr/pitch/pitch-core/geom"
)

// Field carries the pitch geometry and the physical constants the engine
// assumes for every robot. The origin is the centre spot; Min defends the
// goal at x = -Length/2 and attacks the one at x = +Length/2.
type Field struct {
	Length        float64 `json:"length"`
	Width         float64 `json:"width"`
	GoalWidth     float64 `json:"goalWidth"`
	DefenseDepth  float64 `json:"defenseDepth"` // no-entry area, measured from the goal line
	DefenseWidth  float64 `json:"defenseWidth"` // no-entry area, across the pitch
	RobotRadius   float64 `json:"robotRadius"`
	BallRadius    float64 `json:"ballRadius"`
	RobotMaxSpeed float64 `json:"robotMaxSpeed"` // m/s
	KickSpeed     float64 `json:"kickSpeed"`     // m/s
}

// DefaultField is a small-size pitch.
func DefaultField() Field {
	return Field{
		Length:        9.0,
		Width:         6.0,
		GoalWidth:     1.0,
		DefenseDepth:  1.0,
		DefenseWidth:  2.0,
		RobotRadius:   0.09,
		BallRadius:    0.0215,
		RobotMaxSpeed: 2.0,
		KickSpeed:     5.0,
	}
}

// Valid reports whether every dimension is usable. A zero-value Field
// (e.g. an omitted hello payload) is not.
func (f Field) Valid() bool {
	return f.Length > 0 && f.Width > 0 && f.GoalWidth > 0 &&
		f.RobotRadius > 0 && f.BallRadius >= 0 && f.RobotMaxSpeed > 0 && f.KickSpeed > 0
}

// Goal is a goal mouth on the vertical line x = X, centred on y = 0.
type Goal struct {
	X     float64
	Width float64
}

func (g Goal) Center() geom.Vector { return geom.Vector{X: g.X} }
func (g Goal) Top() float64        { return g.Width / 2 }
func (g Goal) Bottom() float64     { return -g.Width / 2 }

// OwnGoal is the goal p defends.
func (f Field) OwnGoal(p Player) Goal {
	if p == Min {
		return Goal{X: -f.Length / 2, Width: f.GoalWidth}
	}
	return Goal{X: f.Length / 2, Width: f.GoalWidth}
}

// EnemyGoal is the goal p attacks.
func (f Field) EnemyGoal(p Player) Goal {
	return f.OwnGoal(p.Enemy())
}

// Contains reports whether pt lies on the pitch (boundary included).
func (f Field) Contains(pt geom.Vector) bool {
	return math.Abs(pt.X) <= f.Length/2 && math.Abs(pt.Y) <= f.Width/2
}

// InDefenseArea reports whether pt lies inside either no-entry area.
func (f Field) InDefenseArea(pt geom.Vector) bool {
	if math.Abs(pt.Y) > f.DefenseWidth/2 {
		return false
	}
	return math.Abs(pt.X) >= f.Length/2-f.DefenseDepth
}

// InOwnDefenseArea reports whether pt lies inside the area p defends.
func (f Field) InOwnDefenseArea(p Player, pt geom.Vector) bool {
	if !f.InDefenseArea(pt) {
		return false
	}
	return (pt.X < 0) == (p == Min)
}
