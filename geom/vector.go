package geom

import (
	"fmt"
	"math"
	"math/rand"
)

// Vector is an immutable 2D point or direction in field coordinates (metres).
type Vector struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func V(x, y float64) Vector { return Vector{X: x, Y: y} }

func (a Vector) Add(b Vector) Vector    { return Vector{a.X + b.X, a.Y + b.Y} }
func (a Vector) Sub(b Vector) Vector    { return Vector{a.X - b.X, a.Y - b.Y} }
func (a Vector) Scale(s float64) Vector { return Vector{a.X * s, a.Y * s} }
func (a Vector) Dot(b Vector) float64   { return a.X*b.X + a.Y*b.Y }
func (a Vector) Cross(b Vector) float64 { return a.X*b.Y - a.Y*b.X }
func (a Vector) Norm2() float64         { return a.X*a.X + a.Y*a.Y }
func (a Vector) Norm() float64          { return math.Hypot(a.X, a.Y) }
func (a Vector) Dist(b Vector) float64  { return a.Sub(b).Norm() }
func (a Vector) Dist2(b Vector) float64 { return a.Sub(b).Norm2() }
func (a Vector) Perp() Vector           { return Vector{-a.Y, a.X} }
func (a Vector) Angle() float64         { return math.Atan2(a.Y, a.X) }
func (a Vector) IsZero() bool           { return a.X == 0 && a.Y == 0 }
func (a Vector) Equal(b Vector) bool    { return a.X == b.X && a.Y == b.Y }
func (a Vector) String() string         { return fmt.Sprintf("(%.3f, %.3f)", a.X, a.Y) }

// Near reports whether a and b are within eps of each other.
func (a Vector) Near(b Vector, eps float64) bool {
	return a.Dist2(b) <= eps*eps
}

// Unit returns a of length one. The zero vector has no direction, so it is
// returned unchanged; callers that need a real direction must guard.
func (a Vector) Unit() Vector {
	n := a.Norm()
	if n == 0 {
		return a
	}
	return Vector{a.X / n, a.Y / n}
}

// UniformRandomVector samples uniformly from [-rx, rx] x [-ry, ry].
func UniformRandomVector(rng *rand.Rand, rx, ry float64) Vector {
	return Vector{
		X: (rng.Float64()*2 - 1) * rx,
		Y: (rng.Float64()*2 - 1) * ry,
	}
}

// NormalRandomVector samples each axis from N(center, sigma²).
func NormalRandomVector(rng *rand.Rand, center Vector, sigma float64) Vector {
	return Vector{
		X: center.X + rng.NormFloat64()*sigma,
		Y: center.Y + rng.NormFloat64()*sigma,
	}
}
