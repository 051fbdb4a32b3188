package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// detEpsilon is the smallest determinant treated as a proper intersection.
// Below it the two lines are considered parallel.
const detEpsilon = 1e-12

// LineSegmentCrossesCircle reports whether the line from p1 toward p2 passes
// within radius of center. Only the near side is cut off: a circle wholly
// behind p1 does not count, but one past p2 is measured by its perpendicular
// distance to the line.
func LineSegmentCrossesCircle(p1, p2, center Vector, radius float64) bool {
	seg := p2.Sub(p1)
	w := center.Sub(p1)
	l2 := seg.Norm2()
	if l2 == 0 {
		return w.Norm2() <= radius*radius
	}

	t := math.Max(w.Dot(seg)/l2, 0)
	closest := p1.Add(seg.Scale(t))
	return closest.Dist2(center) <= radius*radius
}

// line is a·x + b·y = k.
type line struct {
	a, b, k float64
}

func lineThrough(p, q Vector) (line, bool) {
	dir := q.Sub(p)
	if dir.IsZero() {
		return line{}, false
	}
	n := dir.Perp()
	return line{a: n.X, b: n.Y, k: n.Dot(p)}, true
}

// IntersectLines returns the point where the infinite line through a1,a2
// meets the infinite line through b1,b2. ok is false when either pair of
// points coincides or the lines are parallel (including identical).
func IntersectLines(a1, a2, b1, b2 Vector) (Vector, bool) {
	l1, ok := lineThrough(a1, a2)
	if !ok {
		return Vector{}, false
	}
	l2, ok := lineThrough(b1, b2)
	if !ok {
		return Vector{}, false
	}
	return solve(l1, l2)
}

// IntersectVertical returns where the line through p,q crosses x = x0.
func IntersectVertical(p, q Vector, x0 float64) (Vector, bool) {
	l, ok := lineThrough(p, q)
	if !ok {
		return Vector{}, false
	}
	return solve(l, line{a: 1, b: 0, k: x0})
}

func solve(l1, l2 line) (Vector, bool) {
	// Axis-aligned rows solve directly; this keeps the common goal-line case
	// exact and avoids dividing by a tiny pivot.
	if l2.b == 0 && l2.a != 0 {
		if l1.b == 0 {
			return Vector{}, false
		}
		x := l2.k / l2.a
		return Vector{X: x, Y: (l1.k - l1.a*x) / l1.b}, true
	}
	if l1.b == 0 && l1.a != 0 {
		return solve(l2, l1)
	}

	m := mgl64.Mat2{l1.a, l2.a, l1.b, l2.b}
	det := m.Det()
	if math.Abs(det) < detEpsilon {
		return Vector{}, false
	}
	r := m.Inv().Mul2x1(mgl64.Vec2{l1.k, l2.k})
	return Vector{X: r[0], Y: r[1]}, true
}
