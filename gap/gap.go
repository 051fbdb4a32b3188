// Package gap computes which parts of a goal mouth are visible from a point
// on the pitch. Every selected robot casts a shadow on the goal line; the
// gaps are what the merged shadows leave uncovered.
package gap

import (
	"math"
	"sort"

	"github.com/nstehr/pitch/pitch-core/geom"
	"github.com/nstehr/pitch/pitch-core/model"
)

// Interval is a closed stretch [Lo, Hi] of the goal line, in y coordinates.
type Interval struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

func (iv Interval) Len() float64 { return iv.Hi - iv.Lo }
func (iv Interval) Mid() float64 { return (iv.Lo + iv.Hi) / 2 }

// Config tunes the shadow model.
type Config struct {
	// RobotRadius is the occluder radius.
	RobotRadius float64
	// Margin is the half-width of the viewpoint band: the tangent lines start
	// this far either side of the viewpoint.
	Margin float64
	// Ratio blends total against largest gap angle in Value:
	// Ratio·total + (1-Ratio)·largest.
	Ratio float64
}

// Result is the visibility of one goal from one viewpoint.
type Result struct {
	From    geom.Vector
	Goal    model.Goal
	Gaps    []Interval // disjoint, ordered from the top post down
	Shadows []Interval // merged, disjoint, ordered from the top post down
	ratio   float64
}

// Team lists p's robots, except ignore (pass -1 to keep all).
func Team(p model.Player, ignore int) []int {
	out := make([]int, 0, model.TeamSize)
	for _, i := range p.Indices() {
		if i != ignore {
			out = append(out, i)
		}
	}
	return out
}

// AllExcept lists every robot on the pitch except ignore.
func AllExcept(ignore int) []int {
	out := make([]int, 0, model.RobotCount)
	for i := 0; i < model.RobotCount; i++ {
		if i != ignore {
			out = append(out, i)
		}
	}
	return out
}

// Discover computes the gaps on goal as seen from `from`, with the listed
// robots as occluders. Absent robots cast no shadow.
func Discover(s *model.WorldState, from geom.Vector, goal model.Goal, occluders []int, cfg Config) Result {
	res := Result{From: from, Goal: goal, ratio: cfg.Ratio}
	if goal.X == from.X {
		return res
	}

	shadows := make([]Interval, 0, len(occluders))
	for _, i := range occluders {
		if s.Absent[i] {
			continue
		}
		if sh, ok := shadow(from, s.Robots[i], goal, cfg); ok {
			shadows = append(shadows, sh)
		}
	}
	res.Shadows = merge(shadows)
	res.Gaps = complement(res.Shadows, goal)
	return res
}

// shadow projects the occluder at c onto the goal line. The two boundary
// lines run from the outer edges of the viewpoint band to the outer edges of
// the occluder on the same side. A band wider than the robot makes the lines
// converge behind it; if they cross before the goal line, some part of the
// band sees every point of the mouth and there is no shadow.
func shadow(from, c geom.Vector, goal model.Goal, cfg Config) (Interval, bool) {
	span := goal.X - from.X
	t := (c.X - from.X) / span
	if t <= 0 || t >= 1 {
		// Not between the viewpoint and the goal line.
		return Interval{}, false
	}
	if cfg.Margin > cfg.RobotRadius && t*cfg.Margin/(cfg.Margin-cfg.RobotRadius) <= 1 {
		return Interval{}, false
	}
	dir := c.Sub(from)
	if dir.IsZero() {
		return Interval{}, false
	}
	n := dir.Unit().Perp()

	var ys [2]float64
	for k, side := range [2]float64{1, -1} {
		p1 := from.Add(n.Scale(side * cfg.Margin))
		p2 := c.Add(n.Scale(side * cfg.RobotRadius))
		hit, ok := geom.IntersectVertical(p1, p2, goal.X)
		if !ok {
			return Interval{}, false
		}
		if hit.Sub(p1).Dot(p2.Sub(p1)) <= 0 {
			// The boundary line meets the goal line behind the viewpoint.
			return Interval{}, false
		}
		ys[k] = hit.Y
	}

	iv := Interval{Lo: math.Min(ys[0], ys[1]), Hi: math.Max(ys[0], ys[1])}
	if iv.Hi < goal.Bottom() || iv.Lo > goal.Top() {
		return Interval{}, false
	}
	iv.Lo = math.Max(iv.Lo, goal.Bottom())
	iv.Hi = math.Min(iv.Hi, goal.Top())
	return iv, true
}

// merge sorts shadows by descending upper bound (ties by descending lower
// bound) and fuses overlapping or touching ones in a single sweep.
func merge(shadows []Interval) []Interval {
	if len(shadows) == 0 {
		return nil
	}
	sort.Slice(shadows, func(i, j int) bool {
		if shadows[i].Hi != shadows[j].Hi {
			return shadows[i].Hi > shadows[j].Hi
		}
		return shadows[i].Lo > shadows[j].Lo
	})

	out := make([]Interval, 0, len(shadows))
	cur := shadows[0]
	for _, sh := range shadows[1:] {
		if sh.Hi >= cur.Lo {
			cur.Lo = math.Min(cur.Lo, sh.Lo)
			continue
		}
		out = append(out, cur)
		cur = sh
	}
	return append(out, cur)
}

// complement walks the merged shadows from the top post to the bottom post
// and collects the uncovered stretches.
func complement(merged []Interval, goal model.Goal) []Interval {
	var gaps []Interval
	top := goal.Top()
	for _, sh := range merged {
		if top > sh.Hi {
			gaps = append(gaps, Interval{Lo: sh.Hi, Hi: top})
		}
		top = math.Min(top, sh.Lo)
	}
	if top > goal.Bottom() {
		gaps = append(gaps, Interval{Lo: goal.Bottom(), Hi: top})
	}
	return gaps
}

// Total is the summed length of all gaps.
func (r Result) Total() float64 {
	sum := 0.0
	for _, g := range r.Gaps {
		sum += g.Len()
	}
	return sum
}

// Largest returns the longest gap. ok is false when the goal is fully covered.
func (r Result) Largest() (Interval, bool) {
	best, ok := Interval{}, false
	for _, g := range r.Gaps {
		if !ok || g.Len() > best.Len() {
			best, ok = g, true
		}
	}
	return best, ok
}

// angle is the angle, in degrees, that iv subtends at the viewpoint.
func (r Result) angle(iv Interval) float64 {
	dx := r.Goal.X - r.From.X
	a := geom.Vector{X: dx, Y: iv.Hi - r.From.Y}
	b := geom.Vector{X: dx, Y: iv.Lo - r.From.Y}
	return math.Atan2(math.Abs(a.Cross(b)), a.Dot(b)) * 180 / math.Pi
}

// TotalAngle sums the angles subtended by every gap.
func (r Result) TotalAngle() float64 {
	sum := 0.0
	for _, g := range r.Gaps {
		sum += r.angle(g)
	}
	return sum
}

// MaxAngle is the largest angle subtended by a single gap.
func (r Result) MaxAngle() float64 {
	best := 0.0
	for _, g := range r.Gaps {
		best = math.Max(best, r.angle(g))
	}
	return best
}

// Value blends total and largest gap angle, in degrees.
func (r Result) Value() float64 {
	return r.ratio*r.TotalAngle() + (1-r.ratio)*r.MaxAngle()
}
