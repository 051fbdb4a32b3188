package search

import (
	"github.com/dhconnelly/rtreego"

	"github.com/nstehr/pitch/pitch-core/geom"
	"github.com/nstehr/pitch/pitch-core/model"
)

// body is one robot footprint in the occupancy index.
type body struct {
	index int
	pos   geom.Vector
	rect  rtreego.Rect
}

func (b *body) Bounds() rtreego.Rect { return b.rect }

// Occupancy indexes the robots' current positions for the move generator's
// collision checks. It is built once per cycle and read-only afterwards.
type Occupancy struct {
	tree   *rtreego.Rtree
	radius float64
}

// NewOccupancy indexes every robot present in s as a circle of the given
// radius.
func NewOccupancy(s *model.WorldState, radius float64) *Occupancy {
	spatials := make([]rtreego.Spatial, 0, model.RobotCount)
	for i, r := range s.Robots {
		if s.Absent[i] {
			continue
		}
		spatials = append(spatials, &body{index: i, pos: r, rect: rtreego.Point{r.X, r.Y}.ToRect(radius)})
	}
	return &Occupancy{tree: rtreego.NewTree(2, 2, 5, spatials...), radius: radius}
}

// Blocked reports whether a robot centred on pt would overlap any indexed
// robot other than ignore.
func (o *Occupancy) Blocked(pt geom.Vector, ignore int) bool {
	reach := 2 * o.radius
	hits := o.tree.SearchIntersect(rtreego.Point{pt.X, pt.Y}.ToRect(o.radius))
	for _, h := range hits {
		b := h.(*body)
		if b.index != ignore && b.pos.Dist(pt) < reach {
			return true
		}
	}
	return false
}
