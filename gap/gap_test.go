package gap

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/nstehr/pitch/pitch-core/geom"
	"github.com/nstehr/pitch/pitch-core/model"
)

const eps = 1e-9

func farAway() model.WorldState {
	var s model.WorldState
	// Park every robot behind the viewpoint so none occludes by default.
	for i := range s.Robots {
		s.Robots[i] = geom.V(-4, float64(i)*0.3-1.5)
	}
	return s
}

func TestDiscoverOpenGoal(t *testing.T) {
	s := farAway()
	goal := model.Goal{X: 4.5, Width: 1}
	res := Discover(&s, geom.V(0, 0), goal, AllExcept(-1), Config{RobotRadius: 0.09, Ratio: 0.5})

	if len(res.Gaps) != 1 || res.Gaps[0] != (Interval{Lo: -0.5, Hi: 0.5}) {
		t.Fatalf("Gaps = %v, want the whole mouth", res.Gaps)
	}
	if math.Abs(res.Total()-1) > eps {
		t.Errorf("Total() = %f, want 1", res.Total())
	}
	want := 2 * math.Atan(0.5/4.5) * 180 / math.Pi
	if math.Abs(res.TotalAngle()-want) > 1e-6 || math.Abs(res.MaxAngle()-want) > 1e-6 {
		t.Errorf("angles = %f / %f, want %f", res.TotalAngle(), res.MaxAngle(), want)
	}
}

func TestDiscoverCentralOccluder(t *testing.T) {
	s := farAway()
	s.Robots[7] = geom.V(2, 0)
	goal := model.Goal{X: 4.5, Width: 1}
	res := Discover(&s, geom.V(0, 0), goal, []int{7}, Config{RobotRadius: 0.09})

	// Boundary lines run from the viewpoint through (2, ±0.09).
	edge := 0.09 * 4.5 / 2
	if len(res.Shadows) != 1 {
		t.Fatalf("Shadows = %v, want one", res.Shadows)
	}
	sh := res.Shadows[0]
	if math.Abs(sh.Hi-edge) > eps || math.Abs(sh.Lo+edge) > eps {
		t.Errorf("shadow = %v, want [%f, %f]", sh, -edge, edge)
	}
	if len(res.Gaps) != 2 {
		t.Fatalf("Gaps = %v, want two", res.Gaps)
	}
	if math.Abs(res.Gaps[0].Lo-edge) > eps || res.Gaps[0].Hi != 0.5 {
		t.Errorf("upper gap = %v", res.Gaps[0])
	}
	if math.Abs(res.Gaps[1].Hi+edge) > eps || res.Gaps[1].Lo != -0.5 {
		t.Errorf("lower gap = %v", res.Gaps[1])
	}
	big, ok := res.Largest()
	if !ok || math.Abs(big.Len()-(0.5-edge)) > eps {
		t.Errorf("Largest() = %v, %v", big, ok)
	}
}

func TestDiscoverSkipsNonOccluders(t *testing.T) {
	s := farAway()
	s.Robots[0] = geom.V(-1, 0)  // behind the viewpoint
	s.Robots[1] = geom.V(5, 0)   // past the goal line
	s.Robots[2] = geom.V(2, 2.5) // shadow lands far above the mouth
	goal := model.Goal{X: 4.5, Width: 1}
	res := Discover(&s, geom.V(0, 0), goal, []int{0, 1, 2}, Config{RobotRadius: 0.09})
	if len(res.Shadows) != 0 {
		t.Errorf("Shadows = %v, want none", res.Shadows)
	}
	if len(res.Gaps) != 1 {
		t.Errorf("Gaps = %v, want the whole mouth", res.Gaps)
	}
}

func TestDiscoverWideViewpointBand(t *testing.T) {
	s := farAway()
	s.Robots[7] = geom.V(1, 0)
	goal := model.Goal{X: 4.5, Width: 1}

	// The lines from (0, ±0.1) through (1, ±0.09) cross past the goal line.
	res := Discover(&s, geom.V(0, 0), goal, []int{7}, Config{RobotRadius: 0.09, Margin: 0.1})
	if len(res.Shadows) != 1 {
		t.Fatalf("Shadows = %v, want one", res.Shadows)
	}
	if sh := res.Shadows[0]; math.Abs(sh.Hi-0.055) > eps || math.Abs(sh.Lo+0.055) > eps {
		t.Errorf("shadow = %v, want [-0.055, 0.055]", sh)
	}

	// Wider still, the lines cross before the goal line: nothing is hidden.
	for _, m := range []float64{0.2, 0.3, 0.5} {
		res := Discover(&s, geom.V(0, 0), goal, []int{7}, Config{RobotRadius: 0.09, Margin: m})
		if len(res.Shadows) != 0 || len(res.Gaps) != 1 {
			t.Errorf("margin %.2f: shadows %v gaps %v, want the whole mouth open", m, res.Shadows, res.Gaps)
		}
	}

	prev := math.Inf(1)
	for _, m := range []float64{0, 0.05, 0.09, 0.1, 0.15, 0.2} {
		res := Discover(&s, geom.V(0, 0), goal, []int{7}, Config{RobotRadius: 0.09, Margin: m})
		width := 1 - res.Total()
		if width > prev+eps {
			t.Errorf("margin %.2f: shadow width %f grew from %f", m, width, prev)
		}
		prev = width
	}
}

func TestDiscoverSkipsAbsent(t *testing.T) {
	s := farAway()
	s.Robots[7] = geom.V(2, 0)
	s.Absent[7] = true
	res := Discover(&s, geom.V(0, 0), model.Goal{X: 4.5, Width: 1}, []int{7}, Config{RobotRadius: 0.09})
	if len(res.Shadows) != 0 {
		t.Errorf("Shadows = %v, absent robot should cast none", res.Shadows)
	}
}

func TestDiscoverOnGoalLine(t *testing.T) {
	s := farAway()
	res := Discover(&s, geom.V(4.5, 2), model.Goal{X: 4.5, Width: 1}, AllExcept(-1), Config{Ratio: 1})
	if len(res.Gaps) != 0 || res.Value() != 0 {
		t.Errorf("viewpoint on the goal line: gaps %v value %f", res.Gaps, res.Value())
	}
}

func TestMerge(t *testing.T) {
	in := []Interval{{0.1, 0.3}, {-0.2, 0}, {0.3, 0.4}, {0.15, 0.2}}
	got := merge(in)
	want := []Interval{{0.1, 0.4}, {-0.2, 0}}
	if len(got) != len(want) {
		t.Fatalf("merge = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("merge[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestValueBlend(t *testing.T) {
	s := farAway()
	s.Robots[7] = geom.V(2, 0.1)
	goal := model.Goal{X: 4.5, Width: 1}
	from := geom.V(0, 0)

	total := Discover(&s, from, goal, []int{7}, Config{RobotRadius: 0.09, Ratio: 1})
	largest := Discover(&s, from, goal, []int{7}, Config{RobotRadius: 0.09, Ratio: 0})
	half := Discover(&s, from, goal, []int{7}, Config{RobotRadius: 0.09, Ratio: 0.5})

	if math.Abs(total.Value()-total.TotalAngle()) > eps {
		t.Errorf("ratio 1: Value() = %f, want %f", total.Value(), total.TotalAngle())
	}
	if math.Abs(largest.Value()-largest.MaxAngle()) > eps {
		t.Errorf("ratio 0: Value() = %f, want %f", largest.Value(), largest.MaxAngle())
	}
	want := (half.TotalAngle() + half.MaxAngle()) / 2
	if math.Abs(half.Value()-want) > eps {
		t.Errorf("ratio 0.5: Value() = %f, want %f", half.Value(), want)
	}
	if total.MaxAngle() >= total.TotalAngle() {
		t.Errorf("two gaps: max %f should be below total %f", total.MaxAngle(), total.TotalAngle())
	}
}

// Gaps and merged shadows tile the goal mouth exactly, without overlap.
func TestDiscoverCompleteness(t *testing.T) {
	f := model.DefaultField()
	rng := rand.New(rand.NewSource(3))
	cfgs := []Config{
		{RobotRadius: f.RobotRadius},
		{RobotRadius: f.RobotRadius, Margin: f.BallRadius},
		{RobotRadius: 0.3, Margin: 0.05},
	}
	for n := 0; n < 200; n++ {
		s := model.RandomWorldState(rng, f)
		goal := f.EnemyGoal(model.Player(n % 2))
		res := Discover(&s, s.Ball, goal, AllExcept(-1), cfgs[n%len(cfgs)])

		all := append(append([]Interval{}, res.Gaps...), res.Shadows...)
		sort.Slice(all, func(i, j int) bool {
			if all[i].Hi != all[j].Hi {
				return all[i].Hi > all[j].Hi
			}
			return all[i].Lo > all[j].Lo
		})

		top := goal.Top()
		for _, iv := range all {
			if iv.Lo > iv.Hi {
				t.Fatalf("case %d: inverted interval %v", n, iv)
			}
			if math.Abs(iv.Hi-top) > eps {
				t.Fatalf("case %d: %v does not continue from %f (gaps %v shadows %v)", n, iv, top, res.Gaps, res.Shadows)
			}
			top = iv.Lo
		}
		if math.Abs(top-goal.Bottom()) > eps {
			t.Fatalf("case %d: cover stops at %f, want %f", n, top, goal.Bottom())
		}
	}
}

func TestOccluderLists(t *testing.T) {
	if got := Team(model.Max, 6); len(got) != model.TeamSize-1 {
		t.Errorf("Team(Max, 6) = %v", got)
	}
	for _, i := range Team(model.Max, 6) {
		if i == 6 || model.Owner(i) != model.Max {
			t.Errorf("Team(Max, 6) contains %d", i)
		}
	}
	if got := AllExcept(3); len(got) != model.RobotCount-1 {
		t.Errorf("AllExcept(3) = %v", got)
	}
}
