package decision

import (
	"math"
	"math/rand"
	"testing"

	"github.com/nstehr/pitch/pitch-core/geom"
	"github.com/nstehr/pitch/pitch-core/model"
)

// parked returns a state with every robot at rest on the left touchline.
func parked() model.WorldState {
	var s model.WorldState
	for i := range s.Robots {
		s.Robots[i] = geom.V(-4, float64(i)*0.25-1.2)
	}
	return s
}

func TestActionVariants(t *testing.T) {
	if NoAction().Kind() != None {
		t.Error("zero action should be None")
	}
	m := MoveTo(geom.V(1, 2))
	if p, ok := m.Target(); !ok || p != geom.V(1, 2) {
		t.Errorf("MoveTo target = %v, %v", p, ok)
	}
	if _, ok := m.Receiver(); ok {
		t.Error("Move should not have a receiver")
	}
	p := PassTo(3)
	if r, ok := p.Receiver(); !ok || r != 3 {
		t.Errorf("PassTo receiver = %d, %v", r, ok)
	}
	if _, ok := p.Target(); ok {
		t.Error("Pass should not have a target")
	}
}

func TestApplyMoveRoundTrip(t *testing.T) {
	f := model.DefaultField()
	rng := rand.New(rand.NewSource(5))
	for rep := 0; rep < 20; rep++ {
		s := model.RandomWorldState(rng, f)
		d := New(model.Max)
		targets := map[int]geom.Vector{}
		for _, i := range model.Max.Indices() {
			targets[i] = geom.UniformRandomVector(rng, f.Length/2, f.Width/2)
			d.Set(i, MoveTo(targets[i]))
		}
		next := ApplyToState(s, d, f)
		for i, want := range targets {
			if next.Robots[i] != want {
				t.Errorf("robot %d at %v, want %v", i, next.Robots[i], want)
			}
		}
		for _, i := range model.Min.Indices() {
			if next.Robots[i] != s.Robots[i] {
				t.Errorf("robot %d of the other side moved", i)
			}
		}
	}
}

func TestApplyKick(t *testing.T) {
	f := model.DefaultField()
	s := parked()
	s.Ball = geom.V(0.5, 0)
	d := New(model.Min)
	d.Set(2, KickTo(geom.V(4.5, 0.2)))

	next := ApplyToState(s, d, f)
	if next.Robots[2] != geom.V(0.5, 0) {
		t.Errorf("kicker at %v, want the old ball position", next.Robots[2])
	}
	if next.Ball != geom.V(4.5, 0.2) || !next.BallVel.IsZero() {
		t.Errorf("ball at %v vel %v", next.Ball, next.BallVel)
	}
}

func TestApplyPass(t *testing.T) {
	f := model.DefaultField()
	s := parked()
	s.Ball = geom.V(0, 0)
	d := New(model.Min)
	d.Set(0, PassTo(1))
	d.Set(1, MoveTo(geom.V(2, 0)))

	next := ApplyToState(s, d, f)
	want := geom.V(2-f.RobotRadius-f.BallRadius, 0)
	if !next.Ball.Near(want, 1e-12) {
		t.Errorf("ball at %v, want %v", next.Ball, want)
	}
	if next.Robots[0] != geom.V(0, 0) {
		t.Errorf("passer at %v", next.Robots[0])
	}
}

// After a kick at rest, possession goes to whoever is nearest the target.
func TestKickThenPossession(t *testing.T) {
	f := model.DefaultField()
	rng := rand.New(rand.NewSource(9))
	for rep := 0; rep < 50; rep++ {
		s := model.RandomWorldState(rng, f)
		kicker := RobotWithBall(&s, f)
		d := New(model.Owner(kicker))
		target := geom.UniformRandomVector(rng, f.Length/2, f.Width/2)
		d.Set(kicker, KickTo(target))
		next := ApplyToState(s, d, f)

		nearest, best := -1, math.Inf(1)
		for i, r := range next.Robots {
			if dist := r.Dist(target); dist < best {
				nearest, best = i, dist
			}
		}
		got := RobotWithBall(&next, f)
		if got != nearest {
			t.Errorf("RobotWithBall = %d, want nearest %d", got, nearest)
		}
	}
}

func TestRobotWithBallSingle(t *testing.T) {
	f := model.DefaultField()
	s := parked()
	s.Robots[0] = geom.V(0, 0)
	s.Ball = geom.V(0.5, 0)
	if got := RobotWithBall(&s, f); got != 0 {
		t.Errorf("RobotWithBall = %d, want 0", got)
	}
}

func TestRobotWithBallIdempotent(t *testing.T) {
	f := model.DefaultField()
	rng := rand.New(rand.NewSource(13))
	for rep := 0; rep < 30; rep++ {
		s := model.RandomWorldState(rng, f)
		s.BallVel = geom.NormalRandomVector(rng, geom.Vector{}, 1)
		first := RobotWithBall(&s, f)
		for rep := 0; rep < 3; rep++ {
			if got := RobotWithBall(&s, f); got != first {
				t.Fatalf("RobotWithBall changed from %d to %d", first, got)
			}
		}
	}
}

func TestRobotWithBallTieLowestIndex(t *testing.T) {
	f := model.DefaultField()
	s := parked()
	s.Robots[3] = geom.V(1, 0)
	s.Robots[7] = geom.V(-1, 0)
	if got := RobotWithBall(&s, f); got != 3 {
		t.Errorf("RobotWithBall = %d, want 3", got)
	}
}

func TestRobotWithBallUnreachable(t *testing.T) {
	f := model.DefaultField()
	s := parked()
	s.Ball = geom.V(0, 0)
	s.BallVel = geom.V(50, 0)
	if got := RobotWithBall(&s, f); got != -1 {
		t.Errorf("RobotWithBall = %d, want -1", got)
	}
}

func TestRobotWithBallSkipsAbsent(t *testing.T) {
	f := model.DefaultField()
	var tbl model.IDTable
	s, _, err := tbl.Apply(model.WorldUpdate{
		Ball: model.BallRecord{X: 0.05},
		Min:  []model.RobotRecord{{ID: 7, X: 3, Y: 3}},
		Max:  []model.RobotRecord{{ID: 1, X: -3, Y: -2}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := RobotWithBall(&s, f)
	if got != 0 && got != model.TeamSize {
		t.Fatalf("RobotWithBall = %d, want a reported robot", got)
	}
	if _, ok := tbl.ID(got); !ok {
		t.Errorf("robot %d has no feed id", got)
	}
}

func TestSeedSkipsAbsent(t *testing.T) {
	s := parked()
	s.Absent[3] = true
	tbl := NewTable(model.Min)
	tbl.Seed(&s)
	if _, ok := tbl.MoveTarget(3); ok {
		t.Error("absent robot 3 got a committed move")
	}
	if p, ok := tbl.MoveTarget(2); !ok || p != s.Robots[2] {
		t.Errorf("MoveTarget(2) = %v, %v, want %v", p, ok, s.Robots[2])
	}
}

func TestTableCommit(t *testing.T) {
	s := parked()
	tbl := NewTable(model.Min)
	tbl.Seed(&s)
	base := tbl.Decision()
	for _, i := range model.Min.Indices() {
		if p, _ := base.At(i).Target(); p != s.Robots[i] {
			t.Errorf("seeded move of %d = %v, want %v", i, p, s.Robots[i])
		}
	}

	d := New(model.Min)
	d.Set(0, KickTo(geom.V(4.5, 0)))
	d.Set(1, MoveTo(geom.V(1, 1)))
	tbl.Commit(d)
	if tbl.KickRobot != 0 || tbl.PassRobot != -1 {
		t.Errorf("slots: kick %d pass %d", tbl.KickRobot, tbl.PassRobot)
	}
	if p, _ := tbl.MoveTarget(1); p != geom.V(1, 1) {
		t.Errorf("move of 1 = %v", p)
	}
	if p, _ := tbl.MoveTarget(2); p != s.Robots[2] {
		t.Errorf("unchanged move of 2 = %v", p)
	}

	d = New(model.Min)
	d.Set(4, PassTo(1))
	tbl.Commit(d)
	if tbl.KickRobot != -1 || tbl.PassRobot != 4 {
		t.Errorf("after pass: kick %d pass %d", tbl.KickRobot, tbl.PassRobot)
	}
	if got := tbl.Decision().At(4); got.Kind() != Pass {
		t.Errorf("table decision for 4 = %v, want pass", got)
	}
}

func TestDiscoverPossibleReceivers(t *testing.T) {
	f := model.DefaultField()
	s := parked()
	s.Ball = geom.V(0, 0)
	s.Robots[0] = geom.V(0, 0)
	s.Robots[1] = geom.V(2, 0)
	s.Robots[2] = geom.V(0, 2)
	s.Robots[5] = geom.V(0, 1) // stands in the lane toward robot 2

	tbl := NewTable(model.Min)
	tbl.Seed(&s)
	got := map[int]bool{}
	for _, r := range DiscoverPossibleReceivers(&s, tbl, 0, f) {
		got[r] = true
	}
	if !got[1] {
		t.Errorf("receivers = %v, want robot 1 with a free lane", got)
	}
	if got[2] {
		t.Errorf("receivers = %v, robot 2 is cut off by robot 5", got)
	}
	if got[0] {
		t.Errorf("receivers = %v, the kicker cannot receive", got)
	}

	s.Absent[1] = true
	for _, r := range DiscoverPossibleReceivers(&s, tbl, 0, f) {
		if r == 1 {
			t.Error("absent robot 1 offered as a receiver")
		}
	}
}
