package model

import (
	"math/rand"
	"testing"

	"github.com/nstehr/pitch/pitch-core/geom"
)

func TestPlayerRanges(t *testing.T) {
	lo, hi := Min.Range()
	if lo != 0 || hi != TeamSize {
		t.Errorf("Min.Range() = [%d, %d), want [0, %d)", lo, hi, TeamSize)
	}
	lo, hi = Max.Range()
	if lo != TeamSize || hi != RobotCount {
		t.Errorf("Max.Range() = [%d, %d), want [%d, %d)", lo, hi, TeamSize, RobotCount)
	}
	for i := 0; i < RobotCount; i++ {
		p := Owner(i)
		lo, hi := p.Range()
		if i < lo || i >= hi {
			t.Errorf("Owner(%d) = %s but index outside its range", i, p)
		}
		if Local(i) != i-lo {
			t.Errorf("Local(%d) = %d, want %d", i, Local(i), i-lo)
		}
	}
	if Min.Enemy() != Max || Max.Enemy() != Min {
		t.Error("Enemy should swap sides")
	}
}

func TestFieldGoals(t *testing.T) {
	f := DefaultField()
	if g := f.OwnGoal(Min); g.X != -f.Length/2 {
		t.Errorf("Min own goal x = %f, want %f", g.X, -f.Length/2)
	}
	if g := f.EnemyGoal(Min); g.X != f.Length/2 {
		t.Errorf("Min enemy goal x = %f, want %f", g.X, f.Length/2)
	}
	if f.OwnGoal(Max) != f.EnemyGoal(Min) {
		t.Error("Max defends the goal Min attacks")
	}
}

func TestFieldDefenseArea(t *testing.T) {
	f := DefaultField()
	tests := []struct {
		pt   geom.Vector
		want bool
	}{
		{geom.V(0, 0), false},
		{geom.V(-4.2, 0), true},
		{geom.V(4.2, 0.9), true},
		{geom.V(4.2, 1.1), false},
		{geom.V(3.4, 0), false},
	}
	for _, tc := range tests {
		if got := f.InDefenseArea(tc.pt); got != tc.want {
			t.Errorf("InDefenseArea(%v) = %v, want %v", tc.pt, got, tc.want)
		}
	}
	if !f.InOwnDefenseArea(Min, geom.V(-4.2, 0)) || f.InOwnDefenseArea(Max, geom.V(-4.2, 0)) {
		t.Error("left defense area belongs to Min")
	}
}

func TestRandomWorldStateOnField(t *testing.T) {
	f := DefaultField()
	rng := rand.New(rand.NewSource(11))
	for rep := 0; rep < 50; rep++ {
		s := RandomWorldState(rng, f)
		if !f.Contains(s.Ball) {
			t.Fatalf("ball %v off the pitch", s.Ball)
		}
		for i, r := range s.Robots {
			if !f.Contains(r) {
				t.Fatalf("robot %d at %v off the pitch", i, r)
			}
		}
	}
}

func TestIDTableApply(t *testing.T) {
	var tbl IDTable
	u := WorldUpdate{
		Ball: BallRecord{X: 1, Y: 2, VX: 0.5},
		Min:  []RobotRecord{{ID: 7, X: -1}, {ID: 3, X: -2}},
		Max:  []RobotRecord{{ID: 7, X: 1, VY: 1}},
	}

	s, rebuilt, err := tbl.Apply(u)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !rebuilt {
		t.Error("first frame should build the table")
	}
	if s.Ball != geom.V(1, 2) || s.BallVel != geom.V(0.5, 0) {
		t.Errorf("ball = %v vel %v", s.Ball, s.BallVel)
	}

	i, ok := tbl.Index(Min, 3)
	if !ok || i != 1 || s.Robots[i].X != -2 {
		t.Errorf("Min id 3 -> %d ok=%v pos %v", i, ok, s.Robots[i])
	}
	j, ok := tbl.Index(Max, 7)
	if !ok || j != TeamSize || s.RobotVels[j] != geom.V(0, 1) {
		t.Errorf("Max id 7 -> %d ok=%v vel %v", j, ok, s.RobotVels[j])
	}
	if id, ok := tbl.ID(j); !ok || id != 7 {
		t.Errorf("ID(%d) = %d, %v", j, id, ok)
	}

	// Same roster in another order keeps indices.
	u.Min = []RobotRecord{{ID: 3, X: -3}, {ID: 7, X: -1}}
	s, rebuilt, err = tbl.Apply(u)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if rebuilt {
		t.Error("unchanged roster should not rebuild")
	}
	if s.Robots[1].X != -3 {
		t.Errorf("id 3 moved slots: robots[1] = %v", s.Robots[1])
	}

	// A new robot forces a rebuild.
	u.Min = append(u.Min, RobotRecord{ID: 9})
	if _, rebuilt, _ = tbl.Apply(u); !rebuilt {
		t.Error("roster change should rebuild")
	}
}

func TestIDTableRejectsBadFrames(t *testing.T) {
	var tbl IDTable
	big := make([]RobotRecord, TeamSize+1)
	for i := range big {
		big[i].ID = i
	}
	if _, _, err := tbl.Apply(WorldUpdate{Min: big}); err == nil {
		t.Error("expected error for oversized team")
	}
	if _, _, err := tbl.Apply(WorldUpdate{Max: []RobotRecord{{ID: 1}, {ID: 1}}}); err == nil {
		t.Error("expected error for duplicate id")
	}
}

func TestIDTableMarksAbsentSlots(t *testing.T) {
	var tbl IDTable
	s, _, err := tbl.Apply(WorldUpdate{
		Min: []RobotRecord{{ID: 7, X: 3, Y: 3}},
		Max: []RobotRecord{{ID: 1}, {ID: 2}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i := 0; i < RobotCount; i++ {
		want := i != 0 && i != TeamSize && i != TeamSize+1
		if s.Absent[i] != want {
			t.Errorf("Absent[%d] = %v, want %v", i, s.Absent[i], want)
		}
	}
	if got := s.Active(Min); len(got) != 1 || got[0] != 0 {
		t.Errorf("Active(Min) = %v, want [0]", got)
	}
	if got := s.Active(Max); len(got) != 2 {
		t.Errorf("Active(Max) = %v, want two robots", got)
	}
}

func TestIDTableRejectedFrameLeavesTable(t *testing.T) {
	var tbl IDTable
	u := WorldUpdate{Min: []RobotRecord{{ID: 1}}, Max: []RobotRecord{{ID: 2}}}
	if _, _, err := tbl.Apply(u); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// New Min roster with an invalid Max side: nothing may change.
	bad := WorldUpdate{Min: []RobotRecord{{ID: 5}}, Max: []RobotRecord{{ID: 3}, {ID: 3}}}
	if _, _, err := tbl.Apply(bad); err == nil {
		t.Fatal("expected error for duplicate id")
	}
	if id, ok := tbl.ID(0); !ok || id != 1 {
		t.Errorf("ID(0) = %d, %v after rejected frame, want 1", id, ok)
	}

	// The same Min roster arriving valid must still count as a change.
	bad.Max = []RobotRecord{{ID: 2}}
	if _, rebuilt, err := tbl.Apply(bad); err != nil || !rebuilt {
		t.Errorf("Apply = rebuilt %v, err %v, want a rebuild", rebuilt, err)
	}
}
