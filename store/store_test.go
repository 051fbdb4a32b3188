package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/nstehr/pitch/pitch-core/geom"
	"github.com/nstehr/pitch/pitch-core/model"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSlotRoundTrip(t *testing.T) {
	s := tempDB(t)

	var ws model.WorldState
	ws.Ball = geom.V(0.5, -0.25)
	ws.BallVel = geom.V(1, 0)
	ws.Robots[3] = geom.V(-2, 1)
	ws.RobotVels[7] = geom.V(0, 0.3)

	id, err := s.SaveSlot(2, ws)
	if err != nil {
		t.Fatalf("SaveSlot: %v", err)
	}
	if id == "" {
		t.Fatal("expected a snapshot id")
	}

	snap, err := s.LoadSlot(2)
	if err != nil {
		t.Fatalf("LoadSlot: %v", err)
	}
	if snap.ID != id {
		t.Errorf("ID = %s, want %s", snap.ID, id)
	}
	if snap.State != ws {
		t.Errorf("State = %+v, want %+v", snap.State, ws)
	}
	if snap.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestSaveSlotOverwrites(t *testing.T) {
	s := tempDB(t)

	var a, b model.WorldState
	a.Ball = geom.V(1, 1)
	b.Ball = geom.V(-1, -1)
	first, _ := s.SaveSlot(0, a)
	second, err := s.SaveSlot(0, b)
	if err != nil {
		t.Fatalf("SaveSlot: %v", err)
	}
	if first == second {
		t.Error("overwrite kept the old snapshot id")
	}

	snap, err := s.LoadSlot(0)
	if err != nil {
		t.Fatal(err)
	}
	if snap.State.Ball != b.Ball {
		t.Errorf("Ball = %v, want %v", snap.State.Ball, b.Ball)
	}

	slots, err := s.Slots()
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 1 || slots[0] != 0 {
		t.Errorf("Slots() = %v, want [0]", slots)
	}
}

func TestLoadEmptySlot(t *testing.T) {
	s := tempDB(t)
	if _, err := s.LoadSlot(5); !errors.Is(err, ErrEmptySlot) {
		t.Errorf("LoadSlot(5) err = %v, want ErrEmptySlot", err)
	}
}

func TestDecisionLog(t *testing.T) {
	s := tempDB(t)

	for tick := 1; tick <= 3; tick++ {
		_, err := s.LogDecision(DecisionEntry{
			Side:       "min",
			Tick:       tick,
			Source:     "replan",
			Value:      float64(tick) / 2,
			Iterations: 200,
			Terms:      map[string]float64{"ball_gap": 0.4},
		})
		if err != nil {
			t.Fatalf("LogDecision: %v", err)
		}
	}
	if _, err := s.LogDecision(DecisionEntry{Side: "max", Tick: 9, Source: "table", Group: "defend"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.RecentDecisions("min", 2)
	if err != nil {
		t.Fatalf("RecentDecisions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Tick != 3 || got[1].Tick != 2 {
		t.Errorf("ticks = %d, %d, want 3, 2", got[0].Tick, got[1].Tick)
	}
	if got[0].Terms["ball_gap"] != 0.4 {
		t.Errorf("terms = %v", got[0].Terms)
	}
	if got[0].ID == "" || got[0].Group != "" {
		t.Errorf("entry = %+v", got[0])
	}

	maxes, err := s.RecentDecisions("max", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(maxes) != 1 || maxes[0].Group != "defend" || maxes[0].Terms != nil {
		t.Errorf("max entries = %+v", maxes)
	}
}
