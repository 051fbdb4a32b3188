package suggest

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/nstehr/pitch/pitch-core/geom"
	"github.com/nstehr/pitch/pitch-core/model"
)

func named(name string) Suggestion {
	return Suggestion{Name: name, Spots: []geom.Vector{geom.V(1, 0), geom.V(-1, 0)}}
}

func TestStoreCapacity(t *testing.T) {
	s := NewStore()
	for i := 0; i < MaxSuggestions; i++ {
		idx, err := s.Add(named("f"))
		if err != nil || idx != i {
			t.Fatalf("Add #%d = %d, %v", i, idx, err)
		}
	}
	idx, err := s.Add(named("overflow"))
	if idx != -1 || !errors.Is(err, ErrFull) {
		t.Errorf("Add on full store = %d, %v; want -1, ErrFull", idx, err)
	}

	s = NewStore()
	big := Suggestion{Name: "crowd", Spots: make([]geom.Vector, MaxSpots+1)}
	if idx, err := s.Add(big); idx != -1 || !errors.Is(err, ErrTooManySpots) {
		t.Errorf("Add with too many spots = %d, %v", idx, err)
	}
}

func TestStoreRemoveShiftsLeft(t *testing.T) {
	s := NewStore()
	for _, n := range []string{"a", "b", "c", "d"} {
		s.Add(named(n))
	}
	s.MarkUsed(3)

	if err := s.Remove(1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	var names []string
	for _, sg := range s.All() {
		names = append(names, sg.Name)
	}
	if len(names) != 3 || names[0] != "a" || names[1] != "c" || names[2] != "d" {
		t.Errorf("after remove: %v", names)
	}
	if s.LastUsed() != 2 {
		t.Errorf("LastUsed() = %d, want 2 after shift", s.LastUsed())
	}

	if err := s.Remove(2); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.LastUsed() != -1 {
		t.Errorf("LastUsed() = %d, want -1 once removed", s.LastUsed())
	}
	if err := s.Remove(7); !errors.Is(err, ErrNoSuchIndex) {
		t.Errorf("Remove(7) = %v", err)
	}
}

func TestStoreMarkUsed(t *testing.T) {
	s := NewStore()
	s.Add(named("a"))
	s.Add(named("b"))
	s.MarkUsed(1)
	s.MarkUsed(1)
	sg, _ := s.At(1)
	if sg.Uses != 2 || s.LastUsed() != 1 {
		t.Errorf("uses %d last %d", sg.Uses, s.LastUsed())
	}
}

func TestStoreCopiesSpots(t *testing.T) {
	s := NewStore()
	sg := named("a")
	s.Add(sg)
	sg.Spots[0] = geom.V(9, 9)
	got, _ := s.At(0)
	if got.Spots[0] != geom.V(1, 0) {
		t.Error("store shares spot storage with the caller")
	}
}

func TestStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestions.yaml")
	s := NewStore()
	s.Add(named("wall"))
	s.Add(Suggestion{Name: "press", Spots: []geom.Vector{geom.V(2, 1.5)}})
	s.MarkUsed(1)
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 2 || got.LastUsed() != 1 {
		t.Fatalf("loaded %d entries, last used %d", got.Len(), got.LastUsed())
	}
	press, _ := got.At(1)
	if press.Name != "press" || press.Uses != 1 || press.Spots[0] != geom.V(2, 1.5) {
		t.Errorf("press = %+v", press)
	}
}

func TestAssignGreedy(t *testing.T) {
	var s model.WorldState
	s.Robots[1] = geom.V(0, 0)
	s.Robots[2] = geom.V(0.2, 0)
	s.Robots[3] = geom.V(3, 3)
	sg := Suggestion{Spots: []geom.Vector{geom.V(0.1, 0), geom.V(2, 0)}}

	got := sg.Assign(&s, []int{1, 2, 3})
	// Robot 1 claims the nearest spot first; 2 takes what is left.
	if got[1] != geom.V(0.1, 0) || got[2] != geom.V(2, 0) {
		t.Errorf("Assign = %v", got)
	}
	if _, ok := got[3]; ok {
		t.Error("robot 3 should be left without a spot")
	}
}
