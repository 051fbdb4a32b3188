// Package suggest keeps a small bank of formation templates: named sets of
// target spots the search tries before anything random.
package suggest

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/pitch/pitch-core/geom"
	"github.com/nstehr/pitch/pitch-core/model"
)

const (
	MaxSuggestions = 16
	MaxSpots       = model.TeamSize
)

var (
	ErrFull         = errors.New("suggestion store is full")
	ErrTooManySpots = errors.New("suggestion has too many spots")
	ErrNoSuchIndex  = errors.New("no suggestion at index")
)

// Suggestion is a named formation template. Uses counts the cycles it won.
type Suggestion struct {
	Name  string        `yaml:"name"`
	Spots []geom.Vector `yaml:"spots"`
	Uses  int           `yaml:"uses"`
}

// Store is an ordered, bounded list of suggestions. Removing an entry
// shifts the later ones left. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	items    []Suggestion
	lastUsed int
}

func NewStore() *Store {
	return &Store{lastUsed: -1}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// At returns a copy of the suggestion at i.
func (s *Store) At(i int) (Suggestion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.items) {
		return Suggestion{}, false
	}
	return clone(s.items[i]), true
}

// All returns a copy of every suggestion, in order.
func (s *Store) All() []Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Suggestion, len(s.items))
	for i, it := range s.items {
		out[i] = clone(it)
	}
	return out
}

// LastUsed is the index of the suggestion that last won a cycle, or -1.
func (s *Store) LastUsed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUsed
}

// Add appends sg and returns its index. On failure the index is -1.
func (s *Store) Add(sg Suggestion) (int, error) {
	if len(sg.Spots) > MaxSpots {
		return -1, fmt.Errorf("%q has %d spots: %w", sg.Name, len(sg.Spots), ErrTooManySpots)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) >= MaxSuggestions {
		return -1, ErrFull
	}
	s.items = append(s.items, clone(sg))
	return len(s.items) - 1, nil
}

// Remove deletes the suggestion at i and shifts the rest left.
func (s *Store) Remove(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("remove %d: %w", i, ErrNoSuchIndex)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	switch {
	case s.lastUsed == i:
		s.lastUsed = -1
	case s.lastUsed > i:
		s.lastUsed--
	}
	return nil
}

// MarkUsed counts one win for the suggestion at i and records it as last used.
func (s *Store) MarkUsed(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) {
		return
	}
	s.items[i].Uses++
	s.lastUsed = i
}

func clone(sg Suggestion) Suggestion {
	sg.Spots = append([]geom.Vector(nil), sg.Spots...)
	return sg
}

type file struct {
	LastUsed    int          `yaml:"last_used"`
	Suggestions []Suggestion `yaml:"suggestions"`
}

// Load reads a store from a YAML file.
func Load(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suggestions: %w", err)
	}
	f := file{LastUsed: -1}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse suggestions %s: %w", path, err)
	}
	s := NewStore()
	for _, sg := range f.Suggestions {
		if _, err := s.Add(sg); err != nil {
			return nil, fmt.Errorf("load suggestions %s: %w", path, err)
		}
	}
	if f.LastUsed >= 0 && f.LastUsed < len(s.items) {
		s.lastUsed = f.LastUsed
	}
	return s, nil
}

// Save writes the store to a YAML file.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	f := file{LastUsed: s.lastUsed, Suggestions: s.items}
	b, err := yaml.Marshal(f)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write suggestions: %w", err)
	}
	return nil
}

// Assign hands each robot, in the given order, the nearest spot nobody has
// taken yet. Robots left over when the spots run out are absent from the
// result.
func (sg Suggestion) Assign(s *model.WorldState, robots []int) map[int]geom.Vector {
	out := make(map[int]geom.Vector, len(robots))
	taken := make([]bool, len(sg.Spots))
	for _, i := range robots {
		best, bestD := -1, 0.0
		for k, spot := range sg.Spots {
			if taken[k] {
				continue
			}
			if d := s.Robots[i].Dist2(spot); best < 0 || d < bestD {
				best, bestD = k, d
			}
		}
		if best < 0 {
			break
		}
		taken[best] = true
		out[i] = sg.Spots[best]
	}
	return out
}
