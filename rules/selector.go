package rules

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"
)

// DefaultGroupName is reported when no group condition matches.
const DefaultGroupName = "default"

// Selector picks the parameter group for a situation. Groups are checked in
// priority order and the first whose condition holds wins; when none does,
// the base parameters apply.
type Selector struct {
	mu     sync.RWMutex
	groups []*Group
	base   Params
}

// NewSelector compiles every group condition into expr bytecode and sorts by
// priority.
func NewSelector(base Params, groups []*Group) (*Selector, error) {
	compiled, err := compileGroups(groups)
	if err != nil {
		return nil, err
	}
	base.Validate()
	return &Selector{groups: compiled, base: base}, nil
}

// Select returns the name and parameters of the group that applies to sit.
// It depends on nothing but sit and the current group set.
func (s *Selector) Select(sit Situation) (string, Params) {
	s.mu.RLock()
	groups, base := s.groups, s.base
	s.mu.RUnlock()

	for _, g := range groups {
		result, err := vm.Run(g.program, sit)
		if err != nil {
			slog.Warn("group condition error", "group", g.Name, "error", err)
			continue
		}
		if match, ok := result.(bool); ok && match {
			return g.Name, g.Params
		}
	}
	return DefaultGroupName, base
}

// Base returns the parameters used when no group matches.
func (s *Selector) Base() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base
}

// SetBase replaces the fallback parameters, e.g. after a tuning file reload.
func (s *Selector) SetBase(p Params) {
	p.Validate()
	s.mu.Lock()
	s.base = p
	s.mu.Unlock()
}

// Swap atomically replaces the group set. Compiles first; if compilation
// fails the old groups remain active.
func (s *Selector) Swap(groups []*Group) error {
	compiled, err := compileGroups(groups)
	if err != nil {
		return err
	}
	names := make([]string, len(compiled))
	for i, g := range compiled {
		names[i] = g.Name
	}
	s.mu.Lock()
	s.groups = compiled
	s.mu.Unlock()
	slog.Info("parameter groups swapped", "count", len(compiled), "groups", names)
	return nil
}

// Names lists the group names in evaluation order.
func (s *Selector) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.groups))
	for i, g := range s.groups {
		names[i] = g.Name
	}
	return names
}

func compileGroups(groups []*Group) ([]*Group, error) {
	out := make([]*Group, len(groups))
	for i, g := range groups {
		prog, err := expr.Compile(g.When, expr.Env(Situation{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile group %q: %w", g.Name, err)
		}
		c := *g
		c.program = prog
		c.Params.Validate()
		out[i] = &c
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out, nil
}

// DefaultGroups returns the built-in parameter groups layered over base.
func DefaultGroups(base Params) []*Group {
	defend := base
	defend.BlockAttackerWeight *= 2
	defend.EnemyGapWeight *= 1.5
	defend.TeammateGapWeight /= 2

	attack := base
	attack.BallGapWeight *= 1.5
	attack.TeammateGapWeight *= 1.5
	attack.FullReplanPercent /= 2

	protect := base
	protect.PreferKick = true
	protect.MinKickAngle /= 2

	return []*Group{
		{Name: "clear_area", Priority: 30, When: "BallInOwnArea || (OwnThird() && HasBall && Pressed(0.5))", Params: protect},
		{Name: "defend", Priority: 20, When: "!HasBall && OwnThird()", Params: defend},
		{Name: "attack", Priority: 10, When: "HasBall && EnemyThird()", Params: attack},
	}
}

// groupFile is the YAML layout of a group file. Params are decoded over the
// base parameters, so a group only lists what it changes.
type groupFile struct {
	Groups []struct {
		Name     string    `yaml:"name"`
		Priority int       `yaml:"priority"`
		When     string    `yaml:"when"`
		Params   yaml.Node `yaml:"params"`
	} `yaml:"groups"`
}

// LoadGroups reads a YAML group file.
func LoadGroups(path string, base Params) ([]*Group, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read groups: %w", err)
	}
	return ParseGroups(b, base)
}

// ParseGroups decodes a YAML group document.
func ParseGroups(b []byte, base Params) ([]*Group, error) {
	var f groupFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse groups: %w", err)
	}
	groups := make([]*Group, 0, len(f.Groups))
	for _, raw := range f.Groups {
		if raw.Name == "" || raw.When == "" {
			return nil, fmt.Errorf("group needs a name and a condition (name %q)", raw.Name)
		}
		p := base
		if !raw.Params.IsZero() {
			if err := raw.Params.Decode(&p); err != nil {
				return nil, fmt.Errorf("group %q params: %w", raw.Name, err)
			}
		}
		groups = append(groups, &Group{Name: raw.Name, Priority: raw.Priority, When: raw.When, Params: p})
	}
	return groups, nil
}
