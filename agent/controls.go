package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/nstehr/pitch/pitch-core/geom"
	"github.com/nstehr/pitch/pitch-core/model"
	"github.com/nstehr/pitch/pitch-core/store"
)

// SlotCount is the size of the snapshot ring.
const SlotCount = 8

// SelectedBall is the selection value for the ball; robots are selected by
// index.
const SelectedBall = -1

var (
	ErrNoSuchSlot = errors.New("no such snapshot slot")
	ErrEmptySlot  = errors.New("snapshot slot is empty")
)

// Controls is the inspection surface: snapshot slots, object nudging, robot
// and side selection, and manual decision triggers.
type Controls struct {
	world   *World
	decider *Decider
	store   *store.Store // nil keeps slots in memory

	mu       sync.Mutex
	slot     int
	slots    [SlotCount]*model.WorldState
	selected int
}

func NewControls(world *World, decider *Decider, st *store.Store) *Controls {
	return &Controls{
		world:    world,
		decider:  decider,
		store:    st,
		selected: SelectedBall,
	}
}

// StepDecision runs a single decision cycle.
func (c *Controls) StepDecision() { c.decider.Step() }

func (c *Controls) ToggleContinuous() bool { return c.decider.ToggleContinuous() }

// EvaluateOnce scores the current decision without deciding.
func (c *Controls) EvaluateOnce() (float64, map[string]float64, error) {
	v, terms, err := c.decider.Evaluate()
	if err != nil {
		return 0, nil, err
	}
	slog.Info("evaluation", "side", c.decider.Side(), "value", v, "terms", terms.Named())
	return v, terms.Named(), nil
}

// SelectSlot makes n the current slot of the ring.
func (c *Controls) SelectSlot(n int) error {
	if n < 0 || n >= SlotCount {
		return fmt.Errorf("%w: %d", ErrNoSuchSlot, n)
	}
	c.mu.Lock()
	c.slot = n
	c.mu.Unlock()
	return nil
}

func (c *Controls) Slot() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot
}

// SaveSlot stores the current world in the current slot.
func (c *Controls) SaveSlot() error {
	ws, _, ok := c.world.Snapshot()
	if !ok {
		return ErrNoWorld
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store != nil {
		id, err := c.store.SaveSlot(c.slot, ws)
		if err != nil {
			return err
		}
		slog.Info("snapshot saved", "slot", c.slot, "id", id)
		return nil
	}
	c.slots[c.slot] = &ws
	slog.Info("snapshot saved", "slot", c.slot)
	return nil
}

// LoadSlot replaces the world with the current slot's snapshot. The next
// perception update overwrites it again.
func (c *Controls) LoadSlot() error {
	c.mu.Lock()
	slot := c.slot
	var ws model.WorldState
	if c.store != nil {
		snap, err := c.store.LoadSlot(slot)
		if errors.Is(err, store.ErrEmptySlot) {
			c.mu.Unlock()
			return fmt.Errorf("slot %d: %w", slot, ErrEmptySlot)
		}
		if err != nil {
			c.mu.Unlock()
			return err
		}
		ws = snap.State
	} else {
		if c.slots[slot] == nil {
			c.mu.Unlock()
			return fmt.Errorf("slot %d: %w", slot, ErrEmptySlot)
		}
		ws = *c.slots[slot]
	}
	c.mu.Unlock()

	_, tick, _ := c.world.Snapshot()
	c.world.Publish(ws, tick)
	slog.Info("snapshot loaded", "slot", slot)
	c.decider.Notify()
	return nil
}

// Selected returns the selected robot index, or SelectedBall.
func (c *Controls) Selected() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// SelectNextRobot walks the controlled side's robots in index order, then
// the ball, then starts over.
func (c *Controls) SelectNextRobot() int {
	lo, hi := c.decider.Side().Range()
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.selected < lo || c.selected >= hi:
		c.selected = lo
	case c.selected == hi-1:
		c.selected = SelectedBall
	default:
		c.selected++
	}
	return c.selected
}

// ToggleSide hands control to the other side and selects its first robot.
func (c *Controls) ToggleSide() model.Player {
	p := c.decider.ToggleSide()
	lo, _ := p.Range()
	c.mu.Lock()
	c.selected = lo
	c.mu.Unlock()
	return p
}

// MoveSelected nudges the selected object by (dx, dy), keeping it on the
// field, and zeroes its velocity.
func (c *Controls) MoveSelected(dx, dy float64) (geom.Vector, error) {
	sel := c.Selected()
	f := c.decider.Field()
	var moved geom.Vector
	ok := c.world.Modify(func(s *model.WorldState) {
		pos, vel := &s.Ball, &s.BallVel
		if sel != SelectedBall {
			pos, vel = &s.Robots[sel], &s.RobotVels[sel]
		}
		*pos = clampToField(pos.Add(geom.V(dx, dy)), f)
		*vel = geom.Vector{}
		moved = *pos
	})
	if !ok {
		return geom.Vector{}, ErrNoWorld
	}
	c.decider.Notify()
	return moved, nil
}

func clampToField(p geom.Vector, f model.Field) geom.Vector {
	hx, hy := f.Length/2, f.Width/2
	return geom.V(math.Max(-hx, math.Min(hx, p.X)), math.Max(-hy, math.Min(hy, p.Y)))
}
