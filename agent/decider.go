package agent

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/nstehr/pitch/pitch-core/decision"
	"github.com/nstehr/pitch/pitch-core/eval"
	"github.com/nstehr/pitch/pitch-core/model"
	"github.com/nstehr/pitch/pitch-core/rules"
	"github.com/nstehr/pitch/pitch-core/search"
	"github.com/nstehr/pitch/pitch-core/store"
	"github.com/nstehr/pitch/pitch-core/suggest"
	"github.com/nstehr/pitch/pitch-core/viz"
)

var ErrNoWorld = errors.New("no world state yet")

// Feed receives every committed decision. *viz.Server satisfies it.
type Feed interface {
	Publish(f viz.Frame)
}

// Decider runs decision cycles in the background, either back to back
// (continuous) or once per Step. Each cycle copies the shared world out,
// decides on the copy and publishes the result.
type Decider struct {
	world     *World
	decisions *Decisions
	stats     *Stats
	selector  *rules.Selector
	log       *store.Store
	feed      Feed

	engineMu sync.Mutex
	engines  [2]*search.Engine
	field    model.Field
	gen      uint64 // bumped whenever the tables are dropped

	mu         sync.Mutex
	side       model.Player
	continuous bool

	group string // guarded by engineMu
	ready chan struct{}
}

// DeciderConfig wires a Decider. Store and Feed may be nil.
type DeciderConfig struct {
	Side        model.Player
	Field       model.Field
	Selector    *rules.Selector
	Suggestions *suggest.Store
	Store       *store.Store
	Feed        Feed
	Continuous  bool
	Seed        int64 // 0 seeds from the clock
}

func NewDecider(world *World, decisions *Decisions, stats *Stats, cfg DeciderConfig) *Decider {
	d := &Decider{
		world:      world,
		decisions:  decisions,
		stats:      stats,
		selector:   cfg.Selector,
		log:        cfg.Store,
		feed:       cfg.Feed,
		side:       cfg.Side,
		continuous: cfg.Continuous,
		ready:      make(chan struct{}, 1),
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	d.build(cfg.Field, cfg.Suggestions, seed)
	return d
}

func (d *Decider) build(f model.Field, sg *suggest.Store, seed int64) {
	for _, p := range []model.Player{model.Min, model.Max} {
		opts := []search.Option{search.WithRand(rand.New(rand.NewSource(seed + int64(p))))}
		if sg != nil {
			opts = append(opts, search.WithSuggestions(sg))
		}
		d.engines[p] = search.NewEngine(p, f, opts...)
	}
	d.field = f
}

func (d *Decider) Side() model.Player {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.side
}

func (d *Decider) SetSide(p model.Player) {
	d.mu.Lock()
	changed := d.side != p
	d.side = p
	d.mu.Unlock()
	if changed {
		slog.Info("controlled side changed", "side", p)
		d.stats.SetSide(p)
	}
}

// ToggleSide switches the controlled side and returns the new one.
func (d *Decider) ToggleSide() model.Player {
	p := d.Side().Enemy()
	d.SetSide(p)
	return p
}

func (d *Decider) Continuous() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.continuous
}

// ToggleContinuous flips continuous mode and returns the new setting.
// Turning it on starts a cycle right away.
func (d *Decider) ToggleContinuous() bool {
	d.mu.Lock()
	d.continuous = !d.continuous
	on := d.continuous
	d.mu.Unlock()
	slog.Info("continuous decisions", "enabled", on)
	if on {
		d.Step()
	}
	return on
}

// Step requests one decision cycle. Requests made while one is pending
// coalesce.
func (d *Decider) Step() {
	select {
	case d.ready <- struct{}{}:
	default:
	}
}

// Notify tells the decider a new world state arrived.
func (d *Decider) Notify() {
	if d.Continuous() {
		d.Step()
	}
}

// Field returns the field the engines were built for.
func (d *Decider) Field() model.Field {
	d.engineMu.Lock()
	defer d.engineMu.Unlock()
	return d.field
}

// SetField rebuilds both engines for f, dropping their tables.
func (d *Decider) SetField(f model.Field, sg *suggest.Store) {
	d.engineMu.Lock()
	d.build(f, sg, time.Now().UnixNano())
	d.gen++
	d.decisions.Clear()
	d.engineMu.Unlock()
	slog.Info("field changed", "length", f.Length, "width", f.Width)
}

// ResetEngines drops both committed tables and the published decisions. A
// cycle that started before the reset is discarded.
func (d *Decider) ResetEngines() {
	d.engineMu.Lock()
	for _, e := range d.engines {
		e.Reset()
	}
	d.gen++
	d.decisions.Clear()
	d.engineMu.Unlock()
}

func (d *Decider) generation() uint64 {
	d.engineMu.Lock()
	defer d.engineMu.Unlock()
	return d.gen
}

// Start runs the decision loop until ctx is cancelled. An in-flight cycle is
// never interrupted; cancellation is noticed between cycles.
func (d *Decider) Start(ctx context.Context) {
	slog.Info("decider started", "side", d.Side(), "continuous", d.Continuous())
	for {
		select {
		case <-ctx.Done():
			slog.Info("decider stopped")
			return
		case <-d.ready:
			if d.step() && d.Continuous() {
				d.Step()
			}
		}
	}
}

// step runs one cycle on a copy of the world. It reports false when there
// is no world to decide on.
func (d *Decider) step() bool {
	gen := d.generation()
	ws, tick, ok := d.world.Snapshot()
	if !ok {
		return false
	}
	pub, ok := d.decide(gen, d.Side(), ws, tick)
	if !ok {
		return true
	}
	res, side := pub.Result, pub.Player
	d.stats.RecordCycle(side, res)
	slog.Debug("decision committed",
		"side", side,
		"tick", tick,
		"source", res.Source,
		"value", res.Value,
		"iterations", res.Iterations,
		"decision", res.Decision,
	)
	d.record(pub)
	return true
}

// decide runs the engine for side on ws and publishes the result. The engine
// lock is held until the result is published, so a reset either clears it or
// makes this cycle bail out. ok is false when the tables were dropped after
// gen was read; the world copy may then predate a roster change.
func (d *Decider) decide(gen uint64, side model.Player, ws model.WorldState, tick int) (Published, bool) {
	d.engineMu.Lock()
	defer d.engineMu.Unlock()
	if d.gen != gen {
		slog.Debug("cycle discarded after reset", "side", side, "tick", tick)
		return Published{}, false
	}

	sit := rules.NewSituation(side, &ws, d.field)
	group, prm := d.selector.Select(sit)
	res := d.engines[side].Decide(&ws, prm)

	if group != d.group {
		slog.Info("parameter group changed", "side", side, "from", d.group, "to", group, "tick", tick)
		d.group = group
	}

	pub := Published{
		Result:    res,
		Tick:      tick,
		Group:     group,
		State:     ws,
		Committed: time.Now(),
	}
	d.decisions.Publish(pub)
	return pub, true
}

func (d *Decider) record(pub Published) {
	terms := eval.NamedValues(pub.Terms)
	if d.log != nil {
		_, err := d.log.LogDecision(store.DecisionEntry{
			Side:       pub.Player.String(),
			Tick:       pub.Tick,
			Source:     pub.Source.String(),
			Group:      pub.Group,
			Value:      pub.Value,
			Iterations: pub.Iterations,
			Terms:      terms,
			Actions:    pub.Decision.String(),
			CreatedAt:  pub.Committed.UTC(),
		})
		if err != nil {
			slog.Warn("decision log write failed", "error", err)
		}
	}
	if d.feed != nil {
		d.feed.Publish(viz.Frame{
			Side:       pub.Player.String(),
			Tick:       pub.Tick,
			Group:      pub.Group,
			Source:     pub.Source.String(),
			Value:      pub.Value,
			Iterations: pub.Iterations,
			Terms:      terms,
			Actions:    actionStrings(pub.Decision),
			State:      pub.State,
		})
	}
}

// Evaluate scores the controlled side's latest decision (or its committed
// table when none was published) against the current world, without
// running a cycle.
func (d *Decider) Evaluate() (float64, eval.Terms, error) {
	ws, _, ok := d.world.Snapshot()
	if !ok {
		return 0, eval.Terms{}, ErrNoWorld
	}
	side := d.Side()

	d.engineMu.Lock()
	defer d.engineMu.Unlock()
	e := d.engines[side]
	tbl := e.Table()
	dec := tbl.Decision()
	if pub, ok := d.decisions.Latest(side); ok {
		dec = pub.Decision
	}
	_, prm := d.selector.Select(rules.NewSituation(side, &ws, d.field))
	v, terms := e.Evaluate(&ws, dec, prm)
	return v, terms, nil
}

func actionStrings(dec decision.Decision) []string {
	out := make([]string, len(dec.Actions))
	for i, a := range dec.Actions {
		out[i] = a.String()
	}
	return out
}
