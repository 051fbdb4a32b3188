package agent

import (
	"context"
	"time"

	"github.com/nstehr/pitch/pitch-core/model"
	"github.com/nstehr/pitch/pitch-core/suggest"
)

// Runtime is the state shared by every bridge session: the three locked
// aggregates plus the decision loop and controls built over them.
type Runtime struct {
	World       *World
	Decisions   *Decisions
	Stats       *Stats
	Decider     *Decider
	Controls    *Controls
	Suggestions *suggest.Store
}

func NewRuntime(cfg DeciderConfig) *Runtime {
	w := &World{}
	ds := &Decisions{}
	st := NewStats(cfg.Side)
	d := NewDecider(w, ds, st, cfg)
	return &Runtime{
		World:       w,
		Decisions:   ds,
		Stats:       st,
		Decider:     d,
		Controls:    NewControls(w, d, cfg.Store),
		Suggestions: cfg.Suggestions,
	}
}

// Start launches the decision and statistics loops. Both stop when ctx is
// cancelled.
func (r *Runtime) Start(ctx context.Context, sink Sink) {
	go r.Decider.Start(ctx)
	go r.Stats.Loop(ctx, time.Second, sink)
	r.Decider.Notify()
}

// Field is the field the engines currently use.
func (r *Runtime) Field() model.Field { return r.Decider.Field() }
