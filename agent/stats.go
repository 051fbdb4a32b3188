package agent

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nstehr/pitch/pitch-core/model"
	"github.com/nstehr/pitch/pitch-core/search"
)

// Counters is one sampling window of activity.
type Counters struct {
	Side       string
	Cycles     int
	Iterations int
	Updates    int
	Events     int
	BestValue  float64
	Busy       time.Duration
}

func (c Counters) fields() map[string]any {
	return map[string]any{
		"cycles":     c.Cycles,
		"iterations": c.Iterations,
		"updates":    c.Updates,
		"events":     c.Events,
		"best_value": c.BestValue,
		"busy_ms":    c.Busy.Milliseconds(),
	}
}

// Sink receives one sample per window. *metrics.Client satisfies it.
type Sink interface {
	Write(side string, fields map[string]any, at time.Time) error
}

// Stats accumulates counters between samples.
type Stats struct {
	mu sync.Mutex
	c  Counters
}

func NewStats(p model.Player) *Stats {
	return &Stats{c: Counters{Side: p.String()}}
}

func (s *Stats) RecordCycle(p model.Player, r search.Result) {
	s.mu.Lock()
	s.c.Side = p.String()
	s.c.Cycles++
	s.c.Iterations += r.Iterations
	s.c.Busy += r.Elapsed
	s.c.BestValue = r.Value
	s.mu.Unlock()
}

// SetSide changes the side tag of the current window.
func (s *Stats) SetSide(p model.Player) {
	s.mu.Lock()
	s.c.Side = p.String()
	s.mu.Unlock()
}

func (s *Stats) RecordUpdate() {
	s.mu.Lock()
	s.c.Updates++
	s.mu.Unlock()
}

func (s *Stats) RecordEvents(n int) {
	s.mu.Lock()
	s.c.Events += n
	s.mu.Unlock()
}

// Sample returns the counters collected since the previous Sample and
// resets them.
func (s *Stats) Sample() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.c
	s.c = Counters{Side: c.Side}
	return c
}

// Loop samples once per interval until ctx is done, logging each window and
// forwarding it to sink when one is set.
func (s *Stats) Loop(ctx context.Context, interval time.Duration, sink Sink) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c := s.Sample()
			if c.Cycles > 0 || c.Updates > 0 {
				slog.Info("engine stats",
					"side", c.Side,
					"cycles", c.Cycles,
					"iterations", c.Iterations,
					"updates", c.Updates,
					"events", c.Events,
					"best", c.BestValue,
					"busy", c.Busy,
				)
			}
			if sink == nil {
				continue
			}
			if err := sink.Write(c.Side, c.fields(), now); err != nil {
				slog.Warn("stats write failed", "error", err)
			}
		}
	}
}
