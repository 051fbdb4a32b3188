// Package search runs the decision loop: it generates candidate team
// decisions from several sources, scores each with the evaluator, keeps the
// best and commits it into the side's decision table.
package search

import (
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/nstehr/pitch/pitch-core/decision"
	"github.com/nstehr/pitch/pitch-core/eval"
	"github.com/nstehr/pitch/pitch-core/model"
	"github.com/nstehr/pitch/pitch-core/rules"
	"github.com/nstehr/pitch/pitch-core/suggest"
)

// Source says which generator produced a candidate.
type Source int

const (
	FromSuggestion Source = iota
	FromTable
	FromReplan
	FromRoundRobin
)

func (s Source) String() string {
	switch s {
	case FromSuggestion:
		return "suggestion"
	case FromTable:
		return "table"
	case FromReplan:
		return "replan"
	case FromRoundRobin:
		return "round_robin"
	default:
		return "unknown"
	}
}

// estimateAlpha weights the newest iteration count in the ramification
// estimate kept in constant-rate mode.
const estimateAlpha = 0.2

// Result is the outcome of one decision cycle.
type Result struct {
	decision.Valued
	Source     Source
	Suggestion int // index of the winning suggestion, -1 unless Source is FromSuggestion
	Owner      int // robot with the ball at the start of the cycle, -1 if none
	Iterations int
	Elapsed    time.Duration
}

// Engine owns one side's decision table and runs decision cycles for it.
// It is not safe for concurrent use; the caller serialises cycles.
type Engine struct {
	player      model.Player
	field       model.Field
	eval        *eval.Evaluator
	table       *decision.Table
	suggestions *suggest.Store
	rng         *rand.Rand
	clock       func() time.Time
	roundRobin  int
	estimate    float64
}

type Option func(*Engine)

// WithRand sets the random source. Tests pass a seeded one.
func WithRand(r *rand.Rand) Option { return func(e *Engine) { e.rng = r } }

// WithClock replaces time.Now for the wall-clock stop condition.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.clock = now } }

// WithSuggestions makes the stored formation templates the first candidates
// of every cycle.
func WithSuggestions(s *suggest.Store) Option { return func(e *Engine) { e.suggestions = s } }

func NewEngine(p model.Player, f model.Field, opts ...Option) *Engine {
	e := &Engine{
		player: p,
		field:  f,
		eval:   eval.New(f),
		table:  decision.NewTable(p),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Player() model.Player { return e.player }

// Table returns a copy of the committed decision table.
func (e *Engine) Table() decision.Table { return *e.table }

// Reset drops the committed table, e.g. after the robot id mapping changed.
func (e *Engine) Reset() {
	e.table.Reset()
	e.roundRobin = 0
}

// Estimate is the smoothed number of iterations that fit in one wall-clock
// budget, 0 before the first constant-rate cycle.
func (e *Engine) Estimate() int { return int(math.Round(e.estimate)) }

// Evaluate scores d against the committed table without running a cycle.
func (e *Engine) Evaluate(s *model.WorldState, d decision.Decision, prm rules.Params) (float64, eval.Terms) {
	e.table.Seed(s)
	return e.eval.Evaluate(e.player, s, d, e.table, prm)
}

// Decide runs one decision cycle on s and commits the winner.
//
// Iteration i draws its candidate from, in order: stored suggestion i; the
// committed table once; then either a full re-plan (FullReplanPercent of the
// time) or a single robot re-planned in round-robin order. The cycle stops
// after RamificationNumber iterations, or in constant-rate mode once
// 1/DecisionRate seconds have passed; at least one candidate is always
// evaluated.
func (e *Engine) Decide(s *model.WorldState, prm rules.Params) Result {
	start := e.clock()
	e.table.Seed(s)

	owner := decision.RobotWithBall(s, e.field)
	mine := owner >= 0 && model.Owner(owner) == e.player
	g := &generator{
		player: e.player,
		field:  e.field,
		prm:    prm,
		rng:    e.rng,
		state:  s,
		table:  e.table,
		occ:    NewOccupancy(s, e.field.RobotRadius),
		owner:  owner,
	}
	canKick := mine && g.canKickDirectly()

	var suggestions []suggest.Suggestion
	if e.suggestions != nil {
		suggestions = e.suggestions.All()
	}
	budget := time.Duration(float64(time.Second) / prm.DecisionRate)

	best := Result{Owner: owner, Suggestion: -1}
	best.Value = math.Inf(-1)
	i := 0
	for ; ; i++ {
		if prm.ConstantRate {
			if i > 0 && e.clock().Sub(start) >= budget {
				break
			}
		} else if i >= prm.RamificationNumber {
			break
		}

		d, src := e.candidate(g, i, suggestions, mine, canKick)
		v, terms := e.eval.Evaluate(e.player, s, d, e.table, prm)
		slog.Debug("candidate", "side", e.player, "i", i, "source", src, "value", v)
		if v > best.Value || i == 0 {
			best.Decision, best.Value, best.Terms, best.Source = d, v, terms[:], src
			best.Suggestion = -1
			if src == FromSuggestion {
				best.Suggestion = i
			}
		}
	}
	best.Iterations = i
	best.Elapsed = e.clock().Sub(start)

	if prm.ConstantRate {
		if e.estimate == 0 {
			e.estimate = float64(i)
		} else {
			e.estimate += estimateAlpha * (float64(i) - e.estimate)
		}
	}

	e.table.Commit(best.Decision)
	if best.Source == FromSuggestion && e.suggestions != nil {
		e.suggestions.MarkUsed(best.Suggestion)
	}
	return best
}

// candidate builds the Decision for iteration i.
func (e *Engine) candidate(g *generator, i int, suggestions []suggest.Suggestion, mine, canKick bool) (decision.Decision, Source) {
	d := decision.New(e.player)
	d.Actions = e.table.Moves
	teammates := make([]int, 0, model.TeamSize)
	for _, r := range e.player.Indices() {
		switch {
		case g.state.Absent[r]:
			d.Set(r, decision.NoAction())
		case r != g.owner:
			teammates = append(teammates, r)
		}
	}

	src := FromRoundRobin
	switch {
	case i < len(suggestions):
		src = FromSuggestion
		spots := suggestions[i].Assign(g.state, teammates)
		for _, r := range teammates {
			if spot, ok := spots[r]; ok {
				d.Set(r, decision.MoveTo(spot))
			}
		}
		for _, r := range teammates {
			if _, ok := spots[r]; !ok {
				d.Set(r, g.genMove(r, &d))
			}
		}
	case i == len(suggestions):
		// Committed moves as they stand; the ball handler still weighs kick
		// against pass below, and the change costs favour the committed one.
		src = FromTable
	case e.rng.Float64()*100 < g.prm.FullReplanPercent:
		src = FromReplan
		for _, r := range teammates {
			d.Set(r, g.genMove(r, &d))
		}
	default:
		if r, ok := e.nextRoundRobin(g.state, g.owner); ok {
			d.Set(r, g.genMove(r, &d))
		}
	}

	if mine {
		d.Set(g.owner, g.genPrimary(g.owner, &d, canKick))
	}
	return d, src
}

// nextRoundRobin returns the next teammate to re-plan alone, skipping the
// ball handler and absent robots.
func (e *Engine) nextRoundRobin(s *model.WorldState, owner int) (int, bool) {
	lo, _ := e.player.Range()
	for rep := 0; rep < model.TeamSize; rep++ {
		r := lo + e.roundRobin%model.TeamSize
		e.roundRobin++
		if r != owner && !s.Absent[r] {
			return r, true
		}
	}
	return -1, false
}
