package agent

import (
	"fmt"

	"github.com/nstehr/pitch/pitch-core/decision"
	"github.com/nstehr/pitch/pitch-core/model"
)

// EventKind identifies a change in the match worth logging or reacting to.
type EventKind string

const (
	EventPossessionChanged EventKind = "possession_changed"
	EventBallInDefenseArea EventKind = "ball_in_defense_area"
	EventBallOutOfPlay     EventKind = "ball_out_of_play"
	EventRosterChanged     EventKind = "roster_changed"
)

// Event is a change detected by diffing consecutive world snapshots.
type Event struct {
	Kind   EventKind
	Tick   int
	Detail string
}

// stateSnapshot captures the diffable fields of one world update.
type stateSnapshot struct {
	owner     int // robot with the ball, -1 if nobody can reach it
	attacker  model.Player
	hasOwner  bool
	inArea    [2]bool // ball inside Min's / Max's defense area
	outOfPlay bool
}

func takeSnapshot(s *model.WorldState, f model.Field) stateSnapshot {
	snap := stateSnapshot{owner: decision.RobotWithBall(s, f)}
	if snap.owner >= 0 {
		snap.hasOwner = true
		snap.attacker = model.Owner(snap.owner)
	}
	for _, p := range []model.Player{model.Min, model.Max} {
		snap.inArea[p] = f.InOwnDefenseArea(p, s.Ball)
	}
	snap.outOfPlay = !f.Contains(s.Ball)
	return snap
}

// detectEvents compares cur against the previous snapshot. Returns nil if
// prev is nil (first update).
func detectEvents(cur stateSnapshot, prev *stateSnapshot, rebuilt bool, tick int) []Event {
	if prev == nil {
		return nil
	}

	var events []Event

	if rebuilt {
		events = append(events, Event{
			Kind:   EventRosterChanged,
			Tick:   tick,
			Detail: "robot id table rebuilt, indices remapped",
		})
	}

	if cur.hasOwner != prev.hasOwner || cur.attacker != prev.attacker {
		events = append(events, Event{
			Kind:   EventPossessionChanged,
			Tick:   tick,
			Detail: fmt.Sprintf("possession %s -> %s", possession(prev), possession(&cur)),
		})
	}

	for _, p := range []model.Player{model.Min, model.Max} {
		if cur.inArea[p] && !prev.inArea[p] {
			events = append(events, Event{
				Kind:   EventBallInDefenseArea,
				Tick:   tick,
				Detail: fmt.Sprintf("ball entered %s defense area", p),
			})
		}
	}

	if cur.outOfPlay && !prev.outOfPlay {
		events = append(events, Event{
			Kind:   EventBallOutOfPlay,
			Tick:   tick,
			Detail: "ball left the field",
		})
	}

	return events
}

func possession(s *stateSnapshot) string {
	if !s.hasOwner {
		return "loose"
	}
	return s.attacker.String()
}
