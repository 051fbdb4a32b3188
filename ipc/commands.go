package ipc

import (
	"log/slog"

	"github.com/nstehr/pitch/pitch-core/decision"
	"github.com/nstehr/pitch/pitch-core/model"
)

// Command kinds. These must stay in sync with the bridge's command executor.
const (
	KindMove = "move"
	KindKick = "kick"
	KindPass = "pass"
)

// RobotCommand is one order, addressed by the vision feed's robot id.
type RobotCommand struct {
	RobotID    int     `json:"robot_id"`
	Kind       string  `json:"kind"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	ReceiverID *int    `json:"receiver_id,omitempty"`
}

// CommandBatch is the reply to a world update.
type CommandBatch struct {
	Tick     int            `json:"tick"`
	Side     string         `json:"side"`
	Commands []RobotCommand `json:"commands"`
}

// BuildCommands translates d into feed ids. Robots without an id (not in the
// current roster) and None actions are skipped.
func BuildCommands(d decision.Decision, ids *model.IDTable, tick int) CommandBatch {
	batch := CommandBatch{Tick: tick, Side: d.Player.String(), Commands: []RobotCommand{}}
	for k, a := range d.Actions {
		i := d.Robot(k)
		id, ok := ids.ID(i)
		if !ok {
			continue
		}
		switch a.Kind() {
		case decision.Move, decision.Kick:
			p, _ := a.Target()
			kind := KindMove
			if a.Kind() == decision.Kick {
				kind = KindKick
			}
			batch.Commands = append(batch.Commands, RobotCommand{RobotID: id, Kind: kind, X: p.X, Y: p.Y})
		case decision.Pass:
			r, _ := a.Receiver()
			rid, ok := ids.ID(r)
			if !ok {
				slog.Warn("pass receiver has no feed id", "robot", i, "receiver", r)
				continue
			}
			batch.Commands = append(batch.Commands, RobotCommand{RobotID: id, Kind: KindPass, ReceiverID: &rid})
		}
	}
	return batch
}
