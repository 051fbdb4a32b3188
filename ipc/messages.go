package ipc

import "github.com/nstehr/pitch/pitch-core/model"

// These constants must stay in sync with the bridge's message types.
const (
	TypeHello         = "hello"
	TypeAck           = "ack"
	TypeWorldUpdate   = "world_update"
	TypeCommands      = "commands"
	TypeControl       = "control"
	TypeControlResult = "control_result"
)

type HelloMessage struct {
	Side  string       `json:"side"`
	Field *model.Field `json:"field,omitempty"`
}

type AckMessage struct {
	Status string `json:"status"`
}

// Control operations, for the inspection tooling.
const (
	OpStep             = "step"
	OpToggleContinuous = "toggle_continuous"
	OpEvaluate         = "evaluate"
	OpSelectSlot       = "select_slot"
	OpSaveSlot         = "save_slot"
	OpLoadSlot         = "load_slot"
	OpMoveSelected     = "move_selected"
	OpSelectNext       = "select_next"
	OpToggleSide       = "toggle_side"
)

type ControlMessage struct {
	Op   string  `json:"op"`
	Slot int     `json:"slot,omitempty"`
	DX   float64 `json:"dx,omitempty"`
	DY   float64 `json:"dy,omitempty"`
}

type ControlResult struct {
	Op     string             `json:"op"`
	OK     bool               `json:"ok"`
	Error  string             `json:"error,omitempty"`
	Status string             `json:"status,omitempty"`
	Value  float64            `json:"value,omitempty"`
	Terms  map[string]float64 `json:"terms,omitempty"`
}
