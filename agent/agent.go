package agent

import (
	"fmt"
	"log/slog"

	"github.com/nstehr/pitch/pitch-core/geom"
	"github.com/nstehr/pitch/pitch-core/ipc"
	"github.com/nstehr/pitch/pitch-core/model"
)

// Agent is one bridge session. It answers every world update with the
// latest committed decision of the controlled side; deciding happens on the
// runtime's own goroutine.
type Agent struct {
	Conn *ipc.Connection
	rt   *Runtime
	ids  model.IDTable
	prev *stateSnapshot
}

func New(conn *ipc.Connection, rt *Runtime) *Agent {
	return &Agent{Conn: conn, rt: rt}
}

// Register installs the session's handlers on its connection.
func (a *Agent) Register() {
	a.Conn.RegisterHandler(ipc.TypeHello, a.HandleHello)
	a.Conn.RegisterHandler(ipc.TypeWorldUpdate, a.HandleWorldUpdate)
	a.Conn.RegisterHandler(ipc.TypeControl, a.HandleControl)
}

// HandleHello completes the handshake. The bridge may name the side to
// control and the field it plays on.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}

	if hello.Side != "" {
		p, ok := model.ParsePlayer(hello.Side)
		if !ok {
			return nil, fmt.Errorf("hello: unknown side %q", hello.Side)
		}
		a.rt.Decider.SetSide(p)
	}
	if hello.Field != nil {
		if !hello.Field.Valid() {
			return nil, fmt.Errorf("hello: invalid field %+v", *hello.Field)
		}
		if *hello.Field != a.rt.Field() {
			a.rt.Decider.SetField(*hello.Field, a.rt.Suggestions)
		}
	}
	a.Conn.Side = a.rt.Decider.Side().String()
	slog.Info("bridge identified", "side", a.Conn.Side)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleWorldUpdate publishes the new world and replies with commands from
// the latest decision. A frame that cannot be mapped gets an empty batch so
// the bridge is never left waiting.
func (a *Agent) HandleWorldUpdate(env ipc.Envelope) (*ipc.Envelope, error) {
	var u model.WorldUpdate
	if err := env.Decode(&u); err != nil {
		return nil, err
	}
	side := a.rt.Decider.Side()

	ws, rebuilt, err := a.ids.Apply(u)
	if err != nil {
		slog.Warn("world update rejected", "tick", u.Tick, "error", err)
		reply, err := ipc.NewEnvelope(ipc.TypeCommands, ipc.CommandBatch{Tick: u.Tick, Side: side.String(), Commands: []ipc.RobotCommand{}})
		return &reply, err
	}

	a.rt.World.Publish(ws, u.Tick)
	a.rt.Stats.RecordUpdate()

	cur := takeSnapshot(&ws, a.rt.Field())
	events := detectEvents(cur, a.prev, rebuilt, u.Tick)
	a.prev = &cur
	a.react(events)
	a.rt.Decider.Notify()

	batch := ipc.CommandBatch{Tick: u.Tick, Side: side.String(), Commands: []ipc.RobotCommand{}}
	if pub, ok := a.rt.Decisions.Latest(side); ok {
		batch = ipc.BuildCommands(pub.Decision, &a.ids, u.Tick)
	}

	reply, err := ipc.NewEnvelope(ipc.TypeCommands, batch)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (a *Agent) react(events []Event) {
	if len(events) == 0 {
		return
	}
	a.rt.Stats.RecordEvents(len(events))
	step := false
	for _, ev := range events {
		slog.Info("match event", "kind", ev.Kind, "tick", ev.Tick, "detail", ev.Detail)
		switch ev.Kind {
		case EventRosterChanged:
			a.rt.Decider.ResetEngines()
			step = true
		case EventPossessionChanged:
			step = true
		}
	}
	if step && !a.rt.Decider.Continuous() {
		a.rt.Decider.Step()
	}
}

// HandleControl runs one control operation and reports its outcome.
func (a *Agent) HandleControl(env ipc.Envelope) (*ipc.Envelope, error) {
	var msg ipc.ControlMessage
	if err := env.Decode(&msg); err != nil {
		return nil, err
	}

	res := ipc.ControlResult{Op: msg.Op, OK: true}
	c := a.rt.Controls
	var err error
	switch msg.Op {
	case ipc.OpStep:
		c.StepDecision()
	case ipc.OpToggleContinuous:
		res.Status = onOff(c.ToggleContinuous())
	case ipc.OpEvaluate:
		res.Value, res.Terms, err = c.EvaluateOnce()
	case ipc.OpSelectSlot:
		err = c.SelectSlot(msg.Slot)
		res.Status = fmt.Sprintf("slot %d", c.Slot())
	case ipc.OpSaveSlot:
		err = c.SaveSlot()
		res.Status = fmt.Sprintf("slot %d", c.Slot())
	case ipc.OpLoadSlot:
		err = c.LoadSlot()
		res.Status = fmt.Sprintf("slot %d", c.Slot())
	case ipc.OpMoveSelected:
		var pos geom.Vector
		pos, err = c.MoveSelected(msg.DX, msg.DY)
		if err == nil {
			res.Status = pos.String()
		}
	case ipc.OpSelectNext:
		res.Status = selectionName(c.SelectNextRobot())
	case ipc.OpToggleSide:
		p := c.ToggleSide()
		a.Conn.Side = p.String()
		res.Status = p.String()
	default:
		err = fmt.Errorf("unknown control op %q", msg.Op)
	}
	if err != nil {
		res.OK = false
		res.Error = err.Error()
		slog.Warn("control failed", "op", msg.Op, "error", err)
	}

	reply, err := ipc.NewEnvelope(ipc.TypeControlResult, res)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func selectionName(i int) string {
	if i == SelectedBall {
		return "ball"
	}
	return fmt.Sprintf("robot %d", i)
}
