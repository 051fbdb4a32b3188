package ipc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// DefaultTimeout bounds every read and write on a connection.
const DefaultTimeout = 500 * time.Millisecond

// Connection represents a single bridge talking to the sidecar. The bridge
// sends one request and waits for its reply before sending the next.
type Connection struct {
	conn     net.Conn
	handlers map[string]Handler
	writeMu  sync.Mutex
	Timeout  time.Duration
	Side     string // set after the hello handshake
}

func NewConnection(conn net.Conn, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		conn:     conn,
		handlers: handlers,
		Timeout:  DefaultTimeout,
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return c.write(env)
}

func (c *Connection) write(env Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.Timeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.Timeout))
	}
	return WriteEnvelope(c.conn, env)
}

// ReadLoop blocks until the connection closes, errors, or ctx is done. It owns
// the conn lifetime so callers don't need to track cleanup. A read that times
// out only re-checks ctx; the connection stays open.
func (c *Connection) ReadLoop(ctx context.Context) {
	defer c.conn.Close()

	for {
		if ctx.Err() != nil {
			slog.Info("connection closed by shutdown", "side", c.Side)
			return
		}
		if c.Timeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(c.Timeout))
		}

		env, err := ReadEnvelope(c.conn)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			slog.Info("connection read ended", "side", c.Side, "error", err)
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			slog.Warn("no handler for message type", "type", env.Type)
			continue
		}

		resp, err := handler(env)
		if err != nil {
			slog.Error("handler error", "type", env.Type, "error", err)
			continue
		}

		if resp != nil {
			if err := c.write(*resp); err != nil {
				slog.Error("failed to send response", "type", resp.Type, "error", err)
				return
			}
			slog.Debug("sent response", "type", resp.Type, "side", c.Side)
		}
	}
}
