// Package viz serves committed decisions to inspection tools: a websocket
// feed of frames and the latest frame over plain HTTP.
package viz

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/nstehr/pitch/pitch-core/model"
)

// Frame is one published decision together with the state it was made on.
type Frame struct {
	Type       string             `json:"type"`
	Side       string             `json:"side"`
	Tick       int                `json:"tick"`
	Group      string             `json:"group,omitempty"`
	Source     string             `json:"source"`
	Value      float64            `json:"value"`
	Iterations int                `json:"iterations"`
	Terms      map[string]float64 `json:"terms,omitempty"`
	Actions    []string           `json:"actions"`
	State      model.WorldState   `json:"state"`
}

type initMessage struct {
	Type   string          `json:"type"`
	Latest json.RawMessage `json:"latest,omitempty"`
}

// watcherBuffer frames may queue per watcher before new ones are dropped.
const watcherBuffer = 16

type watcher struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

type Server struct {
	addr     string
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	watchers map[string]*watcher
	latest   []byte
}

func NewServer(addr string) *Server {
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		watchers: make(map[string]*watcher),
	}
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/feed", s.feed).Methods("GET")
	router.HandleFunc("/state", s.state).Methods("GET")
	return router
}

// ListenAndServe blocks until ctx is done or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("viz listening", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Publish stores f as the latest frame and queues it for every watcher. A
// watcher whose queue is full misses the frame.
func (s *Server) Publish(f Frame) {
	if f.Type == "" {
		f.Type = "decision"
	}
	b, err := json.Marshal(f)
	if err != nil {
		slog.Error("viz: marshal frame", "error", err)
		return
	}

	s.mu.Lock()
	s.latest = b
	for _, w := range s.watchers {
		select {
		case w.send <- b:
		default:
			slog.Debug("viz: watcher lagging, frame dropped", "watcher", w.id)
		}
	}
	s.mu.Unlock()
}

func (s *Server) Watchers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.watchers)
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	if latest == nil {
		http.Error(w, "no decision yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(latest)
}

func (s *Server) feed(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("viz: upgrade failed", "error", err)
		return
	}

	wt := &watcher{id: uuid.New().String(), conn: c, send: make(chan []byte, watcherBuffer)}
	s.mu.Lock()
	s.watchers[wt.id] = wt
	hello := initMessage{Type: "init", Latest: s.latest}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.watchers, wt.id)
		s.mu.Unlock()
		c.Close()
		slog.Debug("viz: watcher left", "watcher", wt.id)
	}()

	if err := c.WriteJSON(hello); err != nil {
		return
	}

	// Reading is mandatory to notice the client closing the socket.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case b := <-wt.send:
			c.SetWriteDeadline(time.Now().Add(time.Second))
			if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}
