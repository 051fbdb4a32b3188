package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestStubClient(t *testing.T) {
	c, err := NewClient("", "", "pitch")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if !c.Stub() {
		t.Fatal("expected a stub client without an address")
	}
	if err := c.Write("min", map[string]any{"cycles": 30}, time.Now()); err != nil {
		t.Errorf("stub Write: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("stub Close: %v", err)
	}
}

func TestWriteSendsLineProtocol(t *testing.T) {
	bodies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/write" {
			http.NotFound(w, r)
			return
		}
		if db := r.URL.Query().Get("db"); db != "pitch_stats" {
			t.Errorf("db = %q, want pitch_stats", db)
		}
		b, _ := io.ReadAll(r.Body)
		bodies <- string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "pitch_stats", "pitch")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()
	if c.Stub() {
		t.Fatal("expected a live client")
	}

	if err := c.Write("max", map[string]any{"cycles": 12}, time.Unix(1700000000, 0)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case body := <-bodies:
		for _, want := range []string{Measurement, "app=pitch", "side=max", "cycles=12i"} {
			if !strings.Contains(body, want) {
				t.Errorf("body %q missing %q", body, want)
			}
		}
	case <-time.After(time.Second):
		t.Fatal("server never received a write")
	}
}
