// Package store persists world snapshots and the decision log in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nstehr/pitch/pitch-core/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	slot        INTEGER PRIMARY KEY,
	snapshot_id TEXT NOT NULL,
	state_json  TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS decision_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	decision_id TEXT NOT NULL,
	side        TEXT NOT NULL,
	tick        INTEGER NOT NULL,
	source      TEXT NOT NULL,
	param_group TEXT,
	value       REAL NOT NULL,
	iterations  INTEGER NOT NULL,
	terms_json  TEXT,
	actions     TEXT,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS decision_log_side ON decision_log(side, id);
`

var ErrEmptySlot = errors.New("snapshot slot is empty")

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Snapshot is one saved world state.
type Snapshot struct {
	Slot      int
	ID        string
	State     model.WorldState
	CreatedAt time.Time
}

// SaveSlot stores ws in slot, replacing whatever was there, and returns the
// new snapshot id.
func (s *Store) SaveSlot(slot int, ws model.WorldState) (string, error) {
	raw, err := json.Marshal(ws)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	id := uuid.New().String()
	_, err = s.db.Exec(
		`INSERT INTO snapshots (slot, snapshot_id, state_json, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET snapshot_id = excluded.snapshot_id,
		 state_json = excluded.state_json, created_at = excluded.created_at`,
		slot, id, string(raw), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("save slot %d: %w", slot, err)
	}
	return id, nil
}

// LoadSlot returns the snapshot in slot, or ErrEmptySlot.
func (s *Store) LoadSlot(slot int) (Snapshot, error) {
	snap := Snapshot{Slot: slot}
	var raw, created string
	err := s.db.QueryRow(
		`SELECT snapshot_id, state_json, created_at FROM snapshots WHERE slot = ?`, slot,
	).Scan(&snap.ID, &raw, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("slot %d: %w", slot, ErrEmptySlot)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load slot %d: %w", slot, err)
	}
	if err := json.Unmarshal([]byte(raw), &snap.State); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal slot %d: %w", slot, err)
	}
	snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return snap, nil
}

// Slots lists the occupied slot numbers in ascending order.
func (s *Store) Slots() ([]int, error) {
	rows, err := s.db.Query(`SELECT slot FROM snapshots ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
