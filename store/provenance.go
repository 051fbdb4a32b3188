package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DecisionEntry records where a committed decision came from and what it
// was worth.
type DecisionEntry struct {
	ID         string
	Side       string
	Tick       int
	Source     string
	Group      string
	Value      float64
	Iterations int
	Terms      map[string]float64
	Actions    string
	CreatedAt  time.Time
}

// LogDecision appends e to the decision log, filling in the id and timestamp
// when they are empty.
func (s *Store) LogDecision(e DecisionEntry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var terms string
	if len(e.Terms) > 0 {
		raw, err := json.Marshal(e.Terms)
		if err != nil {
			return "", fmt.Errorf("marshal terms: %w", err)
		}
		terms = string(raw)
	}

	_, err := s.db.Exec(
		`INSERT INTO decision_log (decision_id, side, tick, source, param_group, value, iterations, terms_json, actions, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Side, e.Tick, e.Source,
		nullIfEmpty(e.Group), e.Value, e.Iterations,
		nullIfEmpty(terms), nullIfEmpty(e.Actions),
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("log decision: %w", err)
	}
	return e.ID, nil
}

// RecentDecisions returns up to limit entries for side, newest first.
func (s *Store) RecentDecisions(side string, limit int) ([]DecisionEntry, error) {
	rows, err := s.db.Query(
		`SELECT decision_id, side, tick, source, COALESCE(param_group, ''), value, iterations,
		        COALESCE(terms_json, ''), COALESCE(actions, ''), created_at
		 FROM decision_log WHERE side = ? ORDER BY id DESC LIMIT ?`, side, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionEntry
	for rows.Next() {
		var e DecisionEntry
		var terms, created string
		if err := rows.Scan(&e.ID, &e.Side, &e.Tick, &e.Source, &e.Group, &e.Value, &e.Iterations,
			&terms, &e.Actions, &created); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if terms != "" {
			if err := json.Unmarshal([]byte(terms), &e.Terms); err != nil {
				return nil, fmt.Errorf("unmarshal terms: %w", err)
			}
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
