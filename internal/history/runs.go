package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Mode is the command that produced a run.
type Mode string

const (
	ModeAsk         Mode = "ask"
	ModeOrchestrate Mode = "orchestrate"
)

// Status is the final state of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one recorded ask or orchestrate invocation.
type Run struct {
	ID        string
	Mode      Mode
	Query     string
	Answer    string
	Status    Status
	Error     string
	StartedAt time.Time
	Duration  time.Duration
	Agents    []AgentRecord
}

// AgentRecord is one agent's outcome within an orchestrated run.
type AgentRecord struct {
	Index     int
	Question  string
	Status    string
	Response  string
	Execution time.Duration
}

// ErrNotFound is returned by GetRun for unknown ids.
var ErrNotFound = errors.New("run not found")

// SaveRun inserts a run and its agent records atomically.
func (db *DB) SaveRun(ctx context.Context, r *Run) error {
	return db.transaction(func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, mode, query, answer, status, error, started_at, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, string(r.Mode), r.Query, r.Answer, string(r.Status), r.Error,
			formatTime(r.StartedAt), r.Duration.Milliseconds())
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, a := range r.Agents {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO agent_outcomes (run_id, agent_index, question, status, response, execution_ms)
				VALUES (?, ?, ?, ?, ?, ?)
			`, r.ID, a.Index, a.Question, a.Status, a.Response, a.Execution.Milliseconds())
			if err != nil {
				return fmt.Errorf("insert agent outcome %d: %w", a.Index, err)
			}
		}
		return nil
	})
}

// GetRun loads a run with its agent records.
func (db *DB) GetRun(ctx context.Context, id string) (*Run, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	row := db.conn.QueryRowContext(ctx, `
		SELECT id, mode, query, answer, status, error, started_at, duration_ms
		FROM runs WHERE id = ?
	`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT agent_index, question, status, response, execution_ms
		FROM agent_outcomes WHERE run_id = ? ORDER BY agent_index
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get agent outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a AgentRecord
		var ms int64
		if err := rows.Scan(&a.Index, &a.Question, &a.Status, &a.Response, &ms); err != nil {
			return nil, fmt.Errorf("scan agent outcome: %w", err)
		}
		a.Execution = time.Duration(ms) * time.Millisecond
		r.Agents = append(r.Agents, a)
	}
	return r, rows.Err()
}

// ListRuns returns the most recent runs first, without agent records.
// A limit of zero or less returns every run.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, mode, query, answer, status, error, started_at, duration_ms
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// PurgeOlderThan deletes runs started before now minus age.
// Returns the number of runs deleted.
func (db *DB) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-age))

	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge old runs: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var r Run
	var mode, status, startedAt string
	var ms int64
	if err := s.Scan(&r.ID, &mode, &r.Query, &r.Answer, &status, &r.Error, &startedAt, &ms); err != nil {
		return nil, err
	}
	r.Mode = Mode(mode)
	r.Status = Status(status)
	r.Duration = time.Duration(ms) * time.Millisecond
	t, err := parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	r.StartedAt = t
	return &r, nil
}
