package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/tripweaver/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS plan_runs (
			run_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			preferences TEXT,
			plan TEXT,
			error TEXT,
			started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plan_runs_started ON plan_runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_plan_runs_status ON plan_runs(status, started_at)`,
		`CREATE TABLE IF NOT EXISTS run_events (
			event_id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			ts INTEGER NOT NULL,
			stage TEXT NOT NULL,
			level TEXT NOT NULL,
			message TEXT NOT NULL,
			counters TEXT,
			FOREIGN KEY (run_id) REFERENCES plan_runs(run_id)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_run_events_seq ON run_events(run_id, seq)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateRun inserts a run row.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *domain.PlanRun) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plan_runs (run_id, status, origin, destination, start_date, end_date, preferences, started_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Status, run.Origin, run.Destination, run.StartDate, run.EndDate, nullStringBytes(run.Preferences), run.StartedAt)
	return err
}

// CompleteRun records the final status, plan and error of a run.
func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status domain.RunStatus, plan []byte, errMsg string, endedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE plan_runs SET status = ?, plan = ?, error = ?, ended_at = ? WHERE run_id = ?`,
		status, nullStringBytes(plan), nullString(errMsg), endedAt, runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// GetRun returns the run, or nil when it does not exist.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*domain.PlanRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, status, origin, destination, start_date, end_date, preferences, plan, error, started_at, ended_at FROM plan_runs WHERE run_id = ?`,
		runID)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first. The plan body is left out;
// an empty status matches every run.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int, status domain.RunStatus) ([]domain.PlanRun, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT run_id, status, origin, destination, start_date, end_date, preferences, NULL, error, started_at, ended_at FROM plan_runs`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY started_at DESC, run_id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []domain.PlanRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// CreateEvent inserts a stage event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *domain.RunEvent) error {
	var counters sql.NullString
	if len(event.Counters) > 0 {
		data, err := json.Marshal(event.Counters)
		if err != nil {
			return fmt.Errorf("failed to encode counters: %w", err)
		}
		counters = sql.NullString{String: string(data), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_events (event_id, run_id, seq, ts, stage, level, message, counters) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.EventID, event.RunID, event.Seq, event.Ts, event.Stage, event.Level, event.Message, counters)
	return err
}

// GetEvents returns the events of a run in sequence order, starting after afterSeq.
func (s *SQLiteStore) GetEvents(ctx context.Context, runID string, afterSeq int, limit int) ([]domain.RunEvent, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, run_id, seq, ts, stage, level, message, counters FROM run_events WHERE run_id = ? AND seq > ? ORDER BY seq ASC LIMIT ?`,
		runID, afterSeq, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []domain.RunEvent{}
	for rows.Next() {
		var e domain.RunEvent
		var counters sql.NullString
		if err := rows.Scan(&e.EventID, &e.RunID, &e.Seq, &e.Ts, &e.Stage, &e.Level, &e.Message, &counters); err != nil {
			return nil, err
		}
		if counters.Valid && counters.String != "" {
			if err := json.Unmarshal([]byte(counters.String), &e.Counters); err != nil {
				return nil, fmt.Errorf("failed to decode counters of %s: %w", e.EventID, err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*domain.PlanRun, error) {
	var run domain.PlanRun
	var prefs, plan, errMsg sql.NullString
	var endedAt sql.NullTime
	if err := row.Scan(&run.RunID, &run.Status, &run.Origin, &run.Destination, &run.StartDate, &run.EndDate,
		&prefs, &plan, &errMsg, &run.StartedAt, &endedAt); err != nil {
		return nil, err
	}
	if prefs.Valid {
		run.Preferences = json.RawMessage(prefs.String)
	}
	if plan.Valid {
		run.Plan = json.RawMessage(plan.String)
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	if endedAt.Valid {
		run.EndedAt = &endedAt.Time
	}
	return &run, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringBytes(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
