// Package persistence implements the schema-versioned snapshot and
// event-log store of spec.md §6, grounded on internal/store.Store's use of
// modernc.org/sqlite via database/sql: a single-connection sqlite handle,
// CREATE TABLE IF NOT EXISTS schema, and typed row structs with
// Create/Query/Record methods.
package persistence

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion is bumped whenever the table layout changes incompatibly.
const SchemaVersion = 1

// Store holds a sqlite-backed simulation run log.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS schema_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    preset_name TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    status TEXT NOT NULL DEFAULT 'running'
);

CREATE TABLE IF NOT EXISTS snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES runs(id),
    sim_time_hr REAL NOT NULL,
    pressure_psia REAL NOT NULL,
    t_avg_f REAL NOT NULL,
    power_frac REAL NOT NULL,
    pzr_level_pct REAL NOT NULL,
    regime TEXT NOT NULL,
    recorded_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL REFERENCES runs(id),
    sim_time_hr REAL NOT NULL,
    kind TEXT NOT NULL,
    message TEXT NOT NULL,
    attributes_json TEXT DEFAULT '',
    recorded_at TEXT NOT NULL
);
`

// New opens (or creates) a sqlite database at dbPath and applies the schema.
// dbPath may be ":memory:" for an ephemeral run log.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// As in internal/store, sqlite's single-writer model means a pool of
	// more than one connection causes spurious "database is locked" errors
	// (and silently fragments :memory: databases across connections).
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(`INSERT OR REPLACE INTO schema_meta(key, value) VALUES ('version', ?)`, fmt.Sprintf("%d", SchemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("record schema version: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying *sql.DB for callers needing raw access.
func (s *Store) DB() *sql.DB { return s.db }

// Run is the metadata row for one scenario run.
type Run struct {
	ID         string
	PresetName string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string
}

// GetRun fetches a run's metadata, or nil if no such run exists.
func (s *Store) GetRun(id string) (*Run, error) {
	var r Run
	var startedAt string
	var finishedAt sql.NullString
	err := s.db.QueryRow(
		`SELECT id, preset_name, started_at, finished_at, status FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.PresetName, &startedAt, &finishedAt, &r.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	if finishedAt.Valid {
		t, err := time.Parse(time.RFC3339, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing finished_at: %w", err)
		}
		r.FinishedAt = &t
	}
	return &r, nil
}

// CreateRun records the start of a new scenario run.
func (s *Store) CreateRun(id, presetName string) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, preset_name, started_at, status) VALUES (?, ?, ?, 'running')`,
		id, presetName, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// FinishRun marks a run complete with the given terminal status.
func (s *Store) FinishRun(id, status string) error {
	_, err := s.db.Exec(
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339), id,
	)
	return err
}

// Snapshot is one recorded point-in-time plant state, spec.md §6.
type Snapshot struct {
	RunID       string
	SimTimeHr   float64
	PressurePsia float64
	TAvgF       float64
	PowerFrac   float64
	PZRLevelPct float64
	Regime      string
}

// RecordSnapshot appends one snapshot row to the run's history.
func (s *Store) RecordSnapshot(snap Snapshot) error {
	_, err := s.db.Exec(
		`INSERT INTO snapshots (run_id, sim_time_hr, pressure_psia, t_avg_f, power_frac, pzr_level_pct, regime, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.RunID, snap.SimTimeHr, snap.PressurePsia, snap.TAvgF, snap.PowerFrac, snap.PZRLevelPct, snap.Regime,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// QuerySnapshots returns every snapshot recorded for a run, in time order.
func (s *Store) QuerySnapshots(runID string) ([]Snapshot, error) {
	rows, err := s.db.Query(
		`SELECT run_id, sim_time_hr, pressure_psia, t_avg_f, power_frac, pzr_level_pct, regime
		 FROM snapshots WHERE run_id = ? ORDER BY sim_time_hr ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.RunID, &snap.SimTimeHr, &snap.PressurePsia, &snap.TAvgF, &snap.PowerFrac, &snap.PZRLevelPct, &snap.Regime); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// EventRow is one recorded simulation event, spec.md §6.
type EventRow struct {
	ID             string
	RunID          string
	SimTimeHr      float64
	Kind           string
	Message        string
	AttributesJSON string
}

// RecordEvent appends one event row to the run's event log.
func (s *Store) RecordEvent(ev EventRow) error {
	_, err := s.db.Exec(
		`INSERT INTO events (id, run_id, sim_time_hr, kind, message, attributes_json, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.RunID, ev.SimTimeHr, ev.Kind, ev.Message, ev.AttributesJSON,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// QueryEvents returns every event recorded for a run, in time order.
func (s *Store) QueryEvents(runID string) ([]EventRow, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, sim_time_hr, kind, message, attributes_json
		 FROM events WHERE run_id = ? ORDER BY sim_time_hr ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var ev EventRow
		if err := rows.Scan(&ev.ID, &ev.RunID, &ev.SimTimeHr, &ev.Kind, &ev.Message, &ev.AttributesJSON); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
