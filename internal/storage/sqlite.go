// Package storage keeps a history of simulation runs in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run or mode has no stored row.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    seq          INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id       TEXT    NOT NULL UNIQUE,
    profile_name TEXT    NOT NULL DEFAULT '',
    generated_at TEXT    NOT NULL,
    start_date   TEXT    NOT NULL
);

-- One row per mode of a run. Decimals are stored as text.
CREATE TABLE IF NOT EXISTS scenarios (
    run_id           TEXT    NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    mode             TEXT    NOT NULL,
    completed        INTEGER NOT NULL DEFAULT 0,
    successful       INTEGER NOT NULL DEFAULT 0,
    aborted          INTEGER NOT NULL DEFAULT 0,
    success_rate     TEXT    NOT NULL DEFAULT '0',
    min_terminal     TEXT    NOT NULL DEFAULT '0',
    max_terminal     TEXT    NOT NULL DEFAULT '0',
    seed             INTEGER NOT NULL DEFAULT 0,
    worst_trajectory BLOB,
    PRIMARY KEY (run_id, mode)
);
`

const timeLayout = time.RFC3339Nano

// ModeSummary is the stored aggregate of one scenario mode.
type ModeSummary struct {
	Mode               domain.Mode     `json:"mode"`
	Completed          int             `json:"completed"`
	Successful         int             `json:"successful"`
	Aborted            int             `json:"aborted"`
	SuccessRate        decimal.Decimal `json:"success_rate"`
	MinTerminalBalance decimal.Decimal `json:"min_terminal_balance"`
	MaxTerminalBalance decimal.Decimal `json:"max_terminal_balance"`
	Seed               int64           `json:"seed,omitempty"`
}

// RunSummary is one stored run, newest first in ListRuns.
type RunSummary struct {
	RunID       string        `json:"run_id"`
	ProfileName string        `json:"profile_name"`
	GeneratedAt time.Time     `json:"generated_at"`
	StartDate   time.Time     `json:"start_date"`
	Modes       []ModeSummary `json:"modes"`
}

// RunStore persists run summaries and worst trajectories (pure Go SQLite, no CGo).
type RunStore struct {
	db *sql.DB
}

// NewRunStore opens (or creates) the database at dsn and applies the schema.
func NewRunStore(dsn string) (*RunStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.NewRunStore: open %q: %w", dsn, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer; also keeps :memory: on one connection
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewRunStore: apply schema: %w", err)
	}
	return &RunStore{db: db}, nil
}

// Close releases the database.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// SaveReport stores the report's summary rows in one transaction. A report
// without a RunID is assigned one.
func (s *RunStore) SaveReport(ctx context.Context, report *domain.SimulationReport) error {
	if report == nil {
		return errors.New("storage.SaveReport: nil report")
	}
	if report.RunID == "" {
		report.RunID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveReport: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, profile_name, generated_at, start_date) VALUES (?, ?, ?, ?)`,
		report.RunID, report.ProfileName,
		report.GeneratedAt.UTC().Format(timeLayout), report.StartDate.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("storage.SaveReport: insert run %s: %w", report.RunID, err)
	}

	for _, sr := range report.Scenarios() {
		var worst []byte
		if w := sr.Worst(); w != nil {
			if worst, err = json.Marshal(w); err != nil {
				return fmt.Errorf("storage.SaveReport: encode %s trajectory: %w", sr.Mode, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scenarios (run_id, mode, completed, successful, aborted, success_rate,
			                        min_terminal, max_terminal, seed, worst_trajectory)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.RunID, string(sr.Mode), sr.Completed, sr.Successful, len(sr.Aborted),
			sr.SuccessRate.String(), sr.MinTerminalBalance.String(), sr.MaxTerminalBalance.String(),
			sr.Seed, worst,
		); err != nil {
			return fmt.Errorf("storage.SaveReport: insert %s: %w", sr.Mode, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns up to limit runs, newest first. limit <= 0 returns all.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT run_id, profile_name, generated_at, start_date FROM runs ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.ListRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var generated, start string
		if err := rows.Scan(&r.RunID, &r.ProfileName, &generated, &start); err != nil {
			return nil, fmt.Errorf("storage.ListRuns: scan: %w", err)
		}
		if r.GeneratedAt, err = time.Parse(timeLayout, generated); err != nil {
			return nil, fmt.Errorf("storage.ListRuns: run %s generated_at: %w", r.RunID, err)
		}
		if r.StartDate, err = time.Parse(timeLayout, start); err != nil {
			return nil, fmt.Errorf("storage.ListRuns: run %s start_date: %w", r.RunID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.ListRuns: %w", err)
	}
	rows.Close()

	for i := range runs {
		modes, err := s.modes(ctx, runs[i].RunID)
		if err != nil {
			return nil, err
		}
		runs[i].Modes = modes
	}
	return runs, nil
}

func (s *RunStore) modes(ctx context.Context, runID string) ([]ModeSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT mode, completed, successful, aborted, success_rate, min_terminal, max_terminal, seed
		 FROM scenarios WHERE run_id = ?
		 ORDER BY CASE mode WHEN 'uniform' THEN 0 WHEN 'historical' THEN 1 ELSE 2 END`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.ListRuns: query modes for %s: %w", runID, err)
	}
	defer rows.Close()

	var out []ModeSummary
	for rows.Next() {
		var m ModeSummary
		var mode, rate, lo, hi string
		if err := rows.Scan(&mode, &m.Completed, &m.Successful, &m.Aborted, &rate, &lo, &hi, &m.Seed); err != nil {
			return nil, fmt.Errorf("storage.ListRuns: scan mode: %w", err)
		}
		m.Mode = domain.Mode(mode)
		var perr error
		if m.SuccessRate, perr = decimal.NewFromString(rate); perr != nil {
			return nil, fmt.Errorf("storage.ListRuns: success_rate: %w", perr)
		}
		if m.MinTerminalBalance, perr = decimal.NewFromString(lo); perr != nil {
			return nil, fmt.Errorf("storage.ListRuns: min_terminal: %w", perr)
		}
		if m.MaxTerminalBalance, perr = decimal.NewFromString(hi); perr != nil {
			return nil, fmt.Errorf("storage.ListRuns: max_terminal: %w", perr)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetWorstTrajectory loads the stored worst trajectory of one mode of a run.
func (s *RunStore) GetWorstTrajectory(ctx context.Context, runID string, mode domain.Mode) (*domain.Trajectory, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT worst_trajectory FROM scenarios WHERE run_id = ? AND mode = ?`, runID, string(mode),
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && len(blob) == 0) {
		return nil, fmt.Errorf("%w: %s/%s", ErrRunNotFound, runID, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("storage.GetWorstTrajectory: %w", err)
	}
	var traj domain.Trajectory
	if err := json.Unmarshal(blob, &traj); err != nil {
		return nil, fmt.Errorf("storage.GetWorstTrajectory: decode: %w", err)
	}
	return &traj, nil
}
