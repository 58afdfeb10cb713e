// Package journal records generation runs and per-clause outcomes in SQLite,
// so a long batch can be audited after the fact.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/clausegen/internal/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	input_path   TEXT NOT NULL,
	output_path  TEXT NOT NULL,
	provider     TEXT,
	model        TEXT,
	workers      INTEGER NOT NULL DEFAULT 1,
	status       TEXT NOT NULL,
	total        INTEGER NOT NULL DEFAULT 0,
	succeeded    INTEGER NOT NULL DEFAULT 0,
	failed       INTEGER NOT NULL DEFAULT 0,
	skipped      INTEGER NOT NULL DEFAULT 0,
	interrupted  INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	started_at   TEXT NOT NULL,
	finished_at  TEXT
);

CREATE TABLE IF NOT EXISTS outcomes (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	item_index   INTEGER NOT NULL,
	fingerprint  TEXT NOT NULL,
	status       TEXT NOT NULL,
	error        TEXT,
	recorded_at  TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
CREATE INDEX IF NOT EXISTS idx_outcomes_fingerprint ON outcomes(fingerprint);
`

// Run states stored in runs.status
const (
	RunRunning     = "running"
	RunCompleted   = "completed"
	RunInterrupted = "interrupted"
	RunFailed      = "failed"
)

// ErrRunNotFound is returned for an unknown run ID
var ErrRunNotFound = errors.New("run not found")

// Store is a SQLite run journal
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal at path and applies the schema
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// one writer; also keeps an in-memory database on a single connection
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate journal: %w", err)
		}
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// RunInfo describes one generation run
type RunInfo struct {
	ID         string
	Input      string
	Output     string
	Provider   string
	Model      string
	Workers    int
	Status     string
	Summary    pipeline.Summary
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
}

// OutcomeRow is one stored per-clause outcome
type OutcomeRow struct {
	Index       int
	Fingerprint string
	Status      pipeline.Status
	Error       string
	RecordedAt  time.Time
}

// Run is an open journal entry; it satisfies pipeline.OutcomeRecorder
type Run struct {
	store *Store
	id    string
}

// ID returns the run's UUID
func (r *Run) ID() string {
	return r.id
}

// StartRun inserts a running entry with a fresh UUID. ID, Status and the
// timestamps in info are ignored.
func (s *Store) StartRun(ctx context.Context, info RunInfo) (*Run, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, input_path, output_path, provider, model, workers, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, info.Input, info.Output, info.Provider, info.Model, info.Workers, RunRunning, s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &Run{store: s, id: id}, nil
}

// RecordOutcome stores one clause outcome
func (r *Run) RecordOutcome(ctx context.Context, o pipeline.Outcome) error {
	var errText sql.NullString
	if o.Err != nil {
		errText = sql.NullString{String: o.Err.Error(), Valid: true}
	}
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, item_index, fingerprint, status, error, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.id, o.Index, o.Fingerprint, string(o.Status), errText, r.store.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// Finish stores the final counts. The status is derived from runErr:
// nil is completed, a context error is interrupted, anything else failed.
func (r *Run) Finish(ctx context.Context, summary pipeline.Summary, runErr error) error {
	status := RunCompleted
	var errText sql.NullString
	if runErr != nil {
		status = RunFailed
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			status = RunInterrupted
		}
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}

	res, err := r.store.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, total = ?, succeeded = ?, failed = ?, skipped = ?, interrupted = ?,
		 error = ?, finished_at = ? WHERE run_id = ?`,
		status, summary.Total, summary.Succeeded, summary.Failed, summary.Skipped, summary.Interrupted,
		errText, r.store.timestamp(), r.id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", r.id, ErrRunNotFound)
	}
	return nil
}

// Runs lists the most recent runs first; limit <= 0 lists all
func (s *Store) Runs(ctx context.Context, limit int) ([]RunInfo, error) {
	query := `SELECT run_id, input_path, output_path, provider, model, workers, status,
		total, succeeded, failed, skipped, interrupted, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run by ID
func (s *Store) GetRun(ctx context.Context, id string) (RunInfo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, input_path, output_path, provider, model, workers, status,
		total, succeeded, failed, skipped, interrupted, error, started_at, finished_at
		FROM runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return run, err
}

// Outcomes returns a run's outcomes in the order they were recorded
func (s *Store) Outcomes(ctx context.Context, runID string) ([]OutcomeRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_index, fingerprint, status, error, recorded_at
		 FROM outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []OutcomeRow
	for rows.Next() {
		var (
			o        OutcomeRow
			status   string
			errText  sql.NullString
			recorded string
		)
		if err := rows.Scan(&o.Index, &o.Fingerprint, &status, &errText, &recorded); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Status = pipeline.Status(status)
		o.Error = errText.String
		o.RecordedAt, _ = time.Parse(time.RFC3339Nano, recorded)
		out = append(out, o)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunInfo, error) {
	var (
		run                     RunInfo
		provider, model, errTxt sql.NullString
		started                 string
		finished                sql.NullString
	)
	err := sc.Scan(&run.ID, &run.Input, &run.Output, &provider, &model, &run.Workers, &run.Status,
		&run.Summary.Total, &run.Summary.Succeeded, &run.Summary.Failed, &run.Summary.Skipped, &run.Summary.Interrupted,
		&errTxt, &started, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunInfo{}, err
		}
		return RunInfo{}, fmt.Errorf("scan run: %w", err)
	}

	run.Provider = provider.String
	run.Model = model.String
	run.Error = errTxt.String
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	if finished.Valid {
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return run, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
