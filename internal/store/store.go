// Package store handles SQLite persistence of run history.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/choirsched/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			responses TEXT NOT NULL,
			assignment TEXT NOT NULL,
			slots INTEGER NOT NULL,
			people INTEGER NOT NULL,
			assigned_cells INTEGER NOT NULL,
			fairness_score REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_cells (
			run_id TEXT NOT NULL,
			slot_index INTEGER NOT NULL,
			slot TEXT NOT NULL,
			part TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (run_id, slot_index, part, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_run_cells_name ON run_cells(name);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun stores a completed run and its roster cells, returning the run ID.
func (s *Store) RecordRun(ctx context.Context, run model.RunRecord) (id string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	id = uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, responses, assignment, slots, people, assigned_cells, fairness_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Responses,
		run.Assignment,
		run.Slots,
		run.People,
		run.AssignedCells,
		run.FairnessScore,
	)
	if err != nil {
		return "", err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_cells (run_id, slot_index, slot, part, position, name)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for slotIdx, slot := range run.Roster.Slots {
		for _, part := range model.Parts {
			for pos, name := range run.Roster.Names(slot, part) {
				if _, err = stmt.ExecContext(ctx, id, slotIdx, slot, string(part), pos, name); err != nil {
					return "", err
				}
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, responses, assignment, slots, people, assigned_cells, fairness_score
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunSummary
	for rows.Next() {
		var r model.RunSummary
		var startedAt string
		if err := rows.Scan(&r.ID, &startedAt, &r.Responses, &r.Assignment, &r.Slots, &r.People, &r.AssignedCells, &r.FairnessScore); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, err
		}
		r.StartedAt = parsed
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// RunRoster rebuilds the roster stored for a run.
func (s *Store) RunRoster(ctx context.Context, runID string) (model.Roster, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot, part, name FROM run_cells
		WHERE run_id = ?
		ORDER BY slot_index ASC, part ASC, position ASC`, runID)
	if err != nil {
		return model.Roster{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var roster model.Roster
	for rows.Next() {
		var slot, part, name string
		if err := rows.Scan(&slot, &part, &name); err != nil {
			return model.Roster{}, err
		}
		p := model.Part(part)
		roster.Set(slot, p, append(roster.Names(slot, p), name))
	}
	if err := rows.Err(); err != nil {
		return model.Roster{}, err
	}
	return roster, nil
}

// NameCounts returns how many cells named each person across all recorded runs.
func (s *Store) NameCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, COUNT(*) FROM run_cells GROUP BY name`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	counts := map[string]int{}
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[name] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
