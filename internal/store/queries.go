package store

import (
	"database/sql"
	"fmt"
	"time"
)

// timestampLayout is fixed-width so text ordering matches time ordering.
// Parsing with RFC3339 accepts the fraction.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// InsertRun records a run and the shortcuts it touched, returning the run ID.
func (s *Store) InsertRun(run *Run, shortcuts []string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO runs (operation, target, variant, backup_path, outcome, detail, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.Exec(query,
		run.Operation,
		run.Target,
		run.Variant,
		run.BackupPath,
		run.Outcome,
		run.Detail,
		run.StartedAt.UTC().Format(timestampLayout),
		run.FinishedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, wrapQueryErr(err, "failed to insert run")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	for _, path := range shortcuts {
		_, err := tx.Exec(`INSERT OR IGNORE INTO run_shortcuts (run_id, path) VALUES (?, ?)`, id, path)
		if err != nil {
			return 0, fmt.Errorf("failed to insert shortcut %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	run.ID = id
	return id, nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id int64) (*Run, error) {
	query := `
		SELECT id, operation, target, variant, backup_path, outcome, detail, started_at, finished_at
		FROM runs
		WHERE id = ?
	`

	run, err := scanRun(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, wrapQueryErr(err, "failed to get run %d", id)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	query := `
		SELECT id, operation, target, variant, backup_path, outcome, detail, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrapQueryErr(err, "failed to list runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetRunShortcuts returns the shortcut paths recorded for a run.
func (s *Store) GetRunShortcuts(runID int64) ([]string, error) {
	rows, err := s.db.Query(`SELECT path FROM run_shortcuts WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, wrapQueryErr(err, "failed to get shortcuts for run %d", runID)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan shortcut: %w", err)
		}
		paths = append(paths, path)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shortcuts: %w", err)
	}

	return paths, nil
}

// DeleteRun removes a run and its shortcuts.
func (s *Store) DeleteRun(id int64) error {
	result, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return wrapQueryErr(err, "failed to delete run %d", id)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run %d not found", id)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var variant, backupPath, detail sql.NullString
	var startedAt, finishedAt string

	err := row.Scan(
		&run.ID,
		&run.Operation,
		&run.Target,
		&variant,
		&backupPath,
		&run.Outcome,
		&detail,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Variant = variant.String
	run.BackupPath = backupPath.String
	run.Detail = detail.String

	run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at for run %d: %w", run.ID, err)
	}
	run.FinishedAt, err = time.Parse(time.RFC3339, finishedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse finished_at for run %d: %w", run.ID, err)
	}

	return &run, nil
}
