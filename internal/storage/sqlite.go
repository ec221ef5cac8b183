package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/senko/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		job_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		total INTEGER NOT NULL,
		scored INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		partial INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON analysis_runs(created_at);

	CREATE TABLE IF NOT EXISTS analysis_results (
		run_id TEXT NOT NULL,
		resume_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		overall_score REAL NOT NULL,
		grade TEXT NOT NULL,
		confidence TEXT NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (run_id, resume_id),
		FOREIGN KEY (run_id) REFERENCES analysis_runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_results_run_id ON analysis_results(run_id);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveRun stores the run and its results in a single transaction. Result rows
// keep their slice order as the rank position.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run, results []*models.AnalysisResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (id, job_id, mode, total, scored, skipped, partial, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.JobID, run.Mode, run.Total, run.Scored, run.Skipped, run.Partial, run.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO analysis_results (run_id, resume_id, position, overall_score, grade, confidence, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, result := range results {
		payload, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal result %s: %w", result.ResumeID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID, result.ResumeID, i+1, result.OverallScore,
			string(result.Grade), string(result.Confidence), string(payload),
		); err != nil {
			return fmt.Errorf("failed to insert result %s: %w", result.ResumeID, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run and its results ordered by rank position.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, []*models.AnalysisResult, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, job_id, mode, total, scored, skipped, partial, created_at
		FROM analysis_runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.JobID, &run.Mode, &run.Total, &run.Scored, &run.Skipped, &run.Partial, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM analysis_results WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []*models.AnalysisResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, nil, fmt.Errorf("failed to scan result: %w", err)
		}
		var result models.AnalysisResult
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		results = append(results, &result)
	}

	return &run, results, rows.Err()
}

// ListRuns returns runs newest first. A non-positive limit falls back to 50.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, mode, total, scored, skipped, partial, created_at
		FROM analysis_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.JobID, &run.Mode, &run.Total, &run.Scored,
			&run.Skipped, &run.Partial, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// CountRuns returns the total number of stored runs.
func (s *SQLiteStore) CountRuns(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analysis_runs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
