package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-linerecord-pipeline/internal/model"
)

// ErrNotFound is returned when a job id is unknown.
var ErrNotFound = errors.New("job not found")

// DB stores jobs, their errors, metrics and results in sqlite.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at dbPath.
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// one writer at a time keeps sqlite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &DB{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *DB) migrate() error {
	// Create tables if not exists
	tables := []string{`
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		spec TEXT,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`, `
	CREATE TABLE IF NOT EXISTS job_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT,
		stage TEXT,
		error_message TEXT,
		created_at DATETIME
	);`, `
	CREATE TABLE IF NOT EXISTS job_metrics (
		job_id TEXT PRIMARY KEY,
		metrics TEXT,
		updated_at DATETIME
	);`, `
	CREATE TABLE IF NOT EXISTS job_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT,
		position INTEGER,
		kind TEXT,
		result_key TEXT,
		result_value INTEGER,
		fields TEXT
	);`,
	}

	for _, stmt := range tables {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *DB) Close() error {
	return s.db.Close()
}

// SaveJob stores a new pipeline job
func (s *DB) SaveJob(jobID string, spec model.JobSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.db.Exec(`INSERT INTO jobs (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		jobID, string(specJSON), model.StatusPending, now, now)
	return err
}

// UpdateJobStatus updates job status
func (s *DB) UpdateJobStatus(jobID string, status string) error {
	now := time.Now().UTC()
	res, err := s.db.Exec(`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`, status, now, jobID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveJobError records an error for a job
func (s *DB) SaveJobError(jobID, stage string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := s.db.Exec(`INSERT INTO job_errors (job_id, stage, error_message, created_at) VALUES (?, ?, ?, ?)`,
		jobID, stage, err.Error(), now)
	return e
}

// GetJobErrors returns the errors recorded for a job, oldest first
func (s *DB) GetJobErrors(jobID string) ([]model.JobError, error) {
	rows, err := s.db.Query(`SELECT id, job_id, stage, error_message, created_at FROM job_errors WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	errs := []model.JobError{}
	for rows.Next() {
		var e model.JobError
		if err := rows.Scan(&e.ID, &e.JobID, &e.Stage, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		errs = append(errs, e)
	}
	return errs, rows.Err()
}

// ListJobs returns all jobs with basic info
func (s *DB) ListJobs() ([]model.JobSummary, error) {
	rows, err := s.db.Query(`SELECT id, status, created_at, updated_at FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []model.JobSummary{}
	for rows.Next() {
		var j model.JobSummary
		if err := rows.Scan(&j.ID, &j.Status, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// GetJob fetches full job spec and status
func (s *DB) GetJob(jobID string) (*model.Job, error) {
	var specJSON string
	job := model.Job{ID: jobID}

	err := s.db.QueryRow(`SELECT spec, status, created_at, updated_at FROM jobs WHERE id = ?`, jobID).
		Scan(&specJSON, &job.Status, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(specJSON), &job.Spec); err != nil {
		return nil, fmt.Errorf("failed to decode job spec: %w", err)
	}
	return &job, nil
}

// SaveJobMetrics upserts the metrics of a job run
func (s *DB) SaveJobMetrics(m model.JobMetrics) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO job_metrics (job_id, metrics, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET metrics = excluded.metrics, updated_at = excluded.updated_at`,
		m.JobID, string(data), time.Now().UTC())
	return err
}

// GetJobMetrics returns the metrics of the last run of a job
func (s *DB) GetJobMetrics(jobID string) (*model.JobMetrics, error) {
	var data string
	err := s.db.QueryRow(`SELECT metrics FROM job_metrics WHERE job_id = ?`, jobID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var m model.JobMetrics
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ReplaceResults swaps the stored results of a job in one transaction
func (s *DB) ReplaceResults(jobID string, entries []model.ResultEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM job_results WHERE job_id = ?`, jobID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO job_results (job_id, position, kind, result_key, result_value, fields) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		var fields []byte
		if e.Fields != nil {
			if fields, err = json.Marshal(e.Fields); err != nil {
				return err
			}
		}
		if _, err := stmt.Exec(jobID, e.Position, e.Kind, e.Key, e.Value, string(fields)); err != nil {
			return fmt.Errorf("failed to insert result %d: %w", e.Position, err)
		}
	}
	return tx.Commit()
}

// GetResults returns the stored results of a job in position order
func (s *DB) GetResults(jobID string, limit int) ([]model.ResultEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT position, kind, result_key, result_value, fields FROM job_results
		WHERE job_id = ? ORDER BY position LIMIT ?`, jobID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.ResultEntry{}
	for rows.Next() {
		var e model.ResultEntry
		var fields string
		if err := rows.Scan(&e.Position, &e.Kind, &e.Key, &e.Value, &fields); err != nil {
			return nil, err
		}
		if fields != "" {
			if err := json.Unmarshal([]byte(fields), &e.Fields); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
