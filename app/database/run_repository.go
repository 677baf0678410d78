package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// RunRepo handles database operations for audit runs and their progress rows
type RunRepo struct {
	db *DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// SaveRun inserts or updates a run summary row
func (r *RunRepo) SaveRun(run AuditRun) error {
	errorsJSON, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("failed to encode run errors: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO audit_runs (id, site_id, started_at, finished_at, pages_checked, seo_issues, voice_issues, brand_issues,
			tasks_created, duplicates_skipped, tasks_failed, issues_verified, issues_fixed, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			finished_at = excluded.finished_at,
			pages_checked = excluded.pages_checked,
			seo_issues = excluded.seo_issues,
			voice_issues = excluded.voice_issues,
			brand_issues = excluded.brand_issues,
			tasks_created = excluded.tasks_created,
			duplicates_skipped = excluded.duplicates_skipped,
			tasks_failed = excluded.tasks_failed,
			issues_verified = excluded.issues_verified,
			issues_fixed = excluded.issues_fixed,
			errors = excluded.errors
	`, run.ID, run.SiteID, run.StartedAt, run.FinishedAt, run.PagesChecked,
		run.SEOIssues, run.VoiceIssues, run.BrandIssues, run.TasksCreated,
		run.DuplicatesSkipped, run.TasksFailed, run.IssuesVerified,
		run.IssuesFixed, string(errorsJSON))

	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// GetRun retrieves a run summary by its ID
func (r *RunRepo) GetRun(runID string) (*AuditRun, error) {
	var run AuditRun
	var errorsJSON string
	err := r.db.QueryRow(`
		SELECT id, site_id, started_at, finished_at, pages_checked, seo_issues, voice_issues, brand_issues,
			tasks_created, duplicates_skipped, tasks_failed, issues_verified, issues_fixed, errors
		FROM audit_runs
		WHERE id = ?
	`, runID).Scan(
		&run.ID, &run.SiteID, &run.StartedAt, &run.FinishedAt, &run.PagesChecked,
		&run.SEOIssues, &run.VoiceIssues, &run.BrandIssues, &run.TasksCreated,
		&run.DuplicatesSkipped, &run.TasksFailed, &run.IssuesVerified,
		&run.IssuesFixed, &errorsJSON,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := json.Unmarshal([]byte(errorsJSON), &run.Errors); err != nil {
		return nil, fmt.Errorf("failed to decode run errors: %w", err)
	}

	return &run, nil
}

// GetRecentRuns returns the most recently started runs
func (r *RunRepo) GetRecentRuns(limit int) ([]AuditRun, error) {
	rows, err := r.db.Query(`
		SELECT id, site_id, started_at, finished_at, pages_checked, seo_issues, voice_issues, brand_issues,
			tasks_created, duplicates_skipped, tasks_failed, issues_verified, issues_fixed, errors
		FROM audit_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent runs: %w", err)
	}
	defer rows.Close()

	var runs []AuditRun
	for rows.Next() {
		var run AuditRun
		var errorsJSON string
		err := rows.Scan(
			&run.ID, &run.SiteID, &run.StartedAt, &run.FinishedAt, &run.PagesChecked,
			&run.SEOIssues, &run.VoiceIssues, &run.BrandIssues, &run.TasksCreated,
			&run.DuplicatesSkipped, &run.TasksFailed, &run.IssuesVerified,
			&run.IssuesFixed, &errorsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if err := json.Unmarshal([]byte(errorsJSON), &run.Errors); err != nil {
			return nil, fmt.Errorf("failed to decode run errors: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}

	return runs, nil
}

// UpdateProgress upserts the progress row for a run
func (r *RunRepo) UpdateProgress(progress AuditProgress) error {
	_, err := r.db.Exec(`
		INSERT INTO audit_progress (run_id, phase, pages_done, pages_total, issues_found, tasks_created, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (run_id) DO UPDATE SET
			phase = excluded.phase,
			pages_done = excluded.pages_done,
			pages_total = excluded.pages_total,
			issues_found = excluded.issues_found,
			tasks_created = excluded.tasks_created,
			updated_at = CURRENT_TIMESTAMP
	`, progress.RunID, progress.Phase, progress.PagesDone, progress.PagesTotal,
		progress.IssuesFound, progress.TasksCreated)

	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	return nil
}

// GetProgress retrieves the progress row for a run
func (r *RunRepo) GetProgress(runID string) (*AuditProgress, error) {
	var progress AuditProgress
	err := r.db.QueryRow(`
		SELECT run_id, phase, pages_done, pages_total, issues_found, tasks_created, updated_at
		FROM audit_progress
		WHERE run_id = ?
	`, runID).Scan(
		&progress.RunID, &progress.Phase, &progress.PagesDone, &progress.PagesTotal,
		&progress.IssuesFound, &progress.TasksCreated, &progress.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return &progress, nil
}
