package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the final state of an apply run
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSuccess   RunStatus = "success"
	RunPartial   RunStatus = "partial" // finished with failed operations
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// RunStats are the executor counters stored with a run
type RunStats struct {
	Renamed int
	Moved   int
	Deleted int
	Failed  int
	Skipped int
	Cleaned int
}

// Run is one apply invocation
type Run struct {
	ID           string
	Root         string
	PlanID       string
	Status       RunStatus
	StartedAt    time.Time
	CompletedAt  *time.Time
	Stats        RunStats
	ErrorMessage string
}

// Duration is zero while the run is still open
func (r Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// StartRun creates a run row for root and returns it. planID may be empty.
func (j *Journal) StartRun(root, planID string) (*Run, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	run := &Run{
		ID:        uuid.New().String(),
		Root:      root,
		PlanID:    planID,
		Status:    RunRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := j.db.Exec(`
		INSERT INTO runs (id, root, plan_id, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Root, nullString(planID), string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return run, nil
}

// CompleteRun closes a run with its final status and counters
func (j *Journal) CompleteRun(id string, status RunStatus, stats RunStats, errorMsg string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	res, err := j.db.Exec(`
		UPDATE runs SET
			status = ?,
			completed_at = ?,
			renamed = ?, moved = ?, deleted = ?,
			failed = ?, skipped = ?, cleaned = ?,
			error_message = ?
		WHERE id = ?`,
		string(status), time.Now().UTC(),
		stats.Renamed, stats.Moved, stats.Deleted,
		stats.Failed, stats.Skipped, stats.Cleaned,
		nullString(errorMsg), id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

const runColumns = `id, root, COALESCE(plan_id, ''), status, started_at, completed_at,
	renamed, moved, deleted, failed, skipped, cleaned, COALESCE(error_message, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var status string
	var completed sql.NullTime
	err := row.Scan(
		&run.ID, &run.Root, &run.PlanID, &status, &run.StartedAt, &completed,
		&run.Stats.Renamed, &run.Stats.Moved, &run.Stats.Deleted,
		&run.Stats.Failed, &run.Stats.Skipped, &run.Stats.Cleaned,
		&run.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	if completed.Valid {
		t := completed.Time
		run.CompletedAt = &t
	}
	return &run, nil
}

// GetRun returns the run with the given id or unique id prefix
func (j *Journal) GetRun(idOrPrefix string) (*Run, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if idOrPrefix == "" {
		return nil, ErrRunNotFound
	}

	rows, err := j.db.Query(`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY started_at DESC LIMIT 2`,
		idOrPrefix, idOrPrefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if run.ID == idOrPrefix {
			return run, nil
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRun, idOrPrefix)
	}
}

// RecentRuns returns the N most recent runs, newest first
func (j *Journal) RecentRuns(limit int) ([]*Run, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rows, err := j.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRunsBefore prunes runs started before cutoff along with their
// operations and returns how many runs were removed.
func (j *Journal) DeleteRunsBefore(cutoff time.Time) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	tx, err := j.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM operations_log WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, cutoff.UTC()); err != nil {
		return 0, err
	}
	res, err := tx.Exec(`DELETE FROM runs WHERE started_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
