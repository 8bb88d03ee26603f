package database

import (
	"fmt"
	"time"
)

// OperationStatus is the execution outcome of one journaled operation
type OperationStatus string

const (
	StatusOK      OperationStatus = "ok"
	StatusFailed  OperationStatus = "failed"
	StatusSkipped OperationStatus = "skipped"
)

// OperationLog represents a logged operation
type OperationLog struct {
	ID            int64
	RunID         string
	Seq           int
	OperationType string
	SourcePath    string
	TargetPath    string
	Reason        string
	Status        OperationStatus
	ErrorMessage  string
	Duration      time.Duration
	BytesFreed    int64
	ExecutedAt    time.Time
}

// LogOperations records the executed operations of a run in one transaction.
// Seq is assigned from the slice order.
func (j *Journal) LogOperations(runID string, ops []OperationLog) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO operations_log (
			run_id, seq, operation_type, source_path, target_path, reason,
			status, error_message, duration_ms, bytes_freed, executed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, op := range ops {
		executedAt := op.ExecutedAt
		if executedAt.IsZero() {
			executedAt = now
		}
		_, err := stmt.Exec(
			runID, i+1, op.OperationType, op.SourcePath, nullString(op.TargetPath), nullString(op.Reason),
			string(op.Status), nullString(op.ErrorMessage), op.Duration.Milliseconds(), op.BytesFreed, executedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to log operation %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// RunOperations returns the operations of a run in execution order
func (j *Journal) RunOperations(runID string) ([]OperationLog, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rows, err := j.db.Query(`
		SELECT id, run_id, seq, operation_type, source_path, COALESCE(target_path, ''),
		       COALESCE(reason, ''), status, COALESCE(error_message, ''),
		       COALESCE(duration_ms, 0), COALESCE(bytes_freed, 0), executed_at
		FROM operations_log
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []OperationLog
	for rows.Next() {
		var op OperationLog
		var status string
		var durationMS int64
		err := rows.Scan(
			&op.ID, &op.RunID, &op.Seq, &op.OperationType, &op.SourcePath, &op.TargetPath,
			&op.Reason, &status, &op.ErrorMessage,
			&durationMS, &op.BytesFreed, &op.ExecutedAt,
		)
		if err != nil {
			return nil, err
		}
		op.Status = OperationStatus(status)
		op.Duration = time.Duration(durationMS) * time.Millisecond
		ops = append(ops, op)
	}

	return ops, rows.Err()
}

// SourceHistory returns every journaled operation that moved, renamed or
// deleted path, newest first.
func (j *Journal) SourceHistory(path string) ([]OperationLog, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rows, err := j.db.Query(`
		SELECT run_id, seq, operation_type, source_path, COALESCE(target_path, ''), status, executed_at
		FROM operations_log
		WHERE source_path = ? OR target_path = ?
		ORDER BY executed_at DESC, seq DESC
	`, path, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []OperationLog
	for rows.Next() {
		var op OperationLog
		var status string
		if err := rows.Scan(&op.RunID, &op.Seq, &op.OperationType, &op.SourcePath, &op.TargetPath, &status, &op.ExecutedAt); err != nil {
			return nil, err
		}
		op.Status = OperationStatus(status)
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// GetOperationStats returns successful operation counts by type and the total
// bytes freed by deletes.
func (j *Journal) GetOperationStats() (map[string]int, int64, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rows, err := j.db.Query(`
		SELECT operation_type, COUNT(*) FROM operations_log WHERE status = 'ok' GROUP BY operation_type
	`)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var opType string
		var count int
		if err := rows.Scan(&opType, &count); err != nil {
			return nil, 0, err
		}
		counts[opType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var totalFreed int64
	err = j.db.QueryRow(`
		SELECT COALESCE(SUM(bytes_freed), 0) FROM operations_log WHERE operation_type = 'delete' AND status = 'ok'
	`).Scan(&totalFreed)
	if err != nil {
		return nil, 0, err
	}

	return counts, totalFreed, nil
}
