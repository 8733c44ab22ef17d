package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
)

// schedulerStore implements driven.SchedulerStore.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

// GetTask retrieves a scheduled task by ID.
// Returns nil and no error if the task does not exist.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled
		FROM scheduled_tasks WHERE id = ?
	`, taskID)

	task, err := scanScheduledTask(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil // Per interface: return nil and no error if not found
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns all scheduled tasks.
func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled
		FROM scheduled_tasks
	`)
	if err != nil {
		return nil, fmt.Errorf("querying scheduled tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.ScheduledTask //nolint:prealloc // size unknown from query
	for rows.Next() {
		task, err := scanScheduledTaskRows(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scheduled tasks: %w", err)
	}

	return tasks, nil
}

// SaveTask persists a task's state.
// Creates or updates the task based on ID.
func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scheduled_tasks (id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			interval_seconds = excluded.interval_seconds,
			last_run = excluded.last_run,
			next_run = excluded.next_run,
			last_error = excluded.last_error,
			last_success = excluded.last_success,
			enabled = excluded.enabled
	`, task.ID, task.Name, int64(task.Interval.Seconds()),
		formatNullableTime(task.LastRun), formatNullableTime(task.NextRun),
		nullString(task.LastError), formatNullableTime(task.LastSuccess),
		boolToInt(task.Enabled))

	if err != nil {
		return fmt.Errorf("saving scheduled task: %w", err)
	}
	return nil
}

// DeleteTask removes a task from storage.
func (s *schedulerStore) DeleteTask(ctx context.Context, taskID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM scheduled_tasks WHERE id = ?", taskID)
	if err != nil {
		return fmt.Errorf("deleting scheduled task: %w", err)
	}
	return nil
}

// RecordLog appends an execution log row and sets its ID.
func (s *schedulerStore) RecordLog(ctx context.Context, log *domain.SchedulerLog) error {
	if log == nil {
		return domain.ErrInvalidInput
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scheduler_logs (task_name, task_type, status, message, duration_ms, snapshot_id, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, log.TaskName,
		nullString(log.TaskType),
		string(log.Status),
		nullString(log.Message),
		log.Duration.Milliseconds(),
		nullID(log.SnapshotID),
		formatTime(log.ExecutedAt))

	if err != nil {
		return fmt.Errorf("recording scheduler log: %w", err)
	}
	if log.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading scheduler log id: %w", err)
	}
	return nil
}

// Logs returns recent log rows, most recent first.
// An empty taskName matches every task.
func (s *schedulerStore) Logs(ctx context.Context, taskName string, limit int) ([]domain.SchedulerLog, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, task_name, task_type, status, message, duration_ms, snapshot_id, executed_at
		FROM scheduler_logs
		WHERE ? = '' OR task_name = ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ?
	`, taskName, taskName, limit)
	if err != nil {
		return nil, fmt.Errorf("querying scheduler logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.SchedulerLog //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanSchedulerLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scheduler logs: %w", err)
	}

	return logs, nil
}

// PruneLogs removes log rows beyond the retention limit.
// Keeps the most recent 'keep' rows per task.
func (s *schedulerStore) PruneLogs(ctx context.Context, keep int) error {
	// Delete all rows except the most recent 'keep' per task
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM scheduler_logs
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY task_name ORDER BY executed_at DESC, id DESC) as rn
				FROM scheduler_logs
			) WHERE rn <= ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning scheduler logs: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// scanScheduledTask scans a single scheduled task row.
func scanScheduledTask(row *sql.Row) (*domain.ScheduledTask, error) {
	var task domain.ScheduledTask
	var intervalSeconds int64
	var lastRun, nextRun, lastError, lastSuccess sql.NullString
	var enabled int

	if err := row.Scan(&task.ID, &task.Name, &intervalSeconds,
		&lastRun, &nextRun, &lastError, &lastSuccess, &enabled); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning scheduled task: %w", err)
	}

	task.Interval = time.Duration(intervalSeconds) * time.Second
	task.LastRun = parseNullableTime(lastRun)
	task.NextRun = parseNullableTime(nextRun)
	if lastError.Valid {
		task.LastError = lastError.String
	}
	task.LastSuccess = parseNullableTime(lastSuccess)
	task.Enabled = enabled == 1

	return &task, nil
}

// scanScheduledTaskRows scans a scheduled task from *sql.Rows.
func scanScheduledTaskRows(rows *sql.Rows) (*domain.ScheduledTask, error) {
	var task domain.ScheduledTask
	var intervalSeconds int64
	var lastRun, nextRun, lastError, lastSuccess sql.NullString
	var enabled int

	if err := rows.Scan(&task.ID, &task.Name, &intervalSeconds,
		&lastRun, &nextRun, &lastError, &lastSuccess, &enabled); err != nil {
		return nil, fmt.Errorf("scanning scheduled task: %w", err)
	}

	task.Interval = time.Duration(intervalSeconds) * time.Second
	task.LastRun = parseNullableTime(lastRun)
	task.NextRun = parseNullableTime(nextRun)
	if lastError.Valid {
		task.LastError = lastError.String
	}
	task.LastSuccess = parseNullableTime(lastSuccess)
	task.Enabled = enabled == 1

	return &task, nil
}

// scanSchedulerLog scans a scheduler log row from *sql.Rows.
func scanSchedulerLog(rows *sql.Rows) (*domain.SchedulerLog, error) {
	var entry domain.SchedulerLog
	var taskType, message sql.NullString
	var status, executedAt string
	var durationMs int64
	var snapshotID sql.NullInt64

	if err := rows.Scan(&entry.ID, &entry.TaskName, &taskType, &status,
		&message, &durationMs, &snapshotID, &executedAt); err != nil {
		return nil, fmt.Errorf("scanning scheduler log: %w", err)
	}

	entry.TaskType = taskType.String
	entry.Status = domain.TaskStatus(status)
	entry.Message = message.String
	entry.Duration = time.Duration(durationMs) * time.Millisecond
	entry.SnapshotID = snapshotID.Int64
	entry.ExecutedAt = parseTime(executedAt)

	return &entry, nil
}
