package driven

import (
	"context"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

// SchedulerStore persists scheduler state for crash recovery.
// It stores task state and the execution log.
type SchedulerStore interface {
	// GetTask retrieves a scheduled task by ID.
	// Returns nil and no error if the task does not exist.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// ListTasks returns all scheduled tasks.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask persists a task's state.
	// Creates or updates the task based on ID.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// DeleteTask removes a task from storage.
	DeleteTask(ctx context.Context, taskID string) error

	// RecordLog appends an execution log row and sets its ID.
	RecordLog(ctx context.Context, log *domain.SchedulerLog) error

	// Logs returns recent log rows, most recent first.
	// An empty taskName matches every task.
	Logs(ctx context.Context, taskName string, limit int) ([]domain.SchedulerLog, error)

	// PruneLogs removes log rows beyond the retention limit.
	// Keeps the most recent 'keep' rows per task.
	PruneLogs(ctx context.Context, keep int) error
}
