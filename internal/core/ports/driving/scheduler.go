package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

// Scheduler runs the recurring sync, alert and analysis tasks.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the loop after any running task completes.
	Stop() error

	// RunNow executes a task immediately. The task's next scheduled
	// run is not changed.
	RunNow(ctx context.Context, taskID string) (*domain.SchedulerLog, error)

	// SetEnabled enables or disables a task.
	SetEnabled(ctx context.Context, taskID string, enabled bool) error

	// SetInterval changes a task's interval and reschedules it from now.
	SetInterval(ctx context.Context, taskID string, interval time.Duration) error

	// Status returns every task with its recent executions.
	Status(ctx context.Context) ([]domain.TaskStatusView, error)
}
