package domain

import "time"

// ScheduledTask represents a recurring background task.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// Name is a human-readable name for the task.
	Name string

	// Interval defines how often the task should run.
	Interval time.Duration

	// LastRun is when the task last ran.
	LastRun time.Time

	// NextRun is when the task should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time

	// Enabled indicates whether the task is active.
	Enabled bool
}

// Due reports whether the task should run at now.
func (t *ScheduledTask) Due(now time.Time) bool {
	if !t.Enabled {
		return false
	}
	return t.NextRun.IsZero() || !t.NextRun.After(now)
}

// TaskStatus is the outcome class of a task execution.
type TaskStatus string

// Task statuses.
const (
	// TaskSuccess means the pass completed and persisted.
	TaskSuccess TaskStatus = "success"

	// TaskFailed means the pass returned a non-persistence failure,
	// such as every source failing.
	TaskFailed TaskStatus = "failed"

	// TaskError means persistence failed or the task panicked.
	TaskError TaskStatus = "error"
)

// SchedulerLog is one row per task execution. Append-only.
type SchedulerLog struct {
	ID       int64
	TaskName string
	TaskType string
	Status   TaskStatus
	Message  string
	Duration time.Duration

	// SnapshotID is zero when the run produced no snapshot.
	SnapshotID int64

	ExecutedAt time.Time
}

// TaskStatusView pairs a task with its recent executions.
type TaskStatusView struct {
	Task       ScheduledTask
	Type       string
	RecentLogs []SchedulerLog
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// Tick is how often the loop checks for due tasks.
	Tick time.Duration

	// TaskConfigs holds per-task configuration.
	TaskConfigs map[string]TaskConfig
}

// TaskConfig holds configuration for a single task.
type TaskConfig struct {
	// Enabled indicates whether this task should run.
	Enabled bool

	// Interval defines how often the task should run.
	Interval time.Duration
}

// GetTaskConfig returns the configuration for a specific task.
// Returns a zero TaskConfig if the task is not configured.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerTick is the polling interval of the scheduler loop.
const DefaultSchedulerTick = 30 * time.Second

// DefaultSchedulerConfig returns sensible defaults for the scheduler.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		Tick:    DefaultSchedulerTick,
		TaskConfigs: map[string]TaskConfig{
			TaskIDSyncHotspots: {
				Enabled:  true,
				Interval: 30 * time.Minute,
			},
			TaskIDGenerateAlerts: {
				Enabled:  true,
				Interval: 60 * time.Minute,
			},
			TaskIDDeepAnalysis: {
				Enabled:  true,
				Interval: 120 * time.Minute,
			},
		},
	}
}

// Task IDs for built-in tasks.
const (
	TaskIDSyncHotspots   = "sync_hotspots"
	TaskIDGenerateAlerts = "generate_alerts"
	TaskIDDeepAnalysis   = "deep_analysis"
)

// TaskDefinition describes a built-in task.
type TaskDefinition struct {
	ID   string
	Name string
	Type string
}

// TaskDefinitions lists the built-in tasks in registration order.
var TaskDefinitions = []TaskDefinition{
	{ID: TaskIDSyncHotspots, Name: "Hotspot Sync", Type: "light_sync"},
	{ID: TaskIDGenerateAlerts, Name: "Alert Check", Type: "alert_check"},
	{ID: TaskIDDeepAnalysis, Name: "Deep Analysis", Type: "full_analysis"},
}

// LookupTask returns the definition for a task ID.
func LookupTask(id string) (TaskDefinition, bool) {
	for _, d := range TaskDefinitions {
		if d.ID == id {
			return d, true
		}
	}
	return TaskDefinition{}, false
}
