package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driving"
	"github.com/custodia-labs/flowwatch/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

const (
	logRetention   = 100
	statusLogLimit = 5
	minInterval    = time.Minute
)

// Scheduler runs the built-in tasks from a single supervisor loop.
// Due tasks execute synchronously inside the loop, so two tasks never
// overlap. RunNow shares the same execution lock.
type Scheduler struct {
	config   domain.SchedulerConfig
	store    driven.SchedulerStore
	pipeline driving.Pipeline
	log      *slog.Logger
	now      func() time.Time

	// execMu serialises task executions.
	execMu sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	pipeline driving.Pipeline,
) *Scheduler {
	if config.Tick <= 0 {
		config.Tick = domain.DefaultSchedulerTick
	}
	return &Scheduler{
		config:   config,
		store:    store,
		pipeline: pipeline,
		log:      logger.Component("scheduler"),
		now:      time.Now,
	}
}

// Start begins the scheduler loop. This method blocks until ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	if err := s.initialiseTasks(ctx); err != nil {
		s.log.Warn("failed to initialise tasks", "error", err)
	}

	err := s.run(ctx, stopCh)

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return err
}

// Stop gracefully shuts down the scheduler. A task already executing
// runs to completion first.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseTasks ensures every built-in task exists in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	var errs []error
	for _, def := range domain.TaskDefinitions {
		if err := s.ensureTask(ctx, def, s.config.GetTaskConfig(def.ID)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", def.ID, err))
		}
	}
	return errors.Join(errs...)
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, def domain.TaskDefinition, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, def.ID)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       def.ID,
			Name:     def.Name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  s.now().Add(cfg.Interval),
		}
	} else {
		// Update interval if changed
		if cfg.Interval > 0 && task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = s.now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	s.log.Info("scheduler started", "tick", s.config.Tick)

	// Catch up on tasks that fell due while the process was down
	s.checkAndRunDueTasks(ctx, stopCh)

	ticker := time.NewTicker(s.config.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-stopCh:
			s.log.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx, stopCh)
		}
	}
}

// checkAndRunDueTasks executes every due task in definition order.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context, stopCh <-chan struct{}) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		s.log.Warn("failed to list tasks", "error", err)
		return
	}
	sortTasks(tasks)

	for i := range tasks {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		default:
		}

		task := &tasks[i]
		if !task.Due(s.now()) {
			continue
		}
		def, known := domain.LookupTask(task.ID)
		if !known {
			s.log.Warn("skipping unknown task", "task", task.ID)
			continue
		}

		entry := s.execute(ctx, def, task)
		task.NextRun = entry.ExecutedAt.Add(entry.Duration).Add(task.Interval)
		s.saveTask(ctx, task)
	}
}

// RunNow executes a task immediately. NextRun is left untouched.
func (s *Scheduler) RunNow(ctx context.Context, taskID string) (*domain.SchedulerLog, error) {
	def, ok := domain.LookupTask(taskID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskUnknown, taskID)
	}

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	entry := s.execute(ctx, def, task)
	if task != nil {
		s.saveTask(ctx, task)
	}
	return entry, nil
}

// execute runs one task, classifies the outcome and writes exactly one
// log row. task may be nil when the task was never persisted.
func (s *Scheduler) execute(ctx context.Context, def domain.TaskDefinition, task *domain.ScheduledTask) *domain.SchedulerLog {
	s.execMu.Lock()
	defer s.execMu.Unlock()

	entry := &domain.SchedulerLog{
		TaskName:   def.ID,
		TaskType:   def.Type,
		ExecutedAt: s.now(),
	}

	// Started tasks run to completion.
	runCtx := context.WithoutCancel(ctx)
	report, err := s.invoke(runCtx, def.ID)
	entry.Duration = s.now().Sub(entry.ExecutedAt)
	entry.Status, entry.Message = classifyRun(def.ID, report, err)
	if report != nil && report.Snapshot != nil {
		entry.SnapshotID = report.Snapshot.ID
	}

	if task != nil {
		task.LastRun = entry.ExecutedAt
		if entry.Status == domain.TaskSuccess {
			task.LastError = ""
			task.LastSuccess = entry.ExecutedAt.Add(entry.Duration)
		} else {
			task.LastError = entry.Message
		}
	}

	level := slog.LevelInfo
	if entry.Status != domain.TaskSuccess {
		level = slog.LevelWarn
	}
	s.log.Log(ctx, level, "task finished",
		"task", entry.TaskName,
		"status", entry.Status,
		"duration", entry.Duration,
		"message", entry.Message)

	if err := s.store.RecordLog(runCtx, entry); err != nil {
		s.log.Warn("failed to record log", "task", entry.TaskName, "error", err)
	}
	if err := s.store.PruneLogs(runCtx, logRetention); err != nil {
		s.log.Warn("failed to prune logs", "error", err)
	}
	return entry
}

// invoke dispatches to the pipeline pass for a task, converting a panic
// into an error.
func (s *Scheduler) invoke(ctx context.Context, taskID string) (report *domain.RunReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = &taskPanic{value: r}
		}
	}()

	if s.pipeline == nil {
		return nil, errors.New("no pipeline configured")
	}
	switch taskID {
	case domain.TaskIDSyncHotspots:
		return s.pipeline.QuickAnalysis(ctx, domain.SelectAll)
	case domain.TaskIDGenerateAlerts:
		return s.pipeline.AlertCheck(ctx)
	case domain.TaskIDDeepAnalysis:
		return s.pipeline.FullAnalysis(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskUnknown, taskID)
	}
}

type taskPanic struct {
	value any
}

func (p *taskPanic) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

// classifyRun maps a pass outcome onto a log status and message.
func classifyRun(taskID string, report *domain.RunReport, err error) (domain.TaskStatus, string) {
	var tp *taskPanic
	switch {
	case err == nil:
		return domain.TaskSuccess, runMessage(taskID, report)
	case errors.As(err, &tp), domain.IsPersistence(err):
		return domain.TaskError, err.Error()
	default:
		return domain.TaskFailed, err.Error()
	}
}

func runMessage(taskID string, report *domain.RunReport) string {
	if report == nil || report.Snapshot == nil {
		return "completed"
	}
	snap := report.Snapshot
	msg := fmt.Sprintf("snapshot %d: score %d (%s), %d/%d sources",
		snap.ID, snap.TotalScore, snap.FlowLevel, snap.SuccessCount, snap.TotalPlatforms)

	switch taskID {
	case domain.TaskIDGenerateAlerts:
		msg += fmt.Sprintf(", %d alerts", len(report.Alerts))
		if report.Notified {
			msg += " notified"
		}
	case domain.TaskIDDeepAnalysis:
		if report.Analysis != nil {
			msg += ", analysis by " + report.Analysis.Model
		} else {
			msg += ", numeric only"
		}
	}
	return msg
}

func (s *Scheduler) saveTask(ctx context.Context, task *domain.ScheduledTask) {
	if err := s.store.SaveTask(context.WithoutCancel(ctx), task); err != nil {
		s.log.Warn("failed to save task", "task", task.ID, "error", err)
	}
}

// SetEnabled enables or disables a task.
func (s *Scheduler) SetEnabled(ctx context.Context, taskID string, enabled bool) error {
	task, err := s.loadOrDefine(ctx, taskID)
	if err != nil {
		return err
	}
	task.Enabled = enabled
	if err := s.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	s.log.Info("task updated", "task", taskID, "enabled", enabled)
	return nil
}

// SetInterval changes a task's interval and reschedules it from now.
func (s *Scheduler) SetInterval(ctx context.Context, taskID string, interval time.Duration) error {
	if interval < minInterval {
		return fmt.Errorf("interval %s below %s: %w", interval, minInterval, domain.ErrInvalidInput)
	}
	task, err := s.loadOrDefine(ctx, taskID)
	if err != nil {
		return err
	}
	task.Interval = interval
	task.NextRun = s.now().Add(interval)
	if err := s.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	s.log.Info("task updated", "task", taskID, "interval", interval)
	return nil
}

// loadOrDefine returns the stored task or a new one from configuration.
func (s *Scheduler) loadOrDefine(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	def, ok := domain.LookupTask(taskID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskUnknown, taskID)
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		cfg := s.config.GetTaskConfig(taskID)
		task = &domain.ScheduledTask{
			ID:       def.ID,
			Name:     def.Name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  s.now().Add(cfg.Interval),
		}
	}
	return task, nil
}

// Status returns every known task with its recent executions.
func (s *Scheduler) Status(ctx context.Context) ([]domain.TaskStatusView, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	sortTasks(tasks)

	views := make([]domain.TaskStatusView, 0, len(tasks))
	for _, t := range tasks {
		def, _ := domain.LookupTask(t.ID)
		logs, err := s.store.Logs(ctx, t.ID, statusLogLimit)
		if err != nil {
			return nil, fmt.Errorf("logs for %s: %w", t.ID, err)
		}
		views = append(views, domain.TaskStatusView{Task: t, Type: def.Type, RecentLogs: logs})
	}
	return views, nil
}

// sortTasks orders tasks by definition order, unknown tasks last.
func sortTasks(tasks []domain.ScheduledTask) {
	order := make(map[string]int, len(domain.TaskDefinitions))
	for i, d := range domain.TaskDefinitions {
		order[d.ID] = i
	}
	rank := func(id string) int {
		if i, ok := order[id]; ok {
			return i
		}
		return len(order)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := rank(tasks[i].ID), rank(tasks[j].ID)
		if ri != rj {
			return ri < rj
		}
		return tasks[i].ID < tasks[j].ID
	})
}
