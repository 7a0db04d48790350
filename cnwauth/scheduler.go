package cnwauth

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Task is a named periodic action driven by the Scheduler.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs named tasks on independent timers until its context is
// cancelled. Each task has its own cadence: a slow or failing task never
// delays another. Task errors and panics are logged per tick and the loop
// keeps going.
type Scheduler struct {
	log zerolog.Logger

	mu      sync.Mutex
	tasks   []Task
	started bool
	wg      sync.WaitGroup
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets the logger for per-tick diagnostics.
func WithSchedulerLogger(log zerolog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.log = log
	}
}

// NewScheduler creates an empty Scheduler.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTask registers a task. Tasks must be added before Start; a task with a
// non-positive interval is rejected.
func (s *Scheduler) AddTask(name string, interval time.Duration, run func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.log.Warn().Str("task", name).Msg("scheduler already started, task ignored")
		return
	}
	if interval <= 0 {
		s.log.Warn().Str("task", name).Dur("interval", interval).Msg("non-positive interval, task ignored")
		return
	}
	s.tasks = append(s.tasks, Task{Name: name, Interval: interval, Run: run})
}

// Start launches one loop per task and returns immediately. Calling Start
// again is a no-op. Cancelling ctx stops all loops; use Wait to block until
// they have exited.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.log.Warn().Msg("scheduler already started")
		return
	}
	s.started = true

	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.runLoop(ctx, t)
	}
	s.log.Info().Int("tasks", len(s.tasks)).Msg("scheduler started")
}

// Wait blocks until all task loops have exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context, t Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	s.log.Debug().Str("task", t.Name).Dur("interval", t.Interval).Msg("task loop started")

	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Str("task", t.Name).Msg("task loop stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx, t)
		}
	}
}

// runOnce executes a single tick, containing the task's error or panic.
func (s *Scheduler) runOnce(ctx context.Context, t Task) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("task", t.Name).Interface("panic", r).Msg("task panicked")
		}
	}()

	if err := t.Run(ctx); err != nil {
		s.log.Error().Str("task", t.Name).Err(err).Msg("task failed")
	}
}
