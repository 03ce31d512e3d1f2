package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is one unit of scheduled work, such as a fetch cycle.
type Task func(ctx context.Context) error

// ParseSchedule accepts a standard five-field cron spec or a descriptor such
// as "@hourly" or "@every 6h".
func ParseSchedule(spec string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return sched, nil
}

// Scheduler runs a task once at start-up and then at every activation of a
// cron schedule. Runs never overlap; an activation missed while the task was
// still running is skipped.
type Scheduler struct {
	task     Task
	schedule cron.Schedule
	now      func() time.Time
	logger   *slog.Logger
}

func NewScheduler(task Task, schedule cron.Schedule, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		task:     task,
		schedule: schedule,
		now:      time.Now,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled and then returns nil.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler")

	s.runOnce(ctx)

	for {
		next := s.schedule.Next(s.now())
		s.logger.Debug("next run scheduled", "at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("shutting down scheduler")
			return nil
		case <-timer.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := s.now()
	if err := s.task(ctx); err != nil {
		s.logger.Error("scheduled run failed", "error", err)
		return
	}
	s.logger.Info("scheduled run complete", "duration", s.now().Sub(start).Round(time.Millisecond))
}
