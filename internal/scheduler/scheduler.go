// Package scheduler runs the periodic background job that generates upcoming
// instances of recurring tasks ahead of their due dates.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/taskcycle/taskcycle-api/internal/config"
	"github.com/taskcycle/taskcycle-api/internal/platform/logger"
)

// InstanceGenerator is the subset of the generation service the scheduler
// drives. Satisfied by *taskgen.Generator.
type InstanceGenerator interface {
	GenerateAll(ctx context.Context, horizon time.Time) error
}

// Scheduler wraps a cron runner around the instance generator.
type Scheduler struct {
	cron      *cron.Cron
	generator InstanceGenerator
	horizon   time.Duration
	logger    *slog.Logger
	timeFunc  func() time.Time
}

// New creates a Scheduler that runs a generation pass on the configured cron
// expression, generating instances up to now plus the configured horizon.
func New(cfg config.SchedulerConfig, generator InstanceGenerator, log *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(),
		generator: generator,
		horizon:   cfg.HorizonWindow(),
		logger:    log.With(slog.String("component", "scheduler")),
		timeFunc:  time.Now,
	}

	if _, err := s.cron.AddFunc(cfg.CronSpec, s.runPass); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", cfg.CronSpec, err)
	}

	return s, nil
}

// Start begins running scheduled generation passes.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler",
		slog.Duration("horizon", s.horizon))
	s.cron.Start()
}

// Stop stops the cron runner and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunOnce executes a single generation pass immediately, outside the cron
// schedule. Used at startup so a long-stopped server catches up without
// waiting for the next tick.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	horizon := s.timeFunc().Add(s.horizon)
	return s.generator.GenerateAll(ctx, horizon)
}

func (s *Scheduler) runPass() {
	ctx := logger.WithLogger(context.Background(), s.logger)

	start := s.timeFunc()
	horizon := start.Add(s.horizon)

	s.logger.Info("generation pass started",
		slog.Time("horizon", horizon))

	if err := s.generator.GenerateAll(ctx, horizon); err != nil {
		s.logger.Error("generation pass finished with errors",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return
	}

	s.logger.Info("generation pass finished",
		slog.Duration("elapsed", time.Since(start)))
}
