// Package scheduler runs the periodic valuation refresh on a cron
// schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"tradesense/internal/logger"
)

// Scheduler manages the cron tasks for one session.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

// New creates a scheduler using six-field cron specs (with seconds).
func New(ctx context.Context) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		ctx:  ctx,
	}
}

// RegisterValuation schedules the valuation refresh task.
func (s *Scheduler) RegisterValuation(spec string, task func(ctx context.Context)) error {
	if _, err := s.cron.AddFunc(spec, func() { task(s.ctx) }); err != nil {
		return fmt.Errorf("register valuation task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info(s.ctx, "Scheduler started")
}

// Stop stops the scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	logger.Info(s.ctx, "Scheduler stopped")
}
