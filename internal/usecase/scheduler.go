package usecase

import (
	"context"
	"log/slog"
	"time"

	"BrainGuard/internal/ports"
)

// Scheduler wires the interval driver with periodic analytics saves.
type Scheduler struct {
	driver    ports.Scheduler
	analytics *Analytics
	logger    *slog.Logger
}

// NewScheduler returns a helper to start/stop the periodic saver.
func NewScheduler(driver ports.Scheduler, analytics *Analytics, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, analytics: analytics, logger: logger}
}

// Start registers the save job with the provided driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.analytics == nil {
		return nil
	}

	job := func(time.Time) {
		if err := s.analytics.Save(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("periodic session save failed", "err", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop tears down the driver and persists the session one last time.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	if err := s.driver.Stop(ctx); err != nil {
		return err
	}
	if s.analytics == nil {
		return nil
	}
	return s.analytics.Save(ctx)
}
