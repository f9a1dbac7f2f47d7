package services

import (
	"fmt"
	"time"

	"github.com/cityhall/employee-registry/internal/metrics"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SessionSweeper drops expired registration sessions
type SessionSweeper interface {
	Sweep() int
}

// CronService manages scheduled background jobs
type CronService struct {
	cron     *cron.Cron
	sweeper  SessionSweeper
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *logrus.Logger
}

// NewCronService creates a new CronService
func NewCronService(sweeper SessionSweeper, interval time.Duration, m *metrics.Metrics, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:     cron.New(),
		sweeper:  sweeper,
		interval: interval,
		metrics:  m,
		logger:   logger,
	}
}

// Start schedules the jobs and starts the scheduler
func (s *CronService) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("session sweep interval must be positive, got %s", s.interval)
	}
	schedule := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(schedule, s.sweepSessionsJob); err != nil {
		return fmt.Errorf("failed to schedule session sweep job: %w", err)
	}
	s.logger.WithField("interval", s.interval.String()).Info("Scheduled: sweep expired registration sessions")

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// RunSweepNow runs the session sweep immediately
func (s *CronService) RunSweepNow() int {
	return s.sweep()
}

// JobCount returns the number of scheduled jobs
func (s *CronService) JobCount() int {
	return len(s.cron.Entries())
}

func (s *CronService) sweepSessionsJob() {
	s.sweep()
}

func (s *CronService) sweep() int {
	start := time.Now()
	removed := s.sweeper.Sweep()
	s.metrics.AddSessionsSwept(removed)

	if removed > 0 {
		s.logger.WithFields(logrus.Fields{
			"removed":     removed,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("Expired registration sessions removed")
	}
	return removed
}
