package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/tubescout/tubescout/internal/batch"
	"github.com/tubescout/tubescout/internal/config"
	"github.com/tubescout/tubescout/internal/models"
)

// Service runs the configured batch on a cron schedule
type Service struct {
	config *config.Config
	runner *batch.Runner
	cron   *cron.Cron
}

// NewService creates a scheduler around a batch runner
func NewService(cfg *config.Config, runner *batch.Runner) *Service {
	return &Service{
		config: cfg,
		runner: runner,
		cron:   cron.New(),
	}
}

// Start registers the batch job and starts the cron loop
func (s *Service) Start() error {
	if s.config.BatchSchedule == "" {
		return fmt.Errorf("BATCH_SCHEDULE is required for scheduled mode")
	}
	if len(s.config.BatchKeywords) == 0 {
		return fmt.Errorf("BATCH_KEYWORDS is required for scheduled mode")
	}

	_, err := s.cron.AddFunc(s.config.BatchSchedule, func() {
		logrus.Info("Starting scheduled batch run")
		s.RunOnce()
	})
	if err != nil {
		return fmt.Errorf("invalid BATCH_SCHEDULE: %w", err)
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with cron %q for %d keywords", s.config.BatchSchedule, len(s.config.BatchKeywords))
	return nil
}

// RunOnce executes the configured batch immediately
func (s *Service) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	_, err := s.runner.Run(ctx, s.config.BatchKeywords, models.ModeVideos, models.WindowSevenDays, s.config.MaxResults, models.FormatJSON)
	if err != nil {
		logrus.Errorf("Scheduled batch run failed: %v", err)
	}
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
