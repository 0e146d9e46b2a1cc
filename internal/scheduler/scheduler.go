package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/moviegraph/moviegraph/internal/config"
	"github.com/moviegraph/moviegraph/internal/controllers"
)

// Scheduler manages the background jobs: the per-provider rating backfills
// and the catalog completion sweep. Each job can be disabled and rescheduled
// through configuration.
type Scheduler struct {
	cron     *cron.Cron
	backfill *controllers.RatingBackfill
	sweep    *controllers.CompletionSweep
	cfg      *config.Config
	logger   *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler. Jobs run against a root context that
// Stop cancels, so a long backfill batch winds down with the process.
func NewScheduler(
	backfill *controllers.RatingBackfill,
	sweep *controllers.CompletionSweep,
	cfg *config.Config,
	logger *logrus.Logger,
) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron.New(),
		backfill: backfill,
		sweep:    sweep,
		cfg:      cfg,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start registers the enabled jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	if s.cfg.IMDbBackfillEnabled {
		spec := everyHours(s.cfg.IMDbBackfillIntervalHours)
		if _, err := s.cron.AddFunc(spec, s.runIMDbBackfill); err != nil {
			return fmt.Errorf("failed to add imdb backfill job: %w", err)
		}
		s.logger.WithField("schedule", spec).Info("IMDb rating backfill scheduled")
	}

	if s.cfg.RTBackfillEnabled {
		spec := everyHours(s.cfg.RTBackfillIntervalHours)
		if _, err := s.cron.AddFunc(spec, s.runRTBackfill); err != nil {
			return fmt.Errorf("failed to add rotten tomatoes backfill job: %w", err)
		}
		s.logger.WithField("schedule", spec).Info("Rotten Tomatoes rating backfill scheduled")
	}

	if s.cfg.CompletionSweepEnabled {
		spec := everyHours(s.cfg.CompletionSweepIntervalHrs)
		if _, err := s.cron.AddFunc(spec, s.runCompletionSweep); err != nil {
			return fmt.Errorf("failed to add completion sweep job: %w", err)
		}
		s.logger.WithField("schedule", spec).Info("Completion sweep scheduled")
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")
	return nil
}

// Stop cancels running jobs and shuts down the cron loop.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	<-s.cron.Stop().Done()
}

// everyHours builds a cron spec firing at minute 0 every n hours. Intervals
// of a day or longer collapse to daily at midnight, never shorter than asked.
func everyHours(n int) string {
	switch {
	case n <= 1:
		return "0 * * * *"
	case n >= 24:
		return "0 0 * * *"
	default:
		return fmt.Sprintf("0 */%d * * *", n)
	}
}

func (s *Scheduler) runIMDbBackfill() {
	s.logger.Info("Running scheduled IMDb rating backfill")
	if err := s.backfill.RunIMDb(s.ctx); err != nil {
		s.logger.WithError(err).Error("IMDb rating backfill failed")
		return
	}
	s.logger.Info("IMDb rating backfill completed successfully")
}

func (s *Scheduler) runRTBackfill() {
	s.logger.Info("Running scheduled Rotten Tomatoes rating backfill")
	if err := s.backfill.RunRT(s.ctx); err != nil {
		s.logger.WithError(err).Error("Rotten Tomatoes rating backfill failed")
		return
	}
	s.logger.Info("Rotten Tomatoes rating backfill completed successfully")
}

func (s *Scheduler) runCompletionSweep() {
	s.logger.Info("Running scheduled completion sweep")
	if err := s.sweep.Run(s.ctx); err != nil {
		s.logger.WithError(err).Error("Completion sweep failed")
		return
	}
	s.logger.Info("Completion sweep completed successfully")
}
