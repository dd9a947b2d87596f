// Package scheduler runs the nightly recompute jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/alumnet/engagement/internal/config"
	prommetrics "github.com/alumnet/engagement/internal/metrics"
	"github.com/alumnet/engagement/internal/models"
	"github.com/alumnet/engagement/pkg/logger"
)

// Job names used in logs and metrics.
const (
	JobScoreRecompute  = "score_recompute"
	JobBadgeEvaluation = "badge_evaluation"
	JobMatrixRebuild   = "matrix_rebuild"
)

// EngagementService interface for the score recompute job.
type EngagementService interface {
	RecomputeAll(ctx context.Context) (int, error)
}

// BadgeService interface for the badge evaluation sweep.
type BadgeService interface {
	EvaluateAll(ctx context.Context) (int, error)
	RecentAwards(since time.Time) ([]models.UserBadge, error)
}

// CareerService interface for the matrix rebuild job.
type CareerService interface {
	RebuildTransitionMatrix(ctx context.Context) (int, error)
}

// Notifier announces newly awarded badges.
type Notifier interface {
	SendBadgeAnnouncements(awards []models.UserBadge) error
}

// Scheduler wires the recompute jobs onto cron schedules.
type Scheduler struct {
	cron       *cron.Cron
	cfg        config.SchedulerConfig
	engagement EngagementService
	badges     BadgeService
	career     CareerService
	notifier   Notifier
	log        *logger.Logger
}

// New creates a scheduler in the configured timezone.
func New(
	cfg config.SchedulerConfig,
	engagement EngagementService,
	badges BadgeService,
	career CareerService,
	notifier Notifier,
	log *logger.Logger,
) (*Scheduler, error) {
	location := time.Local
	if cfg.Timezone != "" {
		var err error
		location, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Timezone, err)
		}
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(location)),
		cfg:        cfg,
		engagement: engagement,
		badges:     badges,
		career:     career,
		notifier:   notifier,
		log:        log,
	}, nil
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.log.Info().Msg("Scheduler is disabled")
		return nil
	}

	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{JobScoreRecompute, s.cfg.ScoreRecomputeTime, s.runScoreRecompute},
		{JobBadgeEvaluation, s.cfg.BadgeEvaluationTime, s.runBadgeEvaluation},
		{JobMatrixRebuild, s.cfg.MatrixRebuildTime, s.runMatrixRebuild},
	}

	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(job.spec, func() {
			s.runJob(job.name, job.run)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule %s (%q): %w", job.name, job.spec, err)
		}
		s.log.Info().Str("job", job.name).Str("schedule", job.spec).Msg("Scheduled job")
	}

	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) runJob(name string, run func(ctx context.Context) error) {
	start := time.Now()
	s.log.Info().Str("job", name).Msg("Running scheduled job")

	if err := run(context.Background()); err != nil {
		prommetrics.RecordSchedulerJobRun(name, "error")
		s.log.Error().Err(err).Str("job", name).Msg("Scheduled job failed")
		return
	}

	prommetrics.RecordSchedulerJobRun(name, "success")
	prommetrics.SetSchedulerLastRun()
	s.log.Info().
		Str("job", name).
		Dur("took", time.Since(start)).
		Msg("Scheduled job finished")
}

func (s *Scheduler) runScoreRecompute(ctx context.Context) error {
	n, err := s.engagement.RecomputeAll(ctx)
	if err != nil {
		return err
	}
	s.log.Info().Int("users", n).Msg("Recomputed engagement scores")
	return nil
}

func (s *Scheduler) runBadgeEvaluation(ctx context.Context) error {
	since := time.Now().Add(-24 * time.Hour)

	awarded, err := s.badges.EvaluateAll(ctx)
	if err != nil {
		return err
	}
	s.log.Info().Int("awarded", awarded).Msg("Badge evaluation sweep finished")

	if s.notifier == nil || awarded == 0 {
		return nil
	}

	recent, err := s.badges.RecentAwards(since)
	if err != nil {
		return fmt.Errorf("failed to load recent awards: %w", err)
	}
	if err := s.notifier.SendBadgeAnnouncements(recent); err != nil {
		// Announcement failure should not fail the sweep.
		s.log.Warn().Err(err).Msg("Failed to announce badge awards")
	}
	return nil
}

func (s *Scheduler) runMatrixRebuild(ctx context.Context) error {
	rows, err := s.career.RebuildTransitionMatrix(ctx)
	if err != nil {
		return err
	}
	s.log.Info().Int("rows", rows).Msg("Transition matrix rebuilt")
	return nil
}
