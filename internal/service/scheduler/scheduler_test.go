package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alumnet/engagement/internal/config"
	"github.com/alumnet/engagement/internal/models"
	"github.com/alumnet/engagement/pkg/logger"
)

type mockEngagement struct {
	recomputeAllFunc func(ctx context.Context) (int, error)
	calls            int
}

func (m *mockEngagement) RecomputeAll(ctx context.Context) (int, error) {
	m.calls++
	if m.recomputeAllFunc != nil {
		return m.recomputeAllFunc(ctx)
	}
	return 0, nil
}

type mockBadges struct {
	evaluateAllFunc func(ctx context.Context) (int, error)
	recentFunc      func(since time.Time) ([]models.UserBadge, error)
}

func (m *mockBadges) EvaluateAll(ctx context.Context) (int, error) {
	if m.evaluateAllFunc != nil {
		return m.evaluateAllFunc(ctx)
	}
	return 0, nil
}

func (m *mockBadges) RecentAwards(since time.Time) ([]models.UserBadge, error) {
	if m.recentFunc != nil {
		return m.recentFunc(since)
	}
	return nil, nil
}

type mockCareer struct {
	rebuildFunc func(ctx context.Context) (int, error)
}

func (m *mockCareer) RebuildTransitionMatrix(ctx context.Context) (int, error) {
	if m.rebuildFunc != nil {
		return m.rebuildFunc(ctx)
	}
	return 0, nil
}

type mockNotifier struct {
	sent [][]models.UserBadge
	err  error
}

func (m *mockNotifier) SendBadgeAnnouncements(awards []models.UserBadge) error {
	m.sent = append(m.sent, awards)
	return m.err
}

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:             true,
		ScoreRecomputeTime:  "0 2 * * *",
		BadgeEvaluationTime: "30 2 * * *",
		MatrixRebuildTime:   "0 3 * * 0",
		Timezone:            "UTC",
	}
}

func newTestScheduler(t *testing.T, cfg config.SchedulerConfig, eng *mockEngagement, badges *mockBadges, career *mockCareer, notifier *mockNotifier) *Scheduler {
	t.Helper()

	log := logger.New("error", "console", "stdout")
	s, err := New(cfg, eng, badges, career, notifier, log)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestStartRegistersJobs(t *testing.T) {
	s := newTestScheduler(t, testConfig(), &mockEngagement{}, &mockBadges{}, &mockCareer{}, &mockNotifier{})

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	if got := len(s.cron.Entries()); got != 3 {
		t.Errorf("Registered %d cron entries, want 3", got)
	}
}

func TestStartRejectsBadCronSpec(t *testing.T) {
	cfg := testConfig()
	cfg.ScoreRecomputeTime = "not a cron spec"

	s := newTestScheduler(t, cfg, &mockEngagement{}, &mockBadges{}, &mockCareer{}, &mockNotifier{})

	if err := s.Start(); err == nil {
		t.Error("Start should reject an invalid cron expression")
	}
}

func TestStartDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	s := newTestScheduler(t, cfg, &mockEngagement{}, &mockBadges{}, &mockCareer{}, &mockNotifier{})

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if got := len(s.cron.Entries()); got != 0 {
		t.Errorf("Disabled scheduler registered %d entries, want 0", got)
	}
}

func TestNewRejectsBadTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Mars/Olympus_Mons"

	log := logger.New("error", "console", "stdout")
	if _, err := New(cfg, &mockEngagement{}, &mockBadges{}, &mockCareer{}, &mockNotifier{}, log); err == nil {
		t.Error("New should reject an unknown timezone")
	}
}

func TestRunScoreRecompute(t *testing.T) {
	eng := &mockEngagement{}
	s := newTestScheduler(t, testConfig(), eng, &mockBadges{}, &mockCareer{}, &mockNotifier{})

	if err := s.runScoreRecompute(context.Background()); err != nil {
		t.Fatalf("runScoreRecompute failed: %v", err)
	}
	if eng.calls != 1 {
		t.Errorf("RecomputeAll called %d times, want 1", eng.calls)
	}
}

func TestRunBadgeEvaluationAnnouncesAwards(t *testing.T) {
	awards := []models.UserBadge{{UserID: 1, BadgeID: 2}}
	badges := &mockBadges{
		evaluateAllFunc: func(ctx context.Context) (int, error) { return 1, nil },
		recentFunc:      func(since time.Time) ([]models.UserBadge, error) { return awards, nil },
	}
	notifier := &mockNotifier{}

	s := newTestScheduler(t, testConfig(), &mockEngagement{}, badges, &mockCareer{}, notifier)

	if err := s.runBadgeEvaluation(context.Background()); err != nil {
		t.Fatalf("runBadgeEvaluation failed: %v", err)
	}
	if len(notifier.sent) != 1 || len(notifier.sent[0]) != 1 {
		t.Errorf("Announcements sent = %v, want one batch of one award", notifier.sent)
	}
}

func TestRunBadgeEvaluationSkipsAnnouncementWhenNothingAwarded(t *testing.T) {
	notifier := &mockNotifier{}
	s := newTestScheduler(t, testConfig(), &mockEngagement{}, &mockBadges{}, &mockCareer{}, notifier)

	if err := s.runBadgeEvaluation(context.Background()); err != nil {
		t.Fatalf("runBadgeEvaluation failed: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("Expected no announcements, got %d", len(notifier.sent))
	}
}

func TestRunBadgeEvaluationToleratesNotifierFailure(t *testing.T) {
	badges := &mockBadges{
		evaluateAllFunc: func(ctx context.Context) (int, error) { return 2, nil },
		recentFunc: func(since time.Time) ([]models.UserBadge, error) {
			return []models.UserBadge{{UserID: 1}}, nil
		},
	}
	notifier := &mockNotifier{err: errors.New("webhook down")}

	s := newTestScheduler(t, testConfig(), &mockEngagement{}, badges, &mockCareer{}, notifier)

	if err := s.runBadgeEvaluation(context.Background()); err != nil {
		t.Errorf("Notifier failure should not fail the sweep: %v", err)
	}
}

func TestRunMatrixRebuildPropagatesError(t *testing.T) {
	career := &mockCareer{
		rebuildFunc: func(ctx context.Context) (int, error) {
			return 0, errors.New("db down")
		},
	}

	s := newTestScheduler(t, testConfig(), &mockEngagement{}, &mockBadges{}, career, &mockNotifier{})

	if err := s.runMatrixRebuild(context.Background()); err == nil {
		t.Error("runMatrixRebuild should propagate the rebuild error")
	}
}
