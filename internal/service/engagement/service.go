// Package engagement provides engagement score recomputation and leaderboards.
package engagement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/alumnet/engagement/internal/cache"
	"github.com/alumnet/engagement/internal/config"
	prommetrics "github.com/alumnet/engagement/internal/metrics"
	"github.com/alumnet/engagement/internal/models"
	"github.com/alumnet/engagement/internal/repository"
	"github.com/alumnet/engagement/pkg/logger"
)

// ErrUserNotFound signals that no user or score row exists for the request.
var ErrUserNotFound = errors.New("user not found")

// ScoreRepository interface for score and contribution operations.
type ScoreRepository interface {
	AppendContribution(record *models.ContributionRecord) error
	GetScore(userID uint) (*models.EngagementScore, error)
	UpsertScore(score *models.EngagementScore) error
	TopByScore(limit int, roleFilter string) ([]models.EngagementScore, error)
	RankOf(userID uint) (int, error)
	UpdateAllRanks() error
	ScoredUserIDs() ([]uint, error)
}

// ActivityRepository interface for counter aggregation.
type ActivityRepository interface {
	CountersFor(userID uint) (*models.ActivityCounters, error)
}

// UserRepository interface for user lookups.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	List(mentorsOnly bool) ([]models.User, error)
}

// BadgeRepository interface for badge counts shown on the leaderboard.
type BadgeRepository interface {
	GetUserBadgeCount(userID uint) (int64, error)
	GetUserBadges(userID uint) ([]models.UserBadge, error)
}

// Entry represents a single entry in the leaderboard.
type Entry struct {
	UserID     uint    `json:"user_id"`
	Username   string  `json:"username"`
	Role       string  `json:"role,omitempty"`
	Total      float64 `json:"total"`
	Level      string  `json:"level"`
	BadgeCount int     `json:"badge_count"`
	Rank       int     `json:"rank"`
}

// Leaderboard is the cacheable leaderboard payload.
type Leaderboard struct {
	Entries     []Entry   `json:"entries"`
	RoleFilter  string    `json:"role_filter,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Service handles engagement score recomputation and leaderboard generation.
type Service struct {
	scoreRepo    ScoreRepository
	activityRepo ActivityRepository
	userRepo     UserRepository
	badgeRepo    BadgeRepository
	cache        cache.Cache
	weights      config.WeightsConfig
	levels       config.LevelsConfig
	cacheTTL     time.Duration
	log          *logger.Logger
}

// NewService creates a new engagement service with concrete repository types.
func NewService(
	scoreRepo *repository.EngagementRepository,
	activityRepo *repository.ActivityRepository,
	userRepo *repository.UserRepository,
	badgeRepo *repository.BadgeRepository,
	c cache.Cache,
	cfg *config.Config,
	log *logger.Logger,
) *Service {
	return &Service{
		scoreRepo:    scoreRepo,
		activityRepo: activityRepo,
		userRepo:     userRepo,
		badgeRepo:    badgeRepo,
		cache:        c,
		weights:      cfg.Engagement.Weights,
		levels:       cfg.Engagement.Levels,
		cacheTTL:     cfg.Leaderboard.LeaderboardTTL(),
		log:          log,
	}
}

// NewServiceWithInterfaces creates a new engagement service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	scoreRepo ScoreRepository,
	activityRepo ActivityRepository,
	userRepo UserRepository,
	badgeRepo BadgeRepository,
	c cache.Cache,
	weights config.WeightsConfig,
	levels config.LevelsConfig,
	cacheTTL time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		scoreRepo:    scoreRepo,
		activityRepo: activityRepo,
		userRepo:     userRepo,
		badgeRepo:    badgeRepo,
		cache:        c,
		weights:      weights,
		levels:       levels,
		cacheTTL:     cacheTTL,
		log:          log,
	}
}

// CalculateScore recomputes a user's engagement score from the current
// activity counters. Idempotent: repeated calls with unchanged activity
// converge to the same score row.
func (s *Service) CalculateScore(ctx context.Context, userID uint, trigger string) (*models.EngagementScore, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	counters, err := s.activityRepo.CountersFor(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activity counters: %w", err)
	}

	breakdown := s.breakdownFor(counters)
	var total float64
	for _, points := range breakdown {
		total += points
	}

	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	score := &models.EngagementScore{
		UserID:    userID,
		Total:     total,
		Breakdown: breakdownJSON,
		Level:     s.LevelFor(total),
	}
	if err := s.scoreRepo.UpsertScore(score); err != nil {
		return nil, fmt.Errorf("failed to persist score: %w", err)
	}

	rank, err := s.scoreRepo.RankOf(userID)
	if err != nil {
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to compute rank")
	} else {
		score.Rank = rank
		if err := s.scoreRepo.UpsertScore(score); err != nil {
			return nil, fmt.Errorf("failed to persist rank: %w", err)
		}
	}

	prommetrics.RecordScoreRecomputed(trigger, total)
	s.log.Debug().
		Uint("user_id", userID).
		Float64("total", total).
		Str("level", score.Level).
		Int("rank", score.Rank).
		Msg("Engagement score recomputed")

	return score, nil
}

// breakdownFor applies the weight schedule to raw activity counters.
func (s *Service) breakdownFor(c *models.ActivityCounters) map[string]float64 {
	return map[string]float64{
		models.CategoryProfile:    c.ProfileCompleteness * s.weights.ProfileCompleteness,
		models.CategoryMentorship: float64(c.MentorshipSessions) * s.weights.MentorshipSession,
		models.CategoryJobs:       float64(c.JobApplications) * s.weights.JobApplication,
		models.CategoryEvents:     float64(c.EventsAttended) * s.weights.EventAttendance,
		models.CategoryForum: float64(c.ForumPosts)*s.weights.ForumPost +
			float64(c.ForumComments)*s.weights.ForumComment,
	}
}

// LevelFor maps a total score to its level label.
func (s *Service) LevelFor(total float64) string {
	switch {
	case total >= s.levels.Legend:
		return models.LevelLegend
	case total >= s.levels.Veteran:
		return models.LevelVeteran
	case total >= s.levels.Active:
		return models.LevelActive
	default:
		return models.LevelBeginner
	}
}

// RecordContribution appends an entry to the contribution log and refreshes
// the user's score.
func (s *Service) RecordContribution(ctx context.Context, userID uint, category string, points float64, reference string) error {
	record := &models.ContributionRecord{
		UserID:    userID,
		Category:  category,
		Points:    points,
		Reference: reference,
	}
	if err := s.scoreRepo.AppendContribution(record); err != nil {
		return fmt.Errorf("failed to append contribution: %w", err)
	}

	_, err := s.CalculateScore(ctx, userID, "api")
	return err
}

// RecomputeAll recomputes every scored user and refreshes rank positions.
// Run by the scheduler; concurrent runs may interleave and produce
// transiently stale ranks, which is acceptable for advisory ranking.
func (s *Service) RecomputeAll(ctx context.Context) (int, error) {
	ids, err := s.scoreRepo.ScoredUserIDs()
	if err != nil {
		return 0, fmt.Errorf("failed to list scored users: %w", err)
	}

	recomputed := 0
	for _, id := range ids {
		if _, err := s.CalculateScore(ctx, id, "scheduler"); err != nil {
			s.log.Error().Err(err).Uint("user_id", id).Msg("Failed to recompute score")
			continue
		}
		recomputed++
	}

	if err := s.scoreRepo.UpdateAllRanks(); err != nil {
		return recomputed, fmt.Errorf("failed to update ranks: %w", err)
	}
	return recomputed, nil
}

// GetLeaderboard returns the top-N users by total score, optionally filtered
// by profile role. Served from cache when warm; cached payloads may be stale
// up to the configured TTL.
func (s *Service) GetLeaderboard(ctx context.Context, limit int, roleFilter string) (*Leaderboard, error) {
	key := fmt.Sprintf("leaderboard:%d:%s", limit, roleFilter)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
			var board Leaderboard
			if err := json.Unmarshal([]byte(cached), &board); err == nil {
				prommetrics.RecordLeaderboardRequest("cache")
				return &board, nil
			}
		}
	}

	scores, err := s.scoreRepo.TopByScore(limit, roleFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to get top scores: %w", err)
	}

	entries := make([]Entry, 0, len(scores))
	for i, score := range scores {
		user, err := s.userRepo.GetByID(score.UserID)
		if err != nil {
			s.log.Warn().Err(err).Uint("user_id", score.UserID).Msg("Failed to get user")
			continue
		}

		badgeCount, err := s.badgeRepo.GetUserBadgeCount(score.UserID)
		if err != nil {
			s.log.Warn().Err(err).Uint("user_id", score.UserID).Msg("Failed to get badge count")
		}

		entries = append(entries, Entry{
			UserID:     score.UserID,
			Username:   user.Username,
			Total:      score.Total,
			Level:      score.Level,
			BadgeCount: int(badgeCount),
			Rank:       i + 1,
		})
	}

	board := &Leaderboard{
		Entries:     entries,
		RoleFilter:  roleFilter,
		GeneratedAt: time.Now().UTC(),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(board); err == nil {
			if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
				s.log.Warn().Err(err).Msg("Failed to cache leaderboard")
			}
		}
	}

	prommetrics.RecordLeaderboardRequest("database")
	return board, nil
}
