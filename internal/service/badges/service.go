// Package badges provides badge seeding, evaluation, and awarding.
package badges

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/alumnet/engagement/internal/config"
	prommetrics "github.com/alumnet/engagement/internal/metrics"
	"github.com/alumnet/engagement/internal/models"
	"github.com/alumnet/engagement/internal/repository"
	"github.com/alumnet/engagement/pkg/logger"
)

// BadgeRepository interface for badge persistence.
type BadgeRepository interface {
	Create(badge *models.Badge) error
	GetByName(name string) (*models.Badge, error)
	GetAll() ([]models.Badge, error)
	Update(badge *models.Badge) error
	AwardBadge(userID, badgeID uint) error
	HasUserEarnedBadge(userID, badgeID uint) (bool, error)
	GetUserBadges(userID uint) ([]models.UserBadge, error)
	GetUserBadgeCount(userID uint) (int64, error)
	GetUsersWithBadge(badgeID uint) ([]models.User, error)
	GetBadgeHoldersCount(badgeID uint) (int64, error)
	GetRecentlyAwardedBadges(since time.Time) ([]models.UserBadge, error)
}

// ActivityRepository interface for counter aggregation.
type ActivityRepository interface {
	CountersFor(userID uint) (*models.ActivityCounters, error)
}

// ScoreRepository interface for score lookups.
type ScoreRepository interface {
	GetScore(userID uint) (*models.EngagementScore, error)
}

// UserRepository interface for user enumeration.
type UserRepository interface {
	List(mentorsOnly bool) ([]models.User, error)
}

// Service handles badge seeding, evaluation, and awarding.
type Service struct {
	badgeRepo    BadgeRepository
	activityRepo ActivityRepository
	scoreRepo    ScoreRepository
	userRepo     UserRepository
	log          *logger.Logger
}

// NewService creates a new badge service with concrete repository types.
func NewService(
	badgeRepo *repository.BadgeRepository,
	activityRepo *repository.ActivityRepository,
	scoreRepo *repository.EngagementRepository,
	userRepo *repository.UserRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		badgeRepo:    badgeRepo,
		activityRepo: activityRepo,
		scoreRepo:    scoreRepo,
		userRepo:     userRepo,
		log:          log,
	}
}

// NewServiceWithInterfaces creates a new badge service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	badgeRepo BadgeRepository,
	activityRepo ActivityRepository,
	scoreRepo ScoreRepository,
	userRepo UserRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		badgeRepo:    badgeRepo,
		activityRepo: activityRepo,
		scoreRepo:    scoreRepo,
		userRepo:     userRepo,
		log:          log,
	}
}

// SeedFromConfig creates or updates configured badges at startup. Badges
// removed from config are kept; earned badges are never revoked.
func (s *Service) SeedFromConfig(configured []config.BadgeConfig) error {
	for _, bc := range configured {
		criteriaJSON, err := json.Marshal(bc.Criteria)
		if err != nil {
			return fmt.Errorf("failed to marshal criteria for badge %q: %w", bc.Name, err)
		}

		existing, err := s.badgeRepo.GetByName(bc.Name)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			badge := &models.Badge{
				Name:        bc.Name,
				Description: bc.Description,
				Icon:        bc.Icon,
				Rarity:      bc.Rarity,
				Points:      bc.Points,
				Criteria:    criteriaJSON,
			}
			if err := s.badgeRepo.Create(badge); err != nil {
				return fmt.Errorf("failed to create badge %q: %w", bc.Name, err)
			}
			s.log.Info().Str("badge", bc.Name).Msg("Seeded badge")
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to look up badge %q: %w", bc.Name, err)
		}

		existing.Description = bc.Description
		existing.Icon = bc.Icon
		existing.Rarity = bc.Rarity
		existing.Points = bc.Points
		existing.Criteria = criteriaJSON
		if err := s.badgeRepo.Update(existing); err != nil {
			return fmt.Errorf("failed to update badge %q: %w", bc.Name, err)
		}
	}
	return nil
}

// metricsFor builds the metric snapshot badge predicates evaluate against.
func (s *Service) metricsFor(userID uint) (map[string]float64, error) {
	counters, err := s.activityRepo.CountersFor(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activity counters: %w", err)
	}

	metrics := map[string]float64{
		MetricProfileCompleteness: counters.ProfileCompleteness,
		MetricMentorshipSessions:  float64(counters.MentorshipSessions),
		MetricJobApplications:     float64(counters.JobApplications),
		MetricEventsAttended:      float64(counters.EventsAttended),
		MetricForumPosts:          float64(counters.ForumPosts),
		MetricForumComments:       float64(counters.ForumComments),
	}

	score, err := s.scoreRepo.GetScore(userID)
	if err == nil {
		metrics[MetricEngagementScore] = score.Total
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get score: %w", err)
	}

	badgeCount, err := s.badgeRepo.GetUserBadgeCount(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get badge count: %w", err)
	}
	metrics[MetricBadgeCount] = float64(badgeCount)

	return metrics, nil
}

// CheckAndAwardBadges evaluates every badge predicate for a user and awards
// the ones newly met. Returns the badges awarded by this call.
func (s *Service) CheckAndAwardBadges(ctx context.Context, userID uint) ([]models.Badge, error) {
	metrics, err := s.metricsFor(userID)
	if err != nil {
		return nil, err
	}

	allBadges, err := s.badgeRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}

	var awarded []models.Badge
	for _, badge := range allBadges {
		earned, err := s.badgeRepo.HasUserEarnedBadge(userID, badge.ID)
		if err != nil {
			return awarded, fmt.Errorf("failed to check badge %q: %w", badge.Name, err)
		}
		if earned {
			continue
		}

		criteria, err := ParseCriteria(badge.Criteria)
		if err != nil {
			s.log.Warn().Err(err).Str("badge", badge.Name).Msg("Badge has malformed criteria")
			continue
		}
		if !EvaluateCriteria(criteria, metrics) {
			continue
		}

		if err := s.badgeRepo.AwardBadge(userID, badge.ID); err != nil {
			return awarded, fmt.Errorf("failed to award badge %q: %w", badge.Name, err)
		}

		// badge_count predicates can chain off awards made in this pass.
		metrics[MetricBadgeCount]++
		awarded = append(awarded, badge)
		prommetrics.RecordBadgeAwarded(badge.Name, badge.Rarity)
		s.log.Info().
			Uint("user_id", userID).
			Str("badge", badge.Name).
			Str("rarity", badge.Rarity).
			Msg("Badge awarded")
	}

	return awarded, nil
}

// EvaluateAll runs badge evaluation for every user and refreshes the
// per-badge holder gauges. Returns the number of badges awarded.
func (s *Service) EvaluateAll(ctx context.Context) (int, error) {
	users, err := s.userRepo.List(false)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	total := 0
	for _, user := range users {
		awarded, err := s.CheckAndAwardBadges(ctx, user.ID)
		if err != nil {
			s.log.Error().Err(err).Uint("user_id", user.ID).Msg("Badge evaluation failed")
			continue
		}
		total += len(awarded)
	}

	if err := s.refreshHolderGauges(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to refresh badge holder gauges")
	}

	return total, nil
}

func (s *Service) refreshHolderGauges() error {
	allBadges, err := s.badgeRepo.GetAll()
	if err != nil {
		return err
	}
	for _, badge := range allBadges {
		count, err := s.badgeRepo.GetBadgeHoldersCount(badge.ID)
		if err != nil {
			return err
		}
		prommetrics.SetActiveBadgeHolders(badge.Name, int(count))
	}
	return nil
}

// Catalog returns all badges.
func (s *Service) Catalog() ([]models.Badge, error) {
	return s.badgeRepo.GetAll()
}

// UserBadges returns the badges a user has earned, most recent first.
func (s *Service) UserBadges(userID uint) ([]models.UserBadge, error) {
	return s.badgeRepo.GetUserBadges(userID)
}

// HoldersOf returns the users holding a badge, looked up by name.
func (s *Service) HoldersOf(badgeName string) (*models.Badge, []models.User, error) {
	badge, err := s.badgeRepo.GetByName(badgeName)
	if err != nil {
		return nil, nil, err
	}
	users, err := s.badgeRepo.GetUsersWithBadge(badge.ID)
	if err != nil {
		return nil, nil, err
	}
	return badge, users, nil
}

// RecentAwards returns badges awarded since a time, for announcements.
func (s *Service) RecentAwards(since time.Time) ([]models.UserBadge, error) {
	return s.badgeRepo.GetRecentlyAwardedBadges(since)
}
