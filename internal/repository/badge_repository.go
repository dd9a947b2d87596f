package repository

import (
	"time"

	"github.com/alumnet/engagement/internal/models"
)

// BadgeRepository handles badge-related database operations.
type BadgeRepository struct {
	db *DB
}

// NewBadgeRepository creates a new badge repository.
func NewBadgeRepository(db *DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// Create creates a new badge in the database.
func (r *BadgeRepository) Create(badge *models.Badge) error {
	return r.db.Create(badge).Error
}

// GetByID retrieves a badge by its ID.
func (r *BadgeRepository) GetByID(id uint) (*models.Badge, error) {
	var badge models.Badge
	err := r.db.First(&badge, id).Error
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

// GetByName retrieves a badge by its name.
func (r *BadgeRepository) GetByName(name string) (*models.Badge, error) {
	var badge models.Badge
	err := r.db.Where("name = ?", name).First(&badge).Error
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

// GetAll retrieves all badges from the database.
func (r *BadgeRepository) GetAll() ([]models.Badge, error) {
	var badges []models.Badge
	err := r.db.Order("created_at ASC").Find(&badges).Error
	return badges, err
}

// Update updates an existing badge in the database.
func (r *BadgeRepository) Update(badge *models.Badge) error {
	return r.db.Save(badge).Error
}

// AwardBadge awards a badge to a user. Idempotent: awarding an already
// earned badge is a no-op success.
func (r *BadgeRepository) AwardBadge(userID, badgeID uint) error {
	earned, err := r.HasUserEarnedBadge(userID, badgeID)
	if err != nil {
		return err
	}
	if earned {
		return nil
	}

	userBadge := &models.UserBadge{
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: time.Now(),
	}
	return r.db.Create(userBadge).Error
}

// GetUserBadges retrieves all badges earned by a user with badge details preloaded.
func (r *BadgeRepository) GetUserBadges(userID uint) ([]models.UserBadge, error) {
	var userBadges []models.UserBadge
	err := r.db.
		Where("user_id = ?", userID).
		Preload("Badge").
		Order("earned_at DESC").
		Find(&userBadges).Error
	return userBadges, err
}

// HasUserEarnedBadge checks if a user has earned a specific badge.
func (r *BadgeRepository) HasUserEarnedBadge(userID, badgeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUsersWithBadge retrieves all users who have earned a specific badge.
func (r *BadgeRepository) GetUsersWithBadge(badgeID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Joins("JOIN user_badges ON user_badges.user_id = users.id").
		Where("user_badges.badge_id = ?", badgeID).
		Order("user_badges.earned_at DESC").
		Find(&users).Error
	return users, err
}

// GetBadgeHoldersCount returns the number of users who have earned a specific badge.
func (r *BadgeRepository) GetBadgeHoldersCount(badgeID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.UserBadge{}).
		Where("badge_id = ?", badgeID).
		Count(&count).Error
	return count, err
}

// GetUserBadgeCount returns the total number of badges a user has earned.
func (r *BadgeRepository) GetUserBadgeCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.UserBadge{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// GetUserBadgePoints sums the point values of a user's earned badges.
func (r *BadgeRepository) GetUserBadgePoints(userID uint) (int64, error) {
	var points *int64
	err := r.db.Model(&models.UserBadge{}).
		Select("SUM(badges.points)").
		Joins("JOIN badges ON badges.id = user_badges.badge_id").
		Where("user_badges.user_id = ?", userID).
		Scan(&points).Error
	if err != nil || points == nil {
		return 0, err
	}
	return *points, nil
}

// GetRecentlyAwardedBadges retrieves badges awarded since a time, with the
// badge and user preloaded for notification payloads.
func (r *BadgeRepository) GetRecentlyAwardedBadges(since time.Time) ([]models.UserBadge, error) {
	var userBadges []models.UserBadge
	err := r.db.
		Where("earned_at >= ?", since).
		Preload("Badge").
		Preload("User").
		Order("earned_at DESC").
		Find(&userBadges).Error
	return userBadges, err
}
