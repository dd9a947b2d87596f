package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/alumnet/engagement/internal/models"
)

// EngagementRepository handles engagement score and contribution log operations.
type EngagementRepository struct {
	db *DB
}

// NewEngagementRepository creates a new engagement repository.
func NewEngagementRepository(db *DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// AppendContribution appends an entry to the contribution log.
// The log is append-only; entries are never updated or deleted.
func (r *EngagementRepository) AppendContribution(record *models.ContributionRecord) error {
	return r.db.Create(record).Error
}

// GetContributions retrieves a user's contribution log entries since a time.
func (r *EngagementRepository) GetContributions(userID uint, since time.Time) ([]models.ContributionRecord, error) {
	var records []models.ContributionRecord
	err := r.db.
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

// GetScore retrieves the engagement score row for a user.
func (r *EngagementRepository) GetScore(userID uint) (*models.EngagementScore, error) {
	var score models.EngagementScore
	err := r.db.Where("user_id = ?", userID).First(&score).Error
	if err != nil {
		return nil, err
	}
	return &score, nil
}

// UpsertScore creates or replaces the engagement score row for a user.
// ScoreUpdatedAt only advances when the total changes, so ties on the
// leaderboard keep rewarding whoever reached the score first.
func (r *EngagementRepository) UpsertScore(score *models.EngagementScore) error {
	var existing models.EngagementScore
	err := r.db.Where("user_id = ?", score.UserID).First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		if score.ScoreUpdatedAt.IsZero() {
			score.ScoreUpdatedAt = time.Now()
		}
		return r.db.Create(score).Error
	}
	if err != nil {
		return err
	}

	score.ID = existing.ID
	score.CreatedAt = existing.CreatedAt
	if existing.Total == score.Total {
		score.ScoreUpdatedAt = existing.ScoreUpdatedAt
	} else if score.ScoreUpdatedAt.IsZero() {
		score.ScoreUpdatedAt = time.Now()
	}
	return r.db.Save(score).Error
}

// TopByScore returns the top-N score rows ordered by total descending.
// Tie-break: earliest score_updated_at first, then ascending user ID, so
// the ordering is total and stable (documented leaderboard decision).
// An empty roleFilter means all roles.
func (r *EngagementRepository) TopByScore(limit int, roleFilter string) ([]models.EngagementScore, error) {
	var scores []models.EngagementScore
	query := r.db.Model(&models.EngagementScore{}).
		Order("total DESC, score_updated_at ASC, user_id ASC")

	if roleFilter != "" {
		query = query.
			Joins("JOIN profiles ON profiles.user_id = engagement_scores.user_id").
			Where("profiles.role = ?", roleFilter)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&scores).Error
	return scores, err
}

// RankOf returns the 1-based rank of a user by total score using the same
// ordering as TopByScore. Ranks are advisory; concurrent recomputes may
// observe transiently stale values.
func (r *EngagementRepository) RankOf(userID uint) (int, error) {
	score, err := r.GetScore(userID)
	if err != nil {
		return 0, err
	}

	var ahead int64
	err = r.db.Model(&models.EngagementScore{}).
		Where(
			"total > ? OR (total = ? AND (score_updated_at < ? OR (score_updated_at = ? AND user_id < ?)))",
			score.Total, score.Total, score.ScoreUpdatedAt, score.ScoreUpdatedAt, userID,
		).
		Count(&ahead).Error
	if err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}

// UpdateAllRanks rescans the whole score table and persists fresh rank
// positions. Not guarded by an application-level lock.
func (r *EngagementRepository) UpdateAllRanks() error {
	scores, err := r.TopByScore(0, "")
	if err != nil {
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range scores {
			rank := i + 1
			if scores[i].Rank == rank {
				continue
			}
			err := tx.Model(&models.EngagementScore{}).
				Where("id = ?", scores[i].ID).
				Update("rank", rank).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ScoredUserIDs returns the IDs of all users with a score row.
func (r *EngagementRepository) ScoredUserIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.EngagementScore{}).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}
