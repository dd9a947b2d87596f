package repository

import (
	"gorm.io/gorm"

	"github.com/alumnet/engagement/internal/models"
)

// CareerRepository handles career history and the precomputed transition matrix.
type CareerRepository struct {
	db *DB
}

// NewCareerRepository creates a new career repository.
func NewCareerRepository(db *DB) *CareerRepository {
	return &CareerRepository{db: db}
}

// AddHistory appends a career step for a user.
func (r *CareerRepository) AddHistory(entry *models.CareerHistory) error {
	return r.db.Create(entry).Error
}

// GetHistory retrieves a user's career steps ordered oldest first.
func (r *CareerRepository) GetHistory(userID uint) ([]models.CareerHistory, error) {
	var history []models.CareerHistory
	err := r.db.
		Where("user_id = ?", userID).
		Order("started_at ASC").
		Find(&history).Error
	return history, err
}

// GetAllHistories retrieves every career step grouped by user, ordered by
// user then start date. Input to the batch matrix rebuild.
func (r *CareerRepository) GetAllHistories() ([]models.CareerHistory, error) {
	var history []models.CareerHistory
	err := r.db.
		Order("user_id ASC, started_at ASC").
		Find(&history).Error
	return history, err
}

// ReplaceTransitions atomically swaps the transition matrix for a freshly
// rebuilt one.
func (r *CareerRepository) ReplaceTransitions(transitions []models.CareerTransition) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.CareerTransition{}).Error; err != nil {
			return err
		}
		if len(transitions) == 0 {
			return nil
		}
		return tx.Create(&transitions).Error
	})
}

// GetTransitionsFrom retrieves matrix rows for a source role ordered by
// probability descending.
func (r *CareerRepository) GetTransitionsFrom(fromRole string) ([]models.CareerTransition, error) {
	var transitions []models.CareerTransition
	err := r.db.
		Where("from_role = ?", fromRole).
		Order("probability DESC, count DESC").
		Find(&transitions).Error
	return transitions, err
}

// TotalTransitionCount sums observed transitions across the whole matrix.
// This is the data-sufficiency signal for prediction fallback.
func (r *CareerRepository) TotalTransitionCount() (int64, error) {
	var total *int64
	err := r.db.Model(&models.CareerTransition{}).
		Select("SUM(count)").
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

// UsersWithTransition returns the IDs of users whose history contains the
// given role transition (consecutive steps from -> to).
func (r *CareerRepository) UsersWithTransition(fromRole, toRole string) ([]uint, error) {
	histories, err := r.GetAllHistories()
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool)
	var ids []uint
	var prev *models.CareerHistory
	for i := range histories {
		h := &histories[i]
		if prev != nil && prev.UserID == h.UserID &&
			prev.Role == fromRole && h.Role == toRole && !seen[h.UserID] {
			seen[h.UserID] = true
			ids = append(ids, h.UserID)
		}
		prev = h
	}
	return ids, nil
}
