package repository

import (
	"gorm.io/gorm"

	"github.com/alumnet/engagement/internal/models"
)

// ActivityRepository aggregates raw activity counters from the portal
// tables. The counters feed the engagement weight schedule and badge
// predicates; no counter state is stored, every call recounts.
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// CountersFor assembles the activity counters for a user.
// A missing profile contributes zero completeness rather than an error.
func (r *ActivityRepository) CountersFor(userID uint) (*models.ActivityCounters, error) {
	counters := &models.ActivityCounters{UserID: userID}

	var profile models.Profile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		counters.ProfileCompleteness = profile.Completeness
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var sessions int64
	err = r.db.Model(&models.MentorshipSession{}).
		Where("(mentor_id = ? OR mentee_id = ?) AND status = ?", userID, userID, "completed").
		Count(&sessions).Error
	if err != nil {
		return nil, err
	}
	counters.MentorshipSessions = int(sessions)

	var applications int64
	err = r.db.Model(&models.JobApplication{}).
		Where("user_id = ?", userID).
		Count(&applications).Error
	if err != nil {
		return nil, err
	}
	counters.JobApplications = int(applications)

	var events int64
	err = r.db.Model(&models.EventAttendance{}).
		Where("user_id = ?", userID).
		Count(&events).Error
	if err != nil {
		return nil, err
	}
	counters.EventsAttended = int(events)

	var posts int64
	err = r.db.Model(&models.ForumPost{}).
		Where("user_id = ? AND thread_id IS NULL", userID).
		Count(&posts).Error
	if err != nil {
		return nil, err
	}
	counters.ForumPosts = int(posts)

	var comments int64
	err = r.db.Model(&models.ForumPost{}).
		Where("user_id = ? AND thread_id IS NOT NULL", userID).
		Count(&comments).Error
	if err != nil {
		return nil, err
	}
	counters.ForumComments = int(comments)

	return counters, nil
}

// RecordSession stores a mentorship session.
func (r *ActivityRepository) RecordSession(session *models.MentorshipSession) error {
	return r.db.Create(session).Error
}

// RecordApplication stores a job application.
func (r *ActivityRepository) RecordApplication(app *models.JobApplication) error {
	return r.db.Create(app).Error
}

// RecordAttendance stores an event attendance.
func (r *ActivityRepository) RecordAttendance(att *models.EventAttendance) error {
	return r.db.Create(att).Error
}

// RecordForumPost stores a forum thread or comment.
func (r *ActivityRepository) RecordForumPost(post *models.ForumPost) error {
	return r.db.Create(post).Error
}

// ActiveJobs returns active job postings.
func (r *ActivityRepository) ActiveJobs() ([]models.JobPosting, error) {
	var jobs []models.JobPosting
	err := r.db.Where("active = ?", true).Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

// GetJob retrieves a job posting by ID.
func (r *ActivityRepository) GetJob(jobID uint) (*models.JobPosting, error) {
	var job models.JobPosting
	err := r.db.First(&job, jobID).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}
