package models

import (
	"encoding/json"
	"time"
)

// Contribution categories recorded in the append-only log.
const (
	CategoryProfile    = "profile"
	CategoryMentorship = "mentorship"
	CategoryJobs       = "jobs"
	CategoryEvents     = "events"
	CategoryForum      = "forum"
)

// Engagement level labels derived from total score thresholds.
const (
	LevelBeginner = "Beginner"
	LevelActive   = "Active"
	LevelVeteran  = "Veteran"
	LevelLegend   = "Legend"
)

// ContributionRecord is an append-only log entry. It is the source of truth
// from which engagement scores are recomputed; rows are never updated.
type ContributionRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_contrib_user_date,priority:1" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Category  string    `gorm:"size:50;not null;index" json:"category"`
	Points    float64   `gorm:"not null" json:"points"`
	Reference string    `gorm:"size:255" json:"reference"` // e.g. event or thread identifier
	CreatedAt time.Time `gorm:"index:idx_contrib_user_date,priority:2" json:"created_at"`
}

// TableName specifies the table name for ContributionRecord model.
func (ContributionRecord) TableName() string {
	return "contribution_records"
}

// EngagementScore is the per-user scoring row, recomputed on demand.
type EngagementScore struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	User           User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Total          float64         `gorm:"not null;index" json:"total"`
	Breakdown      json.RawMessage `gorm:"type:jsonb" json:"breakdown"` // per-category points
	Level          string          `gorm:"size:20" json:"level"`
	Rank           int             `json:"rank"`
	ScoreUpdatedAt time.Time       `gorm:"index" json:"score_updated_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for EngagementScore model.
func (EngagementScore) TableName() string {
	return "engagement_scores"
}

// ActivityCounters holds the raw per-user counters the weight schedule is
// applied to. It is assembled from storage, never persisted as a row.
type ActivityCounters struct {
	UserID              uint    `json:"user_id"`
	ProfileCompleteness float64 `json:"profile_completeness"` // 0..100
	MentorshipSessions  int     `json:"mentorship_sessions"`
	JobApplications     int     `json:"job_applications"`
	EventsAttended      int     `json:"events_attended"`
	ForumPosts          int     `json:"forum_posts"`
	ForumComments       int     `json:"forum_comments"`
}
