package models

import (
	"strings"
	"time"
)

// MentorshipSession records a completed or scheduled mentoring session.
type MentorshipSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MentorID  uint      `gorm:"not null;index" json:"mentor_id"`
	MenteeID  uint      `gorm:"not null;index" json:"mentee_id"`
	Topic     string    `gorm:"size:255" json:"topic"`
	Status    string    `gorm:"size:20;index" json:"status"` // scheduled, completed, cancelled
	HeldAt    time.Time `json:"held_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for MentorshipSession model.
func (MentorshipSession) TableName() string {
	return "mentorship_sessions"
}

// JobPosting is a job listed on the portal with its skill requirements.
type JobPosting struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Company        string    `gorm:"size:255" json:"company"`
	Location       string    `gorm:"size:100" json:"location"`
	RequiredSkills string    `gorm:"type:text" json:"required_skills"` // comma-separated
	RequiredLevel  string    `gorm:"size:20" json:"required_level"`
	Description    string    `gorm:"type:text" json:"description"`
	Active         bool      `gorm:"default:true;index" json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for JobPosting model.
func (JobPosting) TableName() string {
	return "job_postings"
}

// SkillList splits the required skills string into a slice, dropping
// empty entries.
func (j *JobPosting) SkillList() []string {
	if j.RequiredSkills == "" {
		return nil
	}
	parts := strings.Split(j.RequiredSkills, ",")
	skills := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// JobApplication records a user applying to a posting.
type JobApplication struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	JobID     uint       `gorm:"not null;index" json:"job_id"`
	Job       JobPosting `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Status    string     `gorm:"size:20" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName specifies the table name for JobApplication model.
func (JobApplication) TableName() string {
	return "job_applications"
}

// EventAttendance records a user attending a portal event.
type EventAttendance struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	EventID   uint      `gorm:"not null;index" json:"event_id"`
	EventName string    `gorm:"size:255" json:"event_name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for EventAttendance model.
func (EventAttendance) TableName() string {
	return "event_attendance"
}

// ForumPost is a thread or comment in the alumni forum.
type ForumPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ThreadID  *uint     `gorm:"index" json:"thread_id"` // nil for top-level threads
	Title     string    `gorm:"size:255" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for ForumPost model.
func (ForumPost) TableName() string {
	return "forum_posts"
}

// IsComment reports whether the post is a reply rather than a thread.
func (p *ForumPost) IsComment() bool {
	return p.ThreadID != nil
}
