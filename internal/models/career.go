package models

import (
	"strings"
	"time"
)

// CareerHistory is one step in a user's career path, ordered by StartedAt.
type CareerHistory struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
	Role      string     `gorm:"size:100;not null;index" json:"role"`
	Company   string     `gorm:"size:255" json:"company"`
	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"` // nil for the current position
	CreatedAt time.Time  `json:"created_at"`
}

// TableName specifies the table name for CareerHistory model.
func (CareerHistory) TableName() string {
	return "career_history"
}

// CareerTransition is a denormalized transition-matrix row, rebuilt in batch
// from career history. Never incrementally maintained.
type CareerTransition struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FromRole        string    `gorm:"size:100;not null;index:idx_transition,unique,priority:1" json:"from_role"`
	ToRole          string    `gorm:"size:100;not null;index:idx_transition,unique,priority:2" json:"to_role"`
	Count           int       `gorm:"not null" json:"count"`
	Probability     float64   `gorm:"not null" json:"probability"`
	AvgDurationDays float64   `json:"avg_duration_days"`
	CommonSkills    string    `gorm:"type:text" json:"common_skills"` // comma-separated
	RebuiltAt       time.Time `json:"rebuilt_at"`
}

// TableName specifies the table name for CareerTransition model.
func (CareerTransition) TableName() string {
	return "career_transitions"
}

// CommonSkillList splits the stored common skills into a slice.
func (t *CareerTransition) CommonSkillList() []string {
	if t.CommonSkills == "" {
		return nil
	}
	parts := strings.Split(t.CommonSkills, ",")
	skills := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
