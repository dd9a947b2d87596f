// Package models defines domain models for the alumni engagement platform.
package models

import (
	"strings"
	"time"
)

// User represents a portal account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null;size:255" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:255" json:"email"`
	FullName  string    `gorm:"size:255" json:"full_name"`
	IsMentor  bool      `gorm:"default:false" json:"is_mentor"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// Profile represents an alumni profile attached to a user.
type Profile struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User           User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	// CURRENT_ROLE is reserved in SQL, so the column is named "role".
	CurrentRole    string    `gorm:"column:role;size:100;index" json:"current_role"`
	Company        string    `gorm:"size:255" json:"company"`
	Location       string    `gorm:"size:100" json:"location"`
	Industry       string    `gorm:"size:100" json:"industry"`
	GraduationYear int       `json:"graduation_year"`
	ExperienceYears int      `json:"experience_years"`
	Skills         string    `gorm:"type:text" json:"skills"`      // comma-separated, normalized on write
	SkillLevel     string    `gorm:"size:20" json:"skill_level"`   // beginner..expert
	Bio            string    `gorm:"type:text" json:"bio"`
	Completeness   float64   `json:"completeness"` // 0..100
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for Profile model.
func (Profile) TableName() string {
	return "profiles"
}

// SkillList splits the stored skills string into a slice.
// Empty entries are dropped; no further normalization happens here.
func (p *Profile) SkillList() []string {
	if p.Skills == "" {
		return nil
	}
	parts := strings.Split(p.Skills, ",")
	skills := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
