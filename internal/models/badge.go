package models

import (
	"encoding/json"
	"time"
)

// Badge represents an achievement that can be earned by users.
type Badge struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Icon        string          `gorm:"size:50" json:"icon"`
	Rarity      string          `gorm:"size:20" json:"rarity"` // common, rare, epic, legendary
	Points      int             `gorm:"default:0" json:"points"`
	Criteria    json.RawMessage `gorm:"type:jsonb" json:"criteria"` // JSON structure for criteria
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Badge model.
func (Badge) TableName() string {
	return "badges"
}

// BadgeCriteria represents the requirement predicate for earning a badge.
// Metric names match the ActivityCounters fields plus "engagement_score"
// and "badge_count".
type BadgeCriteria struct {
	Metric   string      `json:"metric"`
	Operator string      `json:"operator"` // "<", ">", ">=", "<=", "=="
	Value    interface{} `json:"value"`
}

// UserBadge records a badge earned by a user. Awarded once a requirement
// predicate evaluates true; never revoked automatically.
type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;index" json:"user_id"`
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BadgeID  uint      `gorm:"not null;index" json:"badge_id"`
	Badge    Badge     `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	EarnedAt time.Time `gorm:"not null" json:"earned_at"`
}

// TableName specifies the table name for UserBadge model.
func (UserBadge) TableName() string {
	return "user_badges"
}
