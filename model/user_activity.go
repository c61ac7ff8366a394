package model

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityType classifies a user activity entry.
type ActivityType string

const (
	ActivityTypeVideo ActivityType = "video"
	ActivityTypeNote  ActivityType = "note"
	ActivityTypeQuiz  ActivityType = "quiz"
	ActivityTypeLogin ActivityType = "login"
)

// UserActivity is a single entry in a user's activity feed. The student
// dashboard shows the most recent entries and derives the learning streak
// from the distinct days with activity.
type UserActivity struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index:idx_user_activity" json:"user_id"`
	ActivityType ActivityType   `gorm:"type:varchar(20);not null" json:"type"`
	Text         string         `gorm:"type:text;not null" json:"text"`
	Badge        string         `gorm:"size:50" json:"badge,omitempty"`
	Metadata     datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt    time.Time      `gorm:"index:idx_activity_created" json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for UserActivity
func (UserActivity) TableName() string {
	return "user_activities"
}
