package model

import (
	"time"
)

// Achievement is a badge awarded to a user. The dashboard reports the count.
type Achievement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Badge     string    `gorm:"size:50" json:"badge,omitempty"`
	AwardedAt time.Time `gorm:"not null" json:"awarded_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
