package model

import (
	"time"
)

// WatchedVideo records that a user watched a video. One row per user/video
// pair; the student dashboard counts these.
type WatchedVideo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_watched_user_video" json:"user_id"`
	VideoID   uint      `gorm:"not null;uniqueIndex:idx_watched_user_video" json:"video_id"`
	WatchedAt time.Time `gorm:"not null" json:"watched_at"`

	// Relationships
	User  User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Video VideoContent `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
}
