package model

import (
	"time"
)

// User represents a registered account (identity). Role and demographic data
// live on the 1:1 Profile, which is created in the same transaction as the
// user and must always exist.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:100" json:"email,omitempty"`
	PasswordHash string    `gorm:"not null" json:"-"` // Never expose password in JSON
	FullName     string    `gorm:"size:100" json:"full_name,omitempty"`
	TokenVersion int       `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships. Deleting a user removes everything it owns.
	Profile        *Profile            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	TeacherProfile *TeacherProfile     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"teacher_profile,omitempty"`
	Videos         []VideoContent      `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"-"`
	Uploads        []UploadedContent   `gorm:"foreignKey:UploadedByID;constraint:OnDelete:CASCADE" json:"-"`
	WatchedVideos  []WatchedVideo      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Activities     []UserActivity      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Achievements   []Achievement       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
