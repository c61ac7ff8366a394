package model

import (
	"time"
)

// TeacherProfile is the optional 1:1 extension for teacher accounts, created
// by an explicit teacher workflow (not at registration). IsApproved is stored
// for an admin approval flow but does not currently gate publishing.
type TeacherProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Bio       string    `gorm:"type:text" json:"bio,omitempty"`

	Subjects []Subject `gorm:"many2many:teacher_profile_subjects" json:"subjects,omitempty"`

	ExperienceYears int      `gorm:"default:0" json:"experience_years"`
	Qualification   string   `gorm:"size:255" json:"qualification,omitempty"`
	HourlyRate      *float64 `json:"hourly_rate,omitempty"`
	IsApproved      bool     `gorm:"default:false" json:"is_approved"`

	// Object storage key under teacher_profiles/
	PictureKey string `gorm:"size:500" json:"picture_key,omitempty"`
}
