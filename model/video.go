package model

import (
	"time"
)

// AllowedVideoExtensions is the upload allow-list for video files.
var AllowedVideoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".ogg":  true,
}

// VideoContent is a video uploaded by a teacher, optionally tagged with a
// subject. ViewCount only ever increases.
type VideoContent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`

	// Object storage keys under videos/ and video_thumbnails/
	FileKey      string `gorm:"size:500;not null" json:"file_key"`
	ThumbnailKey string `gorm:"size:500" json:"thumbnail_key,omitempty"`

	DurationSeconds int `gorm:"default:0" json:"duration_seconds"`

	TeacherID uint  `gorm:"not null;index" json:"teacher_id"`
	SubjectID *uint `gorm:"index" json:"subject_id,omitempty"`

	IsPublished bool `gorm:"default:true" json:"is_published"`
	ViewCount   uint `gorm:"default:0" json:"view_count"`

	// Relationships
	Teacher User     `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID;constraint:OnDelete:SET NULL" json:"subject,omitempty"`
	Notes   []Note   `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"notes,omitempty"`
}

// TableName specifies the table name for VideoContent
func (VideoContent) TableName() string {
	return "video_contents"
}
