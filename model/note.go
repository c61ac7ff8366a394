package model

import (
	"time"
)

// Note is study material attached to a video. Every note belongs to exactly
// one video; deleting the video deletes its notes.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`

	// Optional PDF in object storage under notes/
	FileKey string `gorm:"size:500" json:"file_key,omitempty"`

	VideoID uint `gorm:"not null;index" json:"video_id"`

	// Relationships
	Video VideoContent `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
}
