package model

import (
	"time"
)

// ContentType classifies a generic upload.
type ContentType string

const (
	ContentTypeVideo ContentType = "video"
	ContentTypeNote  ContentType = "note"
)

// Valid reports whether the content type is one of the accepted values.
func (t ContentType) Valid() bool {
	return t == ContentTypeVideo || t == ContentTypeNote
}

// UploadedContent is the generic catch-all record for uploaded files that are
// not (yet) part of the structured video/note catalog.
type UploadedContent struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Title       string      `gorm:"size:255;not null" json:"title"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	ContentType ContentType `gorm:"type:upload_content_type;not null" json:"content_type"`

	// Object storage key under uploads/
	FileKey string `gorm:"size:500;not null" json:"file_key"`

	UploadedByID uint `gorm:"not null;index" json:"uploaded_by_id"`

	// Relationships
	UploadedBy User `gorm:"foreignKey:UploadedByID;constraint:OnDelete:CASCADE" json:"-"`
}
