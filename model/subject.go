package model

import (
	"time"
)

// Subject is an independently managed topic tag. Videos reference subjects
// without owning them; deleting a subject nulls those references.
type Subject struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
}
