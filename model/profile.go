package model

import (
	"time"
)

// Role controls dashboard routing and feature access.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether the role is one of the accepted values.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Profile is the role-bearing 1:1 extension of a User. Exactly one profile
// exists per user; it is created inside the same transaction that creates the
// user. The role is immutable after creation (enforced in the service layer,
// not by the schema).
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Role      Role      `gorm:"type:user_role;not null" json:"role"`
	Bio       string    `gorm:"type:text" json:"bio,omitempty"`

	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	PhoneNumber string     `gorm:"size:20" json:"phone_number,omitempty"`
	Address     string     `gorm:"type:text" json:"address,omitempty"`

	// Student specific
	Grade string `gorm:"size:20" json:"grade,omitempty"`

	// Object storage key under profile_pics/
	PictureKey string `gorm:"size:500" json:"picture_key,omitempty"`
}

// IsTeacher reports whether the profile belongs to a teacher account.
func (p *Profile) IsTeacher() bool {
	return p.Role == RoleTeacher
}

// IsStudent reports whether the profile belongs to a student account.
func (p *Profile) IsStudent() bool {
	return p.Role == RoleStudent
}
