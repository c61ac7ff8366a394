package model

import (
	"time"

	"gorm.io/gorm"
)

// JWTTokenBlacklist stores revoked JWT token IDs so that logout takes effect
// before the token expires. Expired rows are reaped by a cron job.
type JWTTokenBlacklist struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Token     string         `gorm:"uniqueIndex;not null;type:text" json:"token"` // JTI
	UserID    uint           `gorm:"index" json:"user_id"`
	Reason    string         `gorm:"type:varchar(100)" json:"reason"` // logout, token_refresh, password_change
	ExpiresAt time.Time      `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for JWTTokenBlacklist
func (JWTTokenBlacklist) TableName() string {
	return "jwt_token_blacklist"
}
