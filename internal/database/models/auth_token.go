package models

import (
	"time"
)

// AuthToken records an issued API token so it can be revoked before expiry.
type AuthToken struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uint      `gorm:"not null;index"`
	TokenID   string    `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	IsRevoked bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
	User      User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name
func (AuthToken) TableName() string {
	return "auth_tokens"
}

// Usable reports whether the token may still authenticate requests at now.
func (t *AuthToken) Usable(now time.Time) bool {
	return !t.IsRevoked && now.Before(t.ExpiresAt) && t.User.IsActive
}
