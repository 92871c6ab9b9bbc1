package models

import (
	"time"
)

// User is an account that owns recipes, tags and ingredients.
type User struct {
	ID          uint       `gorm:"primarykey" json:"-"`
	Email       string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Password    string     `gorm:"size:128;not null" json:"-"`
	IsActive    bool       `gorm:"not null;default:true" json:"-"`
	IsStaff     bool       `gorm:"not null;default:false" json:"-"`
	IsSuperuser bool       `gorm:"not null;default:false" json:"-"`
	LastLogin   *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}
