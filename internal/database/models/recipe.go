package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe belongs to one user and links to that user's tags and ingredients.
type Recipe struct {
	ID          uint            `gorm:"primarykey"`
	UserID      uint            `gorm:"not null;index"`
	Title       string          `gorm:"size:255;not null"`
	TimeMinutes int             `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	Description string          `gorm:"type:text;not null;default:''"`
	Link        string          `gorm:"size:255;not null;default:''"`
	Image       *string         `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User        User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Tags        []Tag        `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []Ingredient `gorm:"many2many:recipe_ingredients;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name
func (Recipe) TableName() string {
	return "recipes"
}

func (r Recipe) String() string {
	return r.Title
}
