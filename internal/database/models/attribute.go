package models

import (
	"time"
)

// Attribute is the behaviour shared by the per-user labels attached to
// recipes. Tag and Ingredient implement it on their pointer types.
type Attribute interface {
	GetID() uint
	GetName() string
	Assign(ownerID uint, name string)
}

// AttributeKind describes where an attribute type and its recipe links live.
type AttributeKind struct {
	Name       string // label used in logs and metrics
	Table      string
	JoinTable  string
	JoinColumn string
}

var (
	TagKind = AttributeKind{
		Name:       "tag",
		Table:      "tags",
		JoinTable:  "recipe_tags",
		JoinColumn: "tag_id",
	}
	IngredientKind = AttributeKind{
		Name:       "ingredient",
		Table:      "ingredients",
		JoinTable:  "recipe_ingredients",
		JoinColumn: "ingredient_id",
	}
)

// Tag labels recipes, e.g. "Vegan" or "Dessert".
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_tags_user_name" json:"-"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_tags_user_name" json:"name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name
func (Tag) TableName() string {
	return TagKind.Table
}

func (t *Tag) GetID() uint     { return t.ID }
func (t *Tag) GetName() string { return t.Name }

func (t *Tag) Assign(ownerID uint, name string) {
	t.UserID = ownerID
	t.Name = name
}

// Ingredient is something a recipe is made from.
type Ingredient struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ingredients_user_name" json:"-"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_ingredients_user_name" json:"name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name
func (Ingredient) TableName() string {
	return IngredientKind.Table
}

func (i *Ingredient) GetID() uint     { return i.ID }
func (i *Ingredient) GetName() string { return i.Name }

func (i *Ingredient) Assign(ownerID uint, name string) {
	i.UserID = ownerID
	i.Name = name
}
