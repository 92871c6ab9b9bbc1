package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
)

// RecipeFilter narrows a recipe listing by related rows. A recipe matches a
// non-empty ID list when it links to at least one of its IDs; all non-empty
// lists must match.
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipeRepository defines the interface for owner-scoped recipe operations
type RecipeRepository interface {
	List(ctx context.Context, ownerID uint, filter RecipeFilter) ([]models.Recipe, error)
	FindByID(ctx context.Context, ownerID, id uint) (*models.Recipe, error)
	Create(ctx context.Context, recipe *models.Recipe) error
	Update(ctx context.Context, ownerID, id uint, columns map[string]any) error
	SetImage(ctx context.Context, ownerID, id uint, key string) (*string, error)
	Delete(ctx context.Context, ownerID, id uint) (*models.Recipe, error)
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository instance
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) List(ctx context.Context, ownerID uint, filter RecipeFilter) ([]models.Recipe, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", ownerID)

	// IN subqueries keep every recipe at most once however many links match.
	if len(filter.TagIDs) > 0 {
		query = query.Where("id IN (?)", r.linked(models.TagKind, filter.TagIDs))
	}
	if len(filter.IngredientIDs) > 0 {
		query = query.Where("id IN (?)", r.linked(models.IngredientKind, filter.IngredientIDs))
	}

	recipes := []models.Recipe{}
	err := query.
		Preload("Tags", orderByID).
		Preload("Ingredients", orderByID).
		Order("id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

func (r *recipeRepository) linked(kind models.AttributeKind, ids []uint) *gorm.DB {
	return r.db.Table(kind.JoinTable).Select("recipe_id").Where(kind.JoinColumn+" IN ?", ids)
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func (r *recipeRepository) FindByID(ctx context.Context, ownerID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Tags", orderByID).
		Preload("Ingredients", orderByID).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// Create inserts the recipe row only; links are managed by the attribute
// repositories.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(recipe).Error
}

// Update writes only the given columns of ownerID's recipe, so concurrent
// updates of different fields do not overwrite each other. The owner column
// is never written.
func (r *recipeRepository) Update(ctx context.Context, ownerID, id uint, columns map[string]any) error {
	values := make(map[string]any, len(columns)+1)
	for column, value := range columns {
		if column == "user_id" || column == "id" {
			continue
		}
		values[column] = value
	}
	values["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// SetImage points the recipe at key and returns the reference it replaced.
// On PostgreSQL the row stays locked between reading the old reference and
// writing the new one.
func (r *recipeRepository) SetImage(ctx context.Context, ownerID, id uint, key string) (*string, error) {
	var previous *string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Select("id", "image").Where("id = ? AND user_id = ?", id, ownerID)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var recipe models.Recipe
		if err := query.First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}
		previous = recipe.Image

		return tx.Model(&models.Recipe{}).
			Where("id = ?", recipe.ID).
			Updates(map[string]any{"image": key, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

// Delete removes the recipe and its links and returns the deleted row.
func (r *recipeRepository) Delete(ctx context.Context, ownerID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}
		for _, kind := range []models.AttributeKind{models.TagKind, models.IngredientKind} {
			if err := tx.Exec("DELETE FROM "+kind.JoinTable+" WHERE recipe_id = ?", id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}
