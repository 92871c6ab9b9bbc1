package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
)

// AttributeRepository defines the owner-scoped operations shared by tags
// and ingredients.
type AttributeRepository[T any] interface {
	Kind() models.AttributeKind
	List(ctx context.Context, ownerID uint, assignedOnly bool) ([]T, error)
	FindByID(ctx context.Context, ownerID, id uint) (*T, error)
	FindOrCreate(ctx context.Context, ownerID uint, name string) (*T, bool, error)
	Rename(ctx context.Context, ownerID, id uint, name string) (*T, error)
	Delete(ctx context.Context, ownerID, id uint) error
	RecipeLinker
}

// RecipeLinker maintains the association between recipes and one attribute type.
type RecipeLinker interface {
	// Resolve returns the IDs of ownerID's rows named names, creating the
	// missing ones. Repeated names resolve to one ID. created counts new rows.
	Resolve(ctx context.Context, ownerID uint, names []string) (ids []uint, created int, err error)
	// Attach links recipeID to the given rows. Rows not owned by ownerID are
	// skipped, so a recipe never references another user's attributes.
	Attach(ctx context.Context, ownerID, recipeID uint, ids []uint) error
	// Clear removes every link of recipeID.
	Clear(ctx context.Context, recipeID uint) error
}

type attributeRow[T any] interface {
	*T
	models.Attribute
}

type attributeRepository[T any, P attributeRow[T]] struct {
	db   *gorm.DB
	kind models.AttributeKind
}

// NewTagRepository creates the repository for tags
func NewTagRepository(db *gorm.DB) AttributeRepository[models.Tag] {
	return &attributeRepository[models.Tag, *models.Tag]{db: db, kind: models.TagKind}
}

// NewIngredientRepository creates the repository for ingredients
func NewIngredientRepository(db *gorm.DB) AttributeRepository[models.Ingredient] {
	return &attributeRepository[models.Ingredient, *models.Ingredient]{db: db, kind: models.IngredientKind}
}

func (r *attributeRepository[T, P]) Kind() models.AttributeKind {
	return r.kind
}

func (r *attributeRepository[T, P]) List(ctx context.Context, ownerID uint, assignedOnly bool) ([]T, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if assignedOnly {
		query = query.Where("id IN (?)", r.db.Table(r.kind.JoinTable).Select(r.kind.JoinColumn))
	}

	rows := []T{}
	if err := query.Order("name DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", r.kind.Name, err)
	}
	return rows, nil
}

func (r *attributeRepository[T, P]) FindByID(ctx context.Context, ownerID, id uint) (*T, error) {
	var row T
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttributeNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *attributeRepository[T, P]) findByName(ctx context.Context, ownerID uint, name string) (*T, error) {
	var row T
	err := r.db.WithContext(ctx).Where("user_id = ? AND name = ?", ownerID, name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttributeNotFound
		}
		return nil, err
	}
	return &row, nil
}

// FindOrCreate returns ownerID's row with exactly name, creating it when
// absent. The insert runs in its own savepoint: when a concurrent request
// inserted the same name first, the unique index rejects ours and the
// existing row is returned instead.
func (r *attributeRepository[T, P]) FindOrCreate(ctx context.Context, ownerID uint, name string) (*T, bool, error) {
	row, err := r.findByName(ctx, ownerID, name)
	if err == nil {
		return row, false, nil
	}
	if !errors.Is(err, ErrAttributeNotFound) {
		return nil, false, err
	}

	var created T
	P(&created).Assign(ownerID, name)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("User").Create(&created).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		row, err = r.findByName(ctx, ownerID, name)
		return row, false, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create %s: %w", r.kind.Name, err)
	}
	return &created, true, nil
}

func (r *attributeRepository[T, P]) Rename(ctx context.Context, ownerID, id uint, name string) (*T, error) {
	result := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("name", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateName
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrAttributeNotFound
	}
	return r.FindByID(ctx, ownerID, id)
}

// Delete removes the row and its recipe links.
func (r *attributeRepository[T, P]) Delete(ctx context.Context, ownerID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row T
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAttributeNotFound
			}
			return err
		}
		unlink := "DELETE FROM " + r.kind.JoinTable + " WHERE " + r.kind.JoinColumn + " = ?"
		if err := tx.Exec(unlink, id).Error; err != nil {
			return err
		}
		return tx.Delete(&row).Error
	})
}

func (r *attributeRepository[T, P]) Resolve(ctx context.Context, ownerID uint, names []string) ([]uint, int, error) {
	ids := make([]uint, 0, len(names))
	seen := make(map[uint]struct{}, len(names))
	created := 0

	for _, name := range names {
		row, isNew, err := r.FindOrCreate(ctx, ownerID, name)
		if err != nil {
			return nil, created, err
		}
		if isNew {
			created++
		}
		id := P(row).GetID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, created, nil
}

func (r *attributeRepository[T, P]) Attach(ctx context.Context, ownerID, recipeID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	var owned []uint
	err := r.db.WithContext(ctx).
		Table(r.kind.Table).
		Where("user_id = ? AND id IN ?", ownerID, ids).
		Pluck("id", &owned).Error
	if err != nil {
		return err
	}
	if len(owned) == 0 {
		return nil
	}

	link := "INSERT INTO " + r.kind.JoinTable + " (recipe_id, " + r.kind.JoinColumn + ") VALUES (?, ?)"
	for _, id := range owned {
		if err := r.db.WithContext(ctx).Exec(link, recipeID, id).Error; err != nil {
			return fmt.Errorf("failed to link %s %d: %w", r.kind.Name, id, err)
		}
	}
	return nil
}

func (r *attributeRepository[T, P]) Clear(ctx context.Context, recipeID uint) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM "+r.kind.JoinTable+" WHERE recipe_id = ?", recipeID).Error
}
