package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/repository"
)

// AttributeService defines the owner-scoped management of tags or
// ingredients. New rows are only created through recipes.
type AttributeService[T any] interface {
	List(ctx context.Context, ownerID uint, assignedOnly bool) ([]T, error)
	Get(ctx context.Context, ownerID, id uint) (*T, error)
	Update(ctx context.Context, ownerID, id uint, name *string, partial bool) (*T, error)
	Delete(ctx context.Context, ownerID, id uint) error
}

type attributeService[T any] struct {
	repo   repository.AttributeRepository[T]
	kind   models.AttributeKind
	logger *slog.Logger
}

// NewTagService creates the tag service
func NewTagService(store repository.Store, logger *slog.Logger) AttributeService[models.Tag] {
	return newAttributeService(store.Tags(), logger)
}

// NewIngredientService creates the ingredient service
func NewIngredientService(store repository.Store, logger *slog.Logger) AttributeService[models.Ingredient] {
	return newAttributeService(store.Ingredients(), logger)
}

func newAttributeService[T any](repo repository.AttributeRepository[T], logger *slog.Logger) *attributeService[T] {
	return &attributeService[T]{
		repo:   repo,
		kind:   repo.Kind(),
		logger: logger,
	}
}

func (s *attributeService[T]) List(ctx context.Context, ownerID uint, assignedOnly bool) ([]T, error) {
	return s.repo.List(ctx, ownerID, assignedOnly)
}

func (s *attributeService[T]) Get(ctx context.Context, ownerID, id uint) (*T, error) {
	return s.repo.FindByID(ctx, ownerID, id)
}

// Update renames the row. name is the only writable field, so a partial
// update without it returns the row unchanged.
func (s *attributeService[T]) Update(ctx context.Context, ownerID, id uint, name *string, partial bool) (*T, error) {
	if name == nil {
		if !partial {
			return nil, NewFieldError("name", MsgRequired)
		}
		return s.repo.FindByID(ctx, ownerID, id)
	}

	verr := &ValidationError{}
	checkText(verr, "name", *name, false, maxNameLen)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	row, err := s.repo.Rename(ctx, ownerID, id, *name)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, NewFieldError("name", "You already have a "+s.kind.Name+" with this name.")
		}
		return nil, err
	}

	s.logger.Info("✅ [AttributeService] Renamed", "kind", s.kind.Name, "id", id, "user_id", ownerID)
	return row, nil
}

func (s *attributeService[T]) Delete(ctx context.Context, ownerID, id uint) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("🗑️ [AttributeService] Deleted", "kind", s.kind.Name, "id", id, "user_id", ownerID)
	return nil
}
