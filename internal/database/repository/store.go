package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
)

// Store groups the repositories over one database handle so that a unit
// of work can span several of them.
type Store interface {
	Users() UserRepository
	Tokens() AuthTokenRepository
	Recipes() RecipeRepository
	Tags() AttributeRepository[models.Tag]
	Ingredients() AttributeRepository[models.Ingredient]

	// WithTransaction runs fn with a Store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTransaction(ctx context.Context, fn func(tx Store) error) error
}

type store struct {
	db          *gorm.DB
	users       UserRepository
	tokens      AuthTokenRepository
	recipes     RecipeRepository
	tags        AttributeRepository[models.Tag]
	ingredients AttributeRepository[models.Ingredient]
}

// NewStore creates a store over db
func NewStore(db *gorm.DB) Store {
	return &store{
		db:          db,
		users:       NewUserRepository(db),
		tokens:      NewAuthTokenRepository(db),
		recipes:     NewRecipeRepository(db),
		tags:        NewTagRepository(db),
		ingredients: NewIngredientRepository(db),
	}
}

func (s *store) Users() UserRepository                               { return s.users }
func (s *store) Tokens() AuthTokenRepository                         { return s.tokens }
func (s *store) Recipes() RecipeRepository                           { return s.recipes }
func (s *store) Tags() AttributeRepository[models.Tag]               { return s.tags }
func (s *store) Ingredients() AttributeRepository[models.Ingredient] { return s.ingredients }

func (s *store) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
