package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/repository"
	"github.com/EgehanKilicarslan/recipe-api/internal/storage"
)

const (
	maxTitleLen = 255
	maxLinkLen  = 255
	maxNameLen  = 255

	imagePrefix = "uploads/recipe"

	// MaxTimeMinutes is the largest value the INTEGER column holds.
	MaxTimeMinutes = math.MaxInt32

	MsgMinZero        = "Ensure this value is greater than or equal to 0."
	MsgMaxValue       = "Ensure this value is less than or equal to %d."
	MsgDecimalPlaces  = "Ensure that there are no more than 2 decimal places."
	MsgWholeDigits    = "Ensure that there are no more than 3 digits before the decimal point."
	MsgInvalidImage   = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	MsgEmptyImageFile = "The submitted file is empty."
)

var (
	maxPrice = decimal.NewFromInt(1000)

	attributesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_attributes_created_total",
			Help: "Tags and ingredients created while saving recipes",
		},
		[]string{"kind"},
	)

	recipeWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_writes_total",
			Help: "Recipe mutations by operation",
		},
		[]string{"operation"},
	)
)

// Background runs fire-and-forget tasks. worker.Pool implements it.
type Background interface {
	Submit(task func(ctx context.Context))
}

// RecipeService defines the interface for recipe business logic
type RecipeService interface {
	ListRecipes(ctx context.Context, ownerID uint, filter repository.RecipeFilter) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, ownerID, id uint) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, ownerID uint, input RecipeInput) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, ownerID, id uint, input RecipeInput, partial bool) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, ownerID, id uint) error
	UploadImage(ctx context.Context, ownerID, id uint, upload ImageUpload) (*models.Recipe, error)
	ImageURL(recipe *models.Recipe) *string
}

// RecipeInput carries the writable recipe fields of a request. A nil field
// was absent and is left unchanged. For Tags and Ingredients a non-nil
// empty slice removes every link while nil keeps the current links.
type RecipeInput struct {
	Title       *string
	TimeMinutes *int
	Price       *decimal.Decimal
	Description *string
	Link        *string
	Tags        *[]string
	Ingredients *[]string
}

// ImageUpload is a file submitted for a recipe.
type ImageUpload struct {
	Filename string
	Data     []byte
}

type recipeService struct {
	store      repository.Store
	images     storage.ImageStore
	background Background
	logger     *slog.Logger
}

// NewRecipeService creates a new recipe service instance
func NewRecipeService(store repository.Store, images storage.ImageStore, background Background, logger *slog.Logger) RecipeService {
	return &recipeService{
		store:      store,
		images:     images,
		background: background,
		logger:     logger,
	}
}

func (s *recipeService) ListRecipes(ctx context.Context, ownerID uint, filter repository.RecipeFilter) ([]models.Recipe, error) {
	return s.store.Recipes().List(ctx, ownerID, filter)
}

func (s *recipeService) GetRecipe(ctx context.Context, ownerID, id uint) (*models.Recipe, error) {
	return s.store.Recipes().FindByID(ctx, ownerID, id)
}

// CreateRecipe stores a recipe for ownerID and links it to the named tags
// and ingredients, creating the ones ownerID does not have yet.
func (s *recipeService) CreateRecipe(ctx context.Context, ownerID uint, input RecipeInput) (*models.Recipe, error) {
	if err := input.validate(true); err != nil {
		return nil, err
	}

	var recipeID uint
	err := s.store.WithTransaction(ctx, func(tx repository.Store) error {
		recipe := &models.Recipe{UserID: ownerID}
		input.apply(recipe)

		if err := tx.Recipes().Create(ctx, recipe); err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		recipeID = recipe.ID

		if input.Tags != nil {
			if err := s.reconcile(ctx, tx.Tags(), models.TagKind, ownerID, recipe.ID, *input.Tags); err != nil {
				return err
			}
		}
		if input.Ingredients != nil {
			if err := s.reconcile(ctx, tx.Ingredients(), models.IngredientKind, ownerID, recipe.ID, *input.Ingredients); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("❌ [RecipeService] Failed to create recipe", "user_id", ownerID, "error", err)
		return nil, err
	}

	recipeWrites.WithLabelValues("create").Inc()
	s.logger.Info("✅ [RecipeService] Recipe created", "user_id", ownerID, "recipe_id", recipeID)
	return s.store.Recipes().FindByID(ctx, ownerID, recipeID)
}

// UpdateRecipe applies input to ownerID's recipe. A full update needs
// title, time_minutes and price. Link collections present in input replace
// the current links; absent ones stay as they are.
func (s *recipeService) UpdateRecipe(ctx context.Context, ownerID, id uint, input RecipeInput, partial bool) (*models.Recipe, error) {
	if err := input.validate(!partial); err != nil {
		return nil, err
	}

	err := s.store.WithTransaction(ctx, func(tx repository.Store) error {
		recipe, err := tx.Recipes().FindByID(ctx, ownerID, id)
		if err != nil {
			return err
		}

		// Links are resolved against the recipe owner, never the caller.
		if input.Tags != nil {
			if err := tx.Tags().Clear(ctx, recipe.ID); err != nil {
				return err
			}
			if err := s.reconcile(ctx, tx.Tags(), models.TagKind, recipe.UserID, recipe.ID, *input.Tags); err != nil {
				return err
			}
		}
		if input.Ingredients != nil {
			if err := tx.Ingredients().Clear(ctx, recipe.ID); err != nil {
				return err
			}
			if err := s.reconcile(ctx, tx.Ingredients(), models.IngredientKind, recipe.UserID, recipe.ID, *input.Ingredients); err != nil {
				return err
			}
		}

		return tx.Recipes().Update(ctx, recipe.UserID, recipe.ID, input.columns())
	})
	if err != nil {
		if !errors.Is(err, repository.ErrRecipeNotFound) {
			s.logger.Error("❌ [RecipeService] Failed to update recipe", "recipe_id", id, "error", err)
		}
		return nil, err
	}

	recipeWrites.WithLabelValues("update").Inc()
	s.logger.Info("✅ [RecipeService] Recipe updated", "user_id", ownerID, "recipe_id", id, "partial", partial)
	return s.store.Recipes().FindByID(ctx, ownerID, id)
}

func (s *recipeService) reconcile(ctx context.Context, linker repository.RecipeLinker, kind models.AttributeKind, ownerID, recipeID uint, names []string) error {
	ids, created, err := linker.Resolve(ctx, ownerID, names)
	if err != nil {
		return fmt.Errorf("failed to resolve %ss: %w", kind.Name, err)
	}
	if created > 0 {
		attributesCreated.WithLabelValues(kind.Name).Add(float64(created))
		s.logger.Debug("🏷️ [RecipeService] Created attributes", "kind", kind.Name, "count", created, "user_id", ownerID)
	}
	return linker.Attach(ctx, ownerID, recipeID, ids)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, ownerID, id uint) error {
	deleted, err := s.store.Recipes().Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if deleted.Image != nil {
		s.removeImage(*deleted.Image)
	}

	recipeWrites.WithLabelValues("delete").Inc()
	s.logger.Info("🗑️ [RecipeService] Recipe deleted", "user_id", ownerID, "recipe_id", id)
	return nil
}

// UploadImage stores upload as the recipe image. The content must be an
// image; the file is renamed to a random name keeping its extension.
func (s *recipeService) UploadImage(ctx context.Context, ownerID, id uint, upload ImageUpload) (*models.Recipe, error) {
	if _, err := s.store.Recipes().FindByID(ctx, ownerID, id); err != nil {
		return nil, err
	}

	if len(upload.Data) == 0 {
		return nil, NewFieldError("image", MsgEmptyImageFile)
	}

	mtype := mimetype.Detect(upload.Data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		s.logger.Warn("⚠️ [RecipeService] Rejected image upload", "recipe_id", id, "mime", mtype.String())
		return nil, NewFieldError("image", MsgInvalidImage)
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if ext == "" {
		ext = mtype.Extension()
	}
	key := path.Join(imagePrefix, uuid.NewString()+ext)

	if err := s.images.Save(ctx, key, bytes.NewReader(upload.Data), int64(len(upload.Data)), mtype.String()); err != nil {
		s.logger.Error("❌ [RecipeService] Failed to store image", "recipe_id", id, "error", err)
		return nil, err
	}

	// Only the image column is written; edits committed while the file was
	// stored survive.
	previous, err := s.store.Recipes().SetImage(ctx, ownerID, id, key)
	if err != nil {
		s.removeImage(key)
		return nil, err
	}
	if previous != nil && *previous != key {
		s.removeImage(*previous)
	}

	recipeWrites.WithLabelValues("upload_image").Inc()
	s.logger.Info("🖼️ [RecipeService] Image uploaded", "recipe_id", id, "key", key, "mime", mtype.String())
	return s.store.Recipes().FindByID(ctx, ownerID, id)
}

func (s *recipeService) ImageURL(recipe *models.Recipe) *string {
	if recipe.Image == nil || *recipe.Image == "" {
		return nil
	}
	url := s.images.URL(*recipe.Image)
	return &url
}

func (s *recipeService) removeImage(key string) {
	s.background.Submit(func(ctx context.Context) {
		if err := s.images.Delete(ctx, key); err != nil {
			s.logger.Warn("⚠️ [RecipeService] Failed to remove image", "key", key, "error", err)
		}
	})
}

func (in RecipeInput) validate(full bool) error {
	verr := &ValidationError{}

	if full {
		if in.Title == nil {
			verr.Add("title", MsgRequired)
		}
		if in.TimeMinutes == nil {
			verr.Add("time_minutes", MsgRequired)
		}
		if in.Price == nil {
			verr.Add("price", MsgRequired)
		}
	}

	if in.Title != nil {
		checkText(verr, "title", *in.Title, false, maxTitleLen)
	}
	if in.TimeMinutes != nil {
		switch {
		case *in.TimeMinutes < 0:
			verr.Add("time_minutes", MsgMinZero)
		case *in.TimeMinutes > MaxTimeMinutes:
			verr.Add("time_minutes", fmt.Sprintf(MsgMaxValue, MaxTimeMinutes))
		}
	}
	if in.Price != nil {
		checkPrice(verr, *in.Price)
	}
	if in.Link != nil {
		checkText(verr, "link", *in.Link, true, maxLinkLen)
	}
	if in.Tags != nil {
		checkNames(verr, "tags", *in.Tags)
	}
	if in.Ingredients != nil {
		checkNames(verr, "ingredients", *in.Ingredients)
	}

	return verr.OrNil()
}

func (in RecipeInput) apply(recipe *models.Recipe) {
	if in.Title != nil {
		recipe.Title = *in.Title
	}
	if in.TimeMinutes != nil {
		recipe.TimeMinutes = *in.TimeMinutes
	}
	if in.Price != nil {
		recipe.Price = *in.Price
	}
	if in.Description != nil {
		recipe.Description = *in.Description
	}
	if in.Link != nil {
		recipe.Link = *in.Link
	}
}

// columns maps the fields present in the input to recipe columns.
func (in RecipeInput) columns() map[string]any {
	columns := map[string]any{}
	if in.Title != nil {
		columns["title"] = *in.Title
	}
	if in.TimeMinutes != nil {
		columns["time_minutes"] = *in.TimeMinutes
	}
	if in.Price != nil {
		columns["price"] = *in.Price
	}
	if in.Description != nil {
		columns["description"] = *in.Description
	}
	if in.Link != nil {
		columns["link"] = *in.Link
	}
	return columns
}

// checkPrice enforces a non-negative amount of at most five digits, two of
// them after the decimal point.
func checkPrice(verr *ValidationError, price decimal.Decimal) {
	switch {
	case price.IsNegative():
		verr.Add("price", MsgMinZero)
	case !price.Equal(price.Truncate(2)):
		verr.Add("price", MsgDecimalPlaces)
	case price.GreaterThanOrEqual(maxPrice):
		verr.Add("price", MsgWholeDigits)
	}
}

func checkNames(verr *ValidationError, field string, names []string) {
	for i, name := range names {
		checkText(verr, fmt.Sprintf("%s[%d].name", field, i), name, false, maxNameLen)
	}
}
