package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/repository"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/service"
	"github.com/EgehanKilicarslan/recipe-api/internal/middleware"
)

// RecipeHandler serves the current user's recipes
type RecipeHandler struct {
	service      service.RecipeService
	maxImageSize int64
	logger       *slog.Logger
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(service service.RecipeService, maxImageSize int64, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		service:      service,
		maxImageSize: maxImageSize,
		logger:       logger,
	}
}

type recipeSummary struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	TimeMinutes int                 `json:"time_minutes"`
	Price       string              `json:"price"`
	Link        string              `json:"link"`
	Tags        []models.Tag        `json:"tags"`
	Ingredients []models.Ingredient `json:"ingredients"`
}

type recipeDetail struct {
	recipeSummary
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

func newRecipeSummary(recipe *models.Recipe) recipeSummary {
	summary := recipeSummary{
		ID:          recipe.ID,
		Title:       recipe.Title,
		TimeMinutes: recipe.TimeMinutes,
		Price:       recipe.Price.StringFixed(2),
		Link:        recipe.Link,
		Tags:        recipe.Tags,
		Ingredients: recipe.Ingredients,
	}
	if summary.Tags == nil {
		summary.Tags = []models.Tag{}
	}
	if summary.Ingredients == nil {
		summary.Ingredients = []models.Ingredient{}
	}
	return summary
}

func (h *RecipeHandler) detail(recipe *models.Recipe) recipeDetail {
	return recipeDetail{
		recipeSummary: newRecipeSummary(recipe),
		Description:   recipe.Description,
		Image:         h.service.ImageURL(recipe),
	}
}

// List handles GET /api/recipe/recipes
func (h *RecipeHandler) List(c *gin.Context) {
	verr := &service.ValidationError{}
	filter := repository.RecipeFilter{
		TagIDs:        parseIDList(c, verr, "tags"),
		IngredientIDs: parseIDList(c, verr, "ingredients"),
	}
	if err := verr.OrNil(); err != nil {
		respondError(c, h.logger, err)
		return
	}

	recipes, err := h.service.ListRecipes(c.Request.Context(), middleware.CurrentUser(c).ID, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]recipeSummary, 0, len(recipes))
	for i := range recipes {
		out = append(out, newRecipeSummary(&recipes[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /api/recipe/recipes/:id
func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondNotFound(c)
		return
	}

	recipe, err := h.service.GetRecipe(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.detail(recipe))
}

// Create handles POST /api/recipe/recipes. The owner is always the caller.
func (h *RecipeHandler) Create(c *gin.Context) {
	input, err := readRecipeInput(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	recipe, err := h.service.CreateRecipe(c.Request.Context(), middleware.CurrentUser(c).ID, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, h.detail(recipe))
}

// Update handles PUT (full) and PATCH (partial) on /api/recipe/recipes/:id
func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondNotFound(c)
		return
	}

	input, err := readRecipeInput(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	partial := c.Request.Method == http.MethodPatch
	recipe, err := h.service.UpdateRecipe(c.Request.Context(), middleware.CurrentUser(c).ID, id, input, partial)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.detail(recipe))
}

// Delete handles DELETE /api/recipe/recipes/:id
func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondNotFound(c)
		return
	}

	if err := h.service.DeleteRecipe(c.Request.Context(), middleware.CurrentUser(c).ID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage handles POST /api/recipe/recipes/:id/upload-image
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondNotFound(c)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImageSize+1<<20)
	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, h.logger, service.NewFieldError("image", msgFileTooLarge))
			return
		}
		respondError(c, h.logger, service.NewFieldError("image", msgNoFile))
		return
	}
	if file.Size > h.maxImageSize {
		respondError(c, h.logger, service.NewFieldError("image", msgFileTooLarge))
		return
	}

	f, err := file.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	recipe, err := h.service.UploadImage(c.Request.Context(), middleware.CurrentUser(c).ID, id, service.ImageUpload{
		Filename: file.Filename,
		Data:     data,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": recipe.ID, "image": h.service.ImageURL(recipe)})
}

// readRecipeInput maps the writable recipe fields of the body. user_id and
// other unknown keys are ignored.
func readRecipeInput(c *gin.Context) (service.RecipeInput, error) {
	p, err := decodePayload(c)
	if err != nil {
		return service.RecipeInput{}, err
	}

	input := service.RecipeInput{
		Title:       p.Text("title"),
		TimeMinutes: p.Int("time_minutes"),
		Price:       p.Decimal("price"),
		Description: p.Text("description"),
		Link:        p.Text("link"),
		Tags:        p.Names("tags"),
		Ingredients: p.Names("ingredients"),
	}
	return input, p.Err()
}
