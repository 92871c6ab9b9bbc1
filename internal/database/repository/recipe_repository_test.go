package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/internal/testutil"
)

func recipeTitles(recipes []models.Recipe) []string {
	titles := make([]string, 0, len(recipes))
	for _, recipe := range recipes {
		titles = append(titles, recipe.Title)
	}
	return titles
}

func TestRecipeRepository_ListFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "user@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")

	vegan := testutil.CreateTag(t, db, user.ID, "Vegan")
	quick := testutil.CreateTag(t, db, user.ID, "Quick")
	tofu := testutil.CreateIngredient(t, db, user.ID, "Tofu")

	curry := testutil.CreateRecipe(t, db, user.ID, "Curry")
	salad := testutil.CreateRecipe(t, db, user.ID, "Salad")
	soup := testutil.CreateRecipe(t, db, user.ID, "Soup")
	testutil.CreateRecipe(t, db, other.ID, "Foreign")

	testutil.Link(t, db, models.TagKind, curry.ID, vegan.ID, quick.ID)
	testutil.Link(t, db, models.TagKind, salad.ID, quick.ID)
	testutil.Link(t, db, models.IngredientKind, curry.ID, tofu.ID)
	testutil.Link(t, db, models.IngredientKind, soup.ID, tofu.ID)

	tests := []struct {
		name   string
		filter RecipeFilter
		want   []string
	}{
		{name: "no filter, newest first, own only", want: []string{"Soup", "Salad", "Curry"}},
		{name: "any listed tag, distinct", filter: RecipeFilter{TagIDs: []uint{vegan.ID, quick.ID}}, want: []string{"Salad", "Curry"}},
		{name: "single tag", filter: RecipeFilter{TagIDs: []uint{vegan.ID}}, want: []string{"Curry"}},
		{name: "ingredient", filter: RecipeFilter{IngredientIDs: []uint{tofu.ID}}, want: []string{"Soup", "Curry"}},
		{name: "tags and ingredients both apply", filter: RecipeFilter{TagIDs: []uint{quick.ID}, IngredientIDs: []uint{tofu.ID}}, want: []string{"Curry"}},
		{name: "unknown id", filter: RecipeFilter{TagIDs: []uint{9999}}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipes, err := repo.List(ctx, user.ID, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, recipeTitles(recipes))
		})
	}
}

func TestRecipeRepository_FindByIDPreloads(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "user@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")
	tag := testutil.CreateTag(t, db, user.ID, "Dinner")
	ingredient := testutil.CreateIngredient(t, db, user.ID, "Rice")
	recipe := testutil.CreateRecipe(t, db, user.ID, "Risotto")
	testutil.Link(t, db, models.TagKind, recipe.ID, tag.ID)
	testutil.Link(t, db, models.IngredientKind, recipe.ID, ingredient.ID)

	found, err := repo.FindByID(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Risotto", found.String())
	assert.True(t, decimal.RequireFromString("5.25").Equal(found.Price))
	require.Len(t, found.Tags, 1)
	assert.Equal(t, "Dinner", found.Tags[0].Name)
	require.Len(t, found.Ingredients, 1)
	assert.Equal(t, "Rice", found.Ingredients[0].Name)

	_, err = repo.FindByID(ctx, other.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}

func TestRecipeRepository_CreateUpdateDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "user@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")

	recipe := &models.Recipe{UserID: user.ID, Title: "Toast", TimeMinutes: 3, Price: decimal.RequireFromString("1.50")}
	require.NoError(t, repo.Create(ctx, recipe))
	assert.NotZero(t, recipe.ID)

	found, err := repo.FindByID(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Description)
	assert.Empty(t, found.Link)
	assert.Nil(t, found.Image)

	require.NoError(t, repo.Update(ctx, user.ID, recipe.ID, map[string]any{"title": "French Toast", "time_minutes": 0}))

	found, err = repo.FindByID(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "French Toast", found.Title)
	assert.Equal(t, 0, found.TimeMinutes)
	assert.True(t, decimal.RequireFromString("1.50").Equal(found.Price), "price not in the update")

	image := "uploads/recipe/toast.jpg"
	previous, err := repo.SetImage(ctx, user.ID, recipe.ID, image)
	require.NoError(t, err)
	assert.Nil(t, previous)

	previous, err = repo.SetImage(ctx, user.ID, recipe.ID, "uploads/recipe/toast2.jpg")
	require.NoError(t, err)
	require.NotNil(t, previous)
	assert.Equal(t, image, *previous)

	assert.ErrorIs(t, repo.Update(ctx, other.ID, recipe.ID, map[string]any{"title": "Stolen"}), ErrRecipeNotFound)
	_, err = repo.SetImage(ctx, other.ID, recipe.ID, "uploads/recipe/stolen.jpg")
	assert.ErrorIs(t, err, ErrRecipeNotFound)
	require.NoError(t, repo.Update(ctx, user.ID, recipe.ID, map[string]any{"user_id": other.ID}))

	found, err = repo.FindByID(ctx, user.ID, recipe.ID)
	require.NoError(t, err, "owner column is never written")
	assert.Equal(t, "French Toast", found.Title)

	_, err = repo.Delete(ctx, other.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	deleted, err := repo.Delete(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, deleted.ID)

	_, err = repo.FindByID(ctx, user.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}

func TestRecipeRepository_UpdateKeepsConcurrentEdits(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "user@example.com")
	recipe := testutil.CreateRecipe(t, db, user.ID, "Soup")

	// Two writers that both read the row before either wrote.
	require.NoError(t, repo.Update(ctx, user.ID, recipe.ID, map[string]any{"title": "Tomato Soup"}))
	require.NoError(t, repo.Update(ctx, user.ID, recipe.ID, map[string]any{"price": decimal.RequireFromString("7.00")}))
	_, err := repo.SetImage(ctx, user.ID, recipe.ID, "uploads/recipe/soup.png")
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tomato Soup", found.Title)
	assert.True(t, decimal.RequireFromString("7.00").Equal(found.Price))
	assert.Equal(t, recipe.TimeMinutes, found.TimeMinutes)
	require.NotNil(t, found.Image)
	assert.Equal(t, "uploads/recipe/soup.png", *found.Image)
}

func TestRecipeRepository_DeleteKeepsAttributes(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "user@example.com")
	tag := testutil.CreateTag(t, db, user.ID, "Keep")
	recipe := testutil.CreateRecipe(t, db, user.ID, "Gone")
	testutil.Link(t, db, models.TagKind, recipe.ID, tag.ID)

	_, err := repo.Delete(ctx, user.ID, recipe.ID)
	require.NoError(t, err)

	_, err = NewTagRepository(db).FindByID(ctx, user.ID, tag.ID)
	assert.NoError(t, err)
}

func TestStore_WithTransactionRollsBack(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "tx@example.com")

	failure := errors.New("abort")
	err := store.WithTransaction(ctx, func(tx Store) error {
		recipe := &models.Recipe{UserID: user.ID, Title: "Draft", TimeMinutes: 1, Price: decimal.NewFromInt(1)}
		require.NoError(t, tx.Recipes().Create(ctx, recipe))
		_, _, err := tx.Tags().FindOrCreate(ctx, user.ID, "Draft")
		require.NoError(t, err)
		return failure
	})
	assert.ErrorIs(t, err, failure)

	recipes, err := store.Recipes().List(ctx, user.ID, RecipeFilter{})
	require.NoError(t, err)
	assert.Empty(t, recipes)

	tags, err := store.Tags().List(ctx, user.ID, false)
	require.NoError(t, err)
	assert.Empty(t, tags)
}
