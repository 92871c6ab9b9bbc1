package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/internal/testutil"
)

func tagNames(tags []models.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names
}

func TestTagRepository_List(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "user@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")

	breakfast := testutil.CreateTag(t, db, user.ID, "Breakfast")
	testutil.CreateTag(t, db, user.ID, "Lunch")
	testutil.CreateTag(t, db, other.ID, "Dinner")

	recipe := testutil.CreateRecipe(t, db, user.ID, "Eggs")
	secondRecipe := testutil.CreateRecipe(t, db, user.ID, "Pancakes")
	testutil.Link(t, db, models.TagKind, recipe.ID, breakfast.ID)
	testutil.Link(t, db, models.TagKind, secondRecipe.ID, breakfast.ID)

	tests := []struct {
		name         string
		assignedOnly bool
		want         []string
	}{
		{name: "all owned tags by name descending", want: []string{"Lunch", "Breakfast"}},
		{name: "assigned only, each once", assignedOnly: true, want: []string{"Breakfast"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags, err := repo.List(ctx, user.ID, tt.assignedOnly)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tagNames(tags))
		})
	}
}

func TestTagRepository_FindByIDIsScoped(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "user@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")
	tag := testutil.CreateTag(t, db, user.ID, "Vegan")

	found, err := repo.FindByID(ctx, user.ID, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vegan", found.Name)

	_, err = repo.FindByID(ctx, other.ID, tag.ID)
	assert.ErrorIs(t, err, ErrAttributeNotFound)
}

func TestTagRepository_FindOrCreate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "user@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")
	existing := testutil.CreateTag(t, db, user.ID, "Indian")

	found, created, err := repo.FindOrCreate(ctx, user.ID, "Indian")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, found.ID)

	lower, created, err := repo.FindOrCreate(ctx, user.ID, "indian")
	require.NoError(t, err)
	assert.True(t, created, "names match case-sensitively")
	assert.NotEqual(t, existing.ID, lower.ID)

	foreign, created, err := repo.FindOrCreate(ctx, other.ID, "Indian")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, other.ID, foreign.UserID)

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Where("user_id = ? AND name = ?", user.ID, "Indian").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTagRepository_FindOrCreateInsideTransaction(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "tx@example.com")

	err := store.WithTransaction(ctx, func(tx Store) error {
		first, created, err := tx.Tags().FindOrCreate(ctx, user.ID, "Soup")
		require.NoError(t, err)
		assert.True(t, created)

		second, created, err := tx.Tags().FindOrCreate(ctx, user.ID, "Soup")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestTagRepository_Resolve(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "user@example.com")
	existing := testutil.CreateTag(t, db, user.ID, "Thai")

	ids, created, err := repo.Resolve(ctx, user.ID, []string{"Thai", "Spicy", "Thai", "Spicy"})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, ids, 2)
	assert.Equal(t, existing.ID, ids[0])
}

func TestTagRepository_AttachAndClear(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "user@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")
	own := testutil.CreateTag(t, db, user.ID, "Mine")
	foreign := testutil.CreateTag(t, db, other.ID, "Theirs")
	recipe := testutil.CreateRecipe(t, db, user.ID, "Curry")

	require.NoError(t, repo.Attach(ctx, user.ID, recipe.ID, []uint{own.ID, foreign.ID}))

	var linked []uint
	require.NoError(t, db.Table("recipe_tags").Where("recipe_id = ?", recipe.ID).Pluck("tag_id", &linked).Error)
	assert.Equal(t, []uint{own.ID}, linked, "rows of another owner are never linked")

	require.NoError(t, repo.Clear(ctx, recipe.ID))
	linked = nil
	require.NoError(t, db.Table("recipe_tags").Where("recipe_id = ?", recipe.ID).Pluck("tag_id", &linked).Error)
	assert.Empty(t, linked)
}

func TestTagRepository_RenameAndDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "user@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")
	tag := testutil.CreateTag(t, db, user.ID, "Dessert")
	testutil.CreateTag(t, db, user.ID, "Taken")
	recipe := testutil.CreateRecipe(t, db, user.ID, "Cake")
	testutil.Link(t, db, models.TagKind, recipe.ID, tag.ID)

	renamed, err := repo.Rename(ctx, user.ID, tag.ID, "Sweets")
	require.NoError(t, err)
	assert.Equal(t, "Sweets", renamed.Name)

	_, err = repo.Rename(ctx, user.ID, tag.ID, "Taken")
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = repo.Rename(ctx, other.ID, tag.ID, "Stolen")
	assert.ErrorIs(t, err, ErrAttributeNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, other.ID, tag.ID), ErrAttributeNotFound)
	require.NoError(t, repo.Delete(ctx, user.ID, tag.ID))

	_, err = repo.FindByID(ctx, user.ID, tag.ID)
	assert.ErrorIs(t, err, ErrAttributeNotFound)

	var links int64
	require.NoError(t, db.Table("recipe_tags").Where("tag_id = ?", tag.ID).Count(&links).Error)
	assert.Zero(t, links)
}

func TestIngredientRepository_List(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "user@example.com")
	salt := testutil.CreateIngredient(t, db, user.ID, "Salt")
	testutil.CreateIngredient(t, db, user.ID, "Pepper")
	recipe := testutil.CreateRecipe(t, db, user.ID, "Steak")
	testutil.Link(t, db, models.IngredientKind, recipe.ID, salt.ID)

	all, err := repo.List(ctx, user.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Salt", all[0].Name)
	assert.Equal(t, "Pepper", all[1].Name)

	assigned, err := repo.List(ctx, user.ID, true)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, salt.ID, assigned[0].ID)
	assert.Equal(t, models.IngredientKind, repo.Kind())
}
