package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/repository"
	"github.com/EgehanKilicarslan/recipe-api/internal/testutil"
)

func TestTagService_Update(t *testing.T) {
	f := newFixture(t)
	svc := NewTagService(f.store, testutil.Logger())
	ctx := context.Background()

	user := testutil.CreateUser(t, f.db, "user@example.com")
	other := testutil.CreateUser(t, f.db, "other@example.com")
	dinner := testutil.CreateTag(t, f.db, user.ID, "After Dinner")
	testutil.CreateTag(t, f.db, user.ID, "Dessert")
	foreign := testutil.CreateTag(t, f.db, other.ID, "Foreign")

	tests := []struct {
		name     string
		ownerID  uint
		id       uint
		value    *string
		partial  bool
		want     string
		wantErr  error
		field    string
		fieldMsg string
	}{
		{name: "rename", ownerID: user.ID, id: dinner.ID, value: ptr("Dinner"), partial: true, want: "Dinner"},
		{name: "full update", ownerID: user.ID, id: dinner.ID, value: ptr("Supper"), want: "Supper"},
		{name: "partial without name is a no-op", ownerID: user.ID, id: dinner.ID, partial: true, want: "Supper"},
		{name: "full update requires name", ownerID: user.ID, id: dinner.ID, field: "name", fieldMsg: MsgRequired},
		{name: "blank name", ownerID: user.ID, id: dinner.ID, value: ptr(""), partial: true, field: "name", fieldMsg: MsgBlank},
		{name: "name in use", ownerID: user.ID, id: dinner.ID, value: ptr("Dessert"), partial: true, field: "name", fieldMsg: "You already have a tag with this name."},
		{name: "other user's tag", ownerID: user.ID, id: foreign.ID, value: ptr("Mine"), partial: true, wantErr: repository.ErrAttributeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, err := svc.Update(ctx, tt.ownerID, tt.id, tt.value, tt.partial)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.field != "":
				requireFieldError(t, err, tt.field, tt.fieldMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, tag.Name)
			}
		})
	}
}

func TestIngredientService_ListGetDelete(t *testing.T) {
	f := newFixture(t)
	svc := NewIngredientService(f.store, testutil.Logger())
	ctx := context.Background()

	user := testutil.CreateUser(t, f.db, "user@example.com")
	other := testutil.CreateUser(t, f.db, "other@example.com")
	kale := testutil.CreateIngredient(t, f.db, user.ID, "Kale")
	salt := testutil.CreateIngredient(t, f.db, user.ID, "Salt")
	testutil.CreateIngredient(t, f.db, other.ID, "Pepper")

	recipe := testutil.CreateRecipe(t, f.db, user.ID, "Kale chips")
	testutil.Link(t, f.db, models.IngredientKind, recipe.ID, kale.ID)

	all, err := svc.List(ctx, user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Salt", "Kale"}, ingredientNames(all))

	assigned, err := svc.List(ctx, user.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kale"}, ingredientNames(assigned))

	got, err := svc.Get(ctx, user.ID, salt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Salt", got.Name)

	_, err = svc.Get(ctx, other.ID, salt.ID)
	assert.ErrorIs(t, err, repository.ErrAttributeNotFound)

	require.NoError(t, svc.Delete(ctx, user.ID, kale.ID))
	assert.ErrorIs(t, svc.Delete(ctx, user.ID, kale.ID), repository.ErrAttributeNotFound)

	stored, err := repository.NewStore(f.db).Recipes().FindByID(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Ingredients, "deleting an ingredient unlinks it")
}
