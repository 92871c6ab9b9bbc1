package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/internal/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *models.User
		wantErr error
	}{
		{
			name: "success",
			user: &models.User{Email: "test@example.com", Name: "Test", Password: "hash"},
		},
		{
			name:    "duplicate email",
			user:    &models.User{Email: "test@example.com", Name: "Other", Password: "hash"},
			wantErr: ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, tt.user.ID)
		})
	}
}

func TestUserRepository_Find(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "find@example.com")

	found, err := repo.FindByEmail(ctx, "find@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	found, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "find@example.com", found.Email)

	_, err = repo.FindByEmail(ctx, "FIND@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound, "lookups are exact")

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_Update(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "update@example.com")
	testutil.CreateUser(t, db, "taken@example.com")

	user.Name = "Renamed"
	user.IsActive = false
	require.NoError(t, repo.Update(ctx, user))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", reloaded.Name)
	assert.False(t, reloaded.IsActive)

	user.Email = "taken@example.com"
	assert.ErrorIs(t, repo.Update(ctx, user), ErrEmailTaken)

	assert.ErrorIs(t, repo.Update(ctx, &models.User{ID: 9999, Email: "x@example.com"}), ErrUserNotFound)
}
