// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/EgehanKilicarslan/recipe-api/internal/database"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/internal/logger"
)

// Logger drops all output.
func Logger() *slog.Logger {
	return logger.Discard()
}

// NewTestDB creates a migrated in-memory SQLite database private to t.
// It is limited to one connection so every query sees the same memory
// database; callers must run statements of an open transaction on the
// transaction handle.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(":memory:")), database.GormConfig(Logger(), slog.LevelError))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.Migrate(db, Logger()))

	return db
}

// CreateUser inserts an active user whose password is "password123".
func CreateUser(t testing.TB, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Email: email, Name: "Test User", Password: string(hash), IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTag inserts a tag owned by ownerID.
func CreateTag(t testing.TB, db *gorm.DB, ownerID uint, name string) *models.Tag {
	t.Helper()

	tag := &models.Tag{UserID: ownerID, Name: name}
	require.NoError(t, db.Omit("User").Create(tag).Error)
	return tag
}

// CreateIngredient inserts an ingredient owned by ownerID.
func CreateIngredient(t testing.TB, db *gorm.DB, ownerID uint, name string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{UserID: ownerID, Name: name}
	require.NoError(t, db.Omit("User").Create(ingredient).Error)
	return ingredient
}

// CreateRecipe inserts a recipe owned by ownerID with sample values.
func CreateRecipe(t testing.TB, db *gorm.DB, ownerID uint, title string) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		UserID:      ownerID,
		Title:       title,
		TimeMinutes: 22,
		Price:       decimal.RequireFromString("5.25"),
		Description: "Sample description",
		Link:        "http://example.com/recipe.pdf",
	}
	require.NoError(t, db.Omit(clause.Associations).Create(recipe).Error)
	return recipe
}

// Link attaches the given rows of a join table to recipeID.
func Link(t testing.TB, db *gorm.DB, kind models.AttributeKind, recipeID uint, ids ...uint) {
	t.Helper()

	link := "INSERT INTO " + kind.JoinTable + " (recipe_id, " + kind.JoinColumn + ") VALUES (?, ?)"
	for _, id := range ids {
		require.NoError(t, db.Exec(link, recipeID, id).Error)
	}
}
