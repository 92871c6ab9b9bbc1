package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
)

// AuthTokenRepository defines the interface for issued token bookkeeping
type AuthTokenRepository interface {
	Create(ctx context.Context, token *models.AuthToken) error
	FindActive(ctx context.Context, tokenID string) (*models.AuthToken, error)
	Revoke(ctx context.Context, tokenID string) error
	DeleteStale(ctx context.Context, now time.Time) (int64, error)
}

type authTokenRepository struct {
	db *gorm.DB
}

// NewAuthTokenRepository creates a new auth token repository instance
func NewAuthTokenRepository(db *gorm.DB) AuthTokenRepository {
	return &authTokenRepository{db: db}
}

func (r *authTokenRepository) Create(ctx context.Context, token *models.AuthToken) error {
	return r.db.WithContext(ctx).Omit("User").Create(token).Error
}

// FindActive loads a non-revoked token together with its user. Expiry is
// left to the caller, which owns the clock.
func (r *authTokenRepository) FindActive(ctx context.Context, tokenID string) (*models.AuthToken, error) {
	var token models.AuthToken
	err := r.db.WithContext(ctx).
		Where("token_id = ? AND is_revoked = ?", tokenID, false).
		Preload("User").
		First(&token).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	return &token, nil
}

func (r *authTokenRepository) Revoke(ctx context.Context, tokenID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.AuthToken{}).
		Where("token_id = ? AND is_revoked = ?", tokenID, false).
		Update("is_revoked", true)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// DeleteStale removes tokens that expired before now or were revoked.
func (r *authTokenRepository) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR is_revoked = ?", now, true).
		Delete(&models.AuthToken{})
	return result.RowsAffected, result.Error
}
