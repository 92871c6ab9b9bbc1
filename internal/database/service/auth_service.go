package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/EgehanKilicarslan/recipe-api/internal/config"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/repository"
)

// AuthService defines the interface for token issuing and verification
type AuthService interface {
	IssueToken(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	RevokeToken(ctx context.Context, token string) error
	PurgeTokens(ctx context.Context) (int64, error)
}

type authService struct {
	users     repository.UserRepository
	tokens    repository.AuthTokenRepository
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service instance
func NewAuthService(store repository.Store, cfg *config.Config, logger *slog.Logger) AuthService {
	return &authService{
		users:     store.Users(),
		tokens:    store.Tokens(),
		jwtSecret: []byte(cfg.JWTSecret),
		ttl:       config.Seconds(cfg.TokenExpiration),
		now:       time.Now,
		logger:    logger,
	}
}

type tokenClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// IssueToken checks the credentials and returns a new API token. Unknown
// users, wrong passwords and inactive accounts fail the same way.
func (s *authService) IssueToken(ctx context.Context, email, password string) (string, error) {
	s.logger.Info("🔐 [AuthService] Token request", "email", email)

	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("⚠️ [AuthService] User not found", "email", email)
			return "", ErrInvalidCredentials
		}
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Warn("⚠️ [AuthService] Invalid password", "email", email)
		return "", ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Warn("⚠️ [AuthService] Inactive account", "user_id", user.ID)
		return "", ErrInvalidCredentials
	}

	now := s.now()
	tokenID := uuid.NewString()
	record := &models.AuthToken{
		UserID:    user.ID,
		TokenID:   tokenID,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		s.logger.Error("❌ [AuthService] Failed to store token", "error", err)
		return "", err
	}

	claims := tokenClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to sign token", "error", err)
		return "", err
	}

	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Warn("⚠️ [AuthService] Failed to record last login", "user_id", user.ID, "error", err)
	}

	s.logger.Info("✅ [AuthService] Token issued", "user_id", user.ID)
	return signed, nil
}

// Authenticate resolves a token to its active user.
func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	record, err := s.tokens.FindActive(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if record.UserID != claims.UserID || !record.Usable(s.now()) {
		return nil, ErrInvalidToken
	}

	return &record.User, nil
}

// RevokeToken invalidates token before its expiry.
func (s *authService) RevokeToken(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}

	if err := s.tokens.Revoke(ctx, claims.ID); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	s.logger.Info("👋 [AuthService] Token revoked", "user_id", claims.UserID)
	return nil
}

// PurgeTokens deletes expired and revoked token records.
func (s *authService) PurgeTokens(ctx context.Context) (int64, error) {
	deleted, err := s.tokens.DeleteStale(ctx, s.now())
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to purge tokens", "error", err)
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("🧹 [AuthService] Purged stale tokens", "count", deleted)
	}
	return deleted, nil
}

func (s *authService) parse(token string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
