package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/repository"
)

const (
	MinPasswordLength = 5
	MaxPasswordLength = 72 // bcrypt input limit in bytes
	maxUserFieldLen   = 255
)

// UserService defines the interface for account management
type UserService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	CreateSuperuser(ctx context.Context, email, password, name string) (*models.User, error)
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	UpdateUser(ctx context.Context, userID uint, input UserUpdate, partial bool) (*models.User, error)
}

// UserUpdate carries the account fields of an update request; nil fields
// are left unchanged.
type UserUpdate struct {
	Email    *string
	Password *string
	Name     *string
}

type userService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a new user service instance
func NewUserService(store repository.Store, logger *slog.Logger) UserService {
	return &userService{
		users:  store.Users(),
		logger: logger,
	}
}

// NormalizeEmail lower-cases the domain part of an address and keeps the
// local part as given.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

func (s *userService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	return s.create(ctx, email, password, name, false)
}

func (s *userService) CreateSuperuser(ctx context.Context, email, password, name string) (*models.User, error) {
	return s.create(ctx, email, password, name, true)
}

func (s *userService) create(ctx context.Context, email, password, name string, superuser bool) (*models.User, error) {
	s.logger.Info("📝 [UserService] Registration attempt", "email", email, "superuser", superuser)

	if strings.TrimSpace(email) == "" {
		return nil, ErrEmailRequired
	}

	verr := &ValidationError{}
	checkPassword(verr, password)
	checkText(verr, "name", name, true, maxUserFieldLen)
	checkText(verr, "email", email, false, maxUserFieldLen)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		s.logger.Error("❌ [UserService] Failed to hash password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:       NormalizeEmail(email),
		Name:        name,
		Password:    hashedPassword,
		IsActive:    true,
		IsStaff:     superuser,
		IsSuperuser: superuser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			s.logger.Warn("⚠️ [UserService] Email already registered", "email", user.Email)
			return nil, ErrEmailAlreadyExists
		}
		s.logger.Error("❌ [UserService] Failed to create user", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [UserService] User registered successfully", "user_id", user.ID)
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateUser applies input to the account. A full update requires every
// field; a partial one only touches the fields given.
func (s *userService) UpdateUser(ctx context.Context, userID uint, input UserUpdate, partial bool) (*models.User, error) {
	verr := &ValidationError{}
	if !partial {
		if input.Email == nil {
			verr.Add("email", MsgRequired)
		}
		if input.Password == nil {
			verr.Add("password", MsgRequired)
		}
		if input.Name == nil {
			verr.Add("name", MsgRequired)
		}
	}
	if input.Email != nil {
		checkText(verr, "email", *input.Email, false, maxUserFieldLen)
	}
	if input.Password != nil {
		checkPassword(verr, *input.Password)
	}
	if input.Name != nil {
		checkText(verr, "name", *input.Name, true, maxUserFieldLen)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = NormalizeEmail(*input.Email)
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Password != nil {
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.logger.Info("✅ [UserService] User updated", "user_id", user.ID)
	return user, nil
}

func checkPassword(verr *ValidationError, password string) {
	switch {
	case len(password) < MinPasswordLength:
		verr.Add("password", fmt.Sprintf(MsgMinLength, MinPasswordLength))
	case len(password) > MaxPasswordLength:
		verr.Add("password", fmt.Sprintf(MsgMaxLength, MaxPasswordLength))
	}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
