package repository

import "errors"

// Repository errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already in use")
	ErrTokenNotFound     = errors.New("token not found")
	ErrRecipeNotFound    = errors.New("recipe not found")
	ErrAttributeNotFound = errors.New("attribute not found")
	ErrDuplicateName     = errors.New("name already in use")
)
