package service

import "errors"

// Service errors
var (
	ErrEmailRequired      = errors.New("user must have an email address")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
