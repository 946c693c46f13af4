package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrMissingCredentials = errors.New("email and password required")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNotFound           = errors.New("client not found")
)
