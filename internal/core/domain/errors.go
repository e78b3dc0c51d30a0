package domain

import "errors"

// Common domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrConcurrentUpdate  = errors.New("record was modified concurrently")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenInvalid      = errors.New("token invalid")
)

// Account errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
)

// Provider errors
var (
	ErrProviderNotFound      = errors.New("provider not found")
	ErrProviderAlreadyExists = errors.New("provider profile already exists for this user")
	ErrInvalidStatus         = errors.New("invalid provider status")
)

// Feedback errors
var (
	ErrComplaintNotFound = errors.New("complaint not found")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
)
