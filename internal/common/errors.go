package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound        = errors.New("not found")
	ErrDuplicateIdentity = errors.New("duplicate identity")
	ErrVersionConflict   = errors.New("version conflict")
	ErrAlreadyExists     = errors.New("already exists")

	// Service-level errors.
	ErrorInternal        = errors.New("internal error")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrIdentityNotFound  = errors.New("identity not found")
	ErrInvalidSlot       = errors.New("invalid slot")

	// Auth gate errors.
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
