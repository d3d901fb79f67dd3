package client

import "errors"

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAlreadyExists   = errors.New("already exists")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)
