package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrDataUnavailable = errors.New("data unavailable")
	ErrMalformedRecord = errors.New("malformed record")
	ErrInvalidOdds     = errors.New("invalid odds value")
)
