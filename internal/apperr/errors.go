package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnavailable   = errors.New("catalog unavailable")
	ErrNotMapping    = errors.New("record is not a mapping")
	ErrInvalidRecord = errors.New("invalid record")
)
