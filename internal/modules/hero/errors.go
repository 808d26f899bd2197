package hero

import "errors"

var (
	ErrNotFound         = errors.New("hero not found")
	ErrInvalidID        = errors.New("hero id must be a positive integer")
	ErrInvalidDirection = errors.New("direction must be prev or next")
)
