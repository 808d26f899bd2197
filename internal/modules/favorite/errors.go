package favorite

import "errors"

var (
	ErrHeroNotFound  = errors.New("hero not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidHeroID = errors.New("hero id must be a positive integer")
)
