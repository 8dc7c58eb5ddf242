package database

import "errors"

var (
	ErrNotFound               = errors.New("reservation not found")
	ErrUserNotFound           = errors.New("dashboard user not found")
	ErrInvalidStatus          = errors.New("invalid reservation status")
	ErrConcurrentModification = errors.New("reservation was modified concurrently")
)
