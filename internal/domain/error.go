package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInsufficientCredit = errors.New("insufficient credit")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrRateLimited        = errors.New("rate limited")
	ErrLockNotAcquired    = errors.New("lock not acquired")
)
