package maintenance

import "errors"

var (
	// ErrAlreadyStarted is returned by Start on a running sweeper.
	ErrAlreadyStarted = errors.New("maintenance: sweeper already started")

	// ErrNotStarted is returned by Stop on a sweeper that is not running.
	ErrNotStarted = errors.New("maintenance: sweeper not started")

	// ErrInvalidConfig is returned when MaxAge is not positive.
	ErrInvalidConfig = errors.New("maintenance: invalid configuration")
)
