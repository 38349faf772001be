package table

import "errors"

var (
	// ErrNoData is returned when a table payload carries no rows.
	ErrNoData = errors.New("table: no data")

	// ErrInvalidPayload is returned when a table payload cannot be decoded.
	ErrInvalidPayload = errors.New("table: invalid payload")
)
