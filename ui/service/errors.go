package service

import "errors"

// Service package errors.
var (
	// ErrNotFound indicates an artifact was not found.
	ErrNotFound = errors.New("service: not found")

	// ErrUnsupportedFormat indicates an export format the artifact kind
	// cannot produce.
	ErrUnsupportedFormat = errors.New("service: unsupported export format")

	// ErrClientRequired indicates a client is required for the operation.
	ErrClientRequired = errors.New("service: client required")

	// ErrAskDisabled indicates the client has no model configured.
	ErrAskDisabled = errors.New("service: ask is disabled")
)
