package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidURL        = errors.New("invalid URL provided")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidFilename   = errors.New("invalid filename")
	ErrServerBusy        = errors.New("worker queue full")
)
