package models

import "errors"

var (
	// ErrStoreUnavailable wraps any failure of the transaction store.
	ErrStoreUnavailable = errors.New("transaction store unavailable")
	// ErrInsufficientData is returned when a defined value is required but none exists.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidWindow is returned before any query for a malformed window.
	ErrInvalidWindow = errors.New("invalid window")
)
