package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// Export errors
	ErrMalformedDate    = errors.New("malformed date, expected YYYY-MM-DD")
	ErrInvalidRange     = errors.New("start date is after end date")
	ErrStoreUnavailable = errors.New("listing store unavailable")
	ErrQueryFailed      = errors.New("listing query failed")
	ErrTimeout          = errors.New("operation timed out")
	ErrTransport        = errors.New("export service request failed")
)
