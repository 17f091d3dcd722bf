package services

import "errors"

var (
	// ErrInvalidArgument is returned when a caller passes a value the
	// operation cannot work with (zero section totals, bad sender, nil
	// documents).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrItemNotFound is returned by study-state updates and deletes that
	// target an id with no matching entry. Read paths never return it; they
	// degrade to nil/empty results.
	ErrItemNotFound = errors.New("item not found")
)
