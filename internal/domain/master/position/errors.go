package position

import "errors"

var (
	ErrPositionNotFound = errors.New("position not found")
	// ErrInvalidPayPolicy is returned for an unknown pay category or a negative overtime multiplier
	ErrInvalidPayPolicy = errors.New("invalid position pay policy")
)
