package elements

import "errors"

var (
	// ErrUnknownType is returned when an element type has no registered
	// descriptor.
	ErrUnknownType = errors.New("elements: unknown element type")
	// ErrInvalidDescriptor is returned when a descriptor misses a required
	// part of the plugin contract.
	ErrInvalidDescriptor = errors.New("elements: invalid descriptor")
)
