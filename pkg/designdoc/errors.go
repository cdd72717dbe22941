package designdoc

import "errors"

var (
	// ErrUnsupportedFormat is returned for file extensions with no decoder.
	ErrUnsupportedFormat = errors.New("designdoc: unsupported format")
	// ErrInvalidDesign is returned when a decoded document breaks the design
	// invariants (missing or duplicate element IDs, missing types).
	ErrInvalidDesign = errors.New("designdoc: invalid design")
)
