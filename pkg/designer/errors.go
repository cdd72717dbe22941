package designer

import "errors"

var (
	// ErrElementNotFound is returned when an operation names an element that is
	// not part of the design.
	ErrElementNotFound = errors.New("designer: element not found")
	// ErrDuplicateElement is returned when adding an element whose ID is
	// already used.
	ErrDuplicateElement = errors.New("designer: duplicate element id")
)
