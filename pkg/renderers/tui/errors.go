package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoBuilder is returned when the renderer has no way to derive fields
	// from a design.
	ErrNoBuilder = errors.New("tui: form builder is required")
)
