package session

import "errors"

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("session: not found")
