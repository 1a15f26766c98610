package corpus

import "errors"

// Sentinel errors returned by Build. Callers match with errors.Is.
var (
	// ErrNotFound indicates the root path is missing or unreadable.
	ErrNotFound = errors.New("root path not found or unreadable")

	// ErrInvalidConfiguration indicates a nonsensical budget or an include
	// pattern that does not compile.
	ErrInvalidConfiguration = errors.New("invalid corpus configuration")
)
