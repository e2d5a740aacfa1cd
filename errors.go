package docroot

import "errors"

var (
	// ErrNotFound is returned when a request path resolves to nothing servable
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when a request path attempts directory traversal
	ErrForbidden = errors.New("forbidden")
)
