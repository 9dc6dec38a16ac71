package object

import "errors"

var (
	// ErrNotFound is returned when a digest has no stored object.
	ErrNotFound = errors.New("object not found")

	// ErrMalformedObject is returned when stored bytes do not parse into the
	// record shape expected for their kind.
	ErrMalformedObject = errors.New("malformed object")
)
