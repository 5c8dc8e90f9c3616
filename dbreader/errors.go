package dbreader

import "errors"

// ErrUnsupportedRepresentation is returned when a database's recorded
// representation is not one this package knows how to read.
var ErrUnsupportedRepresentation = errors.New("dbreader: unsupported representation")
