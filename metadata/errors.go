package metadata

import "errors"

// ErrIncompatibleVersion is returned when a database's on-disk major
// version does not match what this build can read.
var ErrIncompatibleVersion = errors.New("metadata: incompatible on-disk version")

// ErrSchemaMismatch is returned when a value schema presented by a
// caller (for example a reader opening a database with an expected
// schema) disagrees with the one already recorded in metadata.
var ErrSchemaMismatch = errors.New("metadata: value schema mismatch")
