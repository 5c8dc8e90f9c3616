package dbwriter

import "errors"

// ErrUnsupportedRepresentation is returned when an Options value names
// a representation this package does not know how to write, or whose
// RepresentationConfig does not match it.
var ErrUnsupportedRepresentation = errors.New("dbwriter: unsupported representation")

// ErrSampleNameCountMismatch is returned when the number of sample
// names given does not equal the configured sample count.
var ErrSampleNameCountMismatch = errors.New("dbwriter: sample name count does not match num_samples")
