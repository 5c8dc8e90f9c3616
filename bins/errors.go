package bins

import "errors"

// ErrOutOfOrderWrite is returned when a record is added to a writer out
// of sorted order, or duplicates the previous record — writers accept
// records in strictly increasing k-mer order only.
var ErrOutOfOrderWrite = errors.New("bins: k-mer out of order or duplicate")

// ErrIllegalLUTChange is returned by ChangeLutPrefixLen once a writer
// has already accepted at least one record.
var ErrIllegalLUTChange = errors.New("bins: LUT prefix length changed after writes started")

// ErrMissingStream is returned when a reader expects a bin's stream to
// already exist in the archive and it does not.
var ErrMissingStream = errors.New("bins: expected stream missing from archive")

// ErrAllocation exists for parity with the failure categories a
// fixed-capacity-array implementation of a random-access reader can
// hit. Go's slices grow by reallocating and panic on true
// out-of-memory rather than returning an error, so no code path in
// this package can actually produce this error; it is kept as a named
// sentinel so callers that switch on error category compile against
// the same set this database format documents.
var ErrAllocation = errors.New("bins: unable to allocate random-access buffer")
