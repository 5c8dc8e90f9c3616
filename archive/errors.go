package archive

import "errors"

// ErrIO wraps a failure of the underlying file during a read or write
// — a short read, a failed seek, a failed flush — as opposed to a
// structural problem with the archive's own framing (bad magic,
// corrupt footer), which gets its own message.
var ErrIO = errors.New("archive: I/O failure")

// ErrEmptyStream is returned when a caller expects a stream to carry
// exactly one non-empty part and it has zero parts.
var ErrEmptyStream = errors.New("archive: expected stream is empty")

// ErrUnexpectedExtraPart is returned when a caller expects a stream to
// carry exactly one part and it has more than one.
var ErrUnexpectedExtraPart = errors.New("archive: stream has more than the expected one part")

// RequireSinglePart validates that id has exactly one part, returning
// it. It is the shared check behind the single-part streams: metadata,
// bin metadata, and persisted Bloom filters. LUT streams are loaded
// with ReadAllParts instead.
func (a *Archive) RequireSinglePart(id StreamID) ([]byte, error) {
	n := a.NumParts(id)
	if n == 0 {
		return nil, ErrEmptyStream
	}
	if n > 1 {
		return nil, ErrUnexpectedExtraPart
	}
	return a.GetPart(id, 0)
}
