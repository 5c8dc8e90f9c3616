package history

import "errors"

// ErrMissingStream is returned when a reader expects the database's
// history stream to already exist in the archive and it does not.
var ErrMissingStream = errors.New("history: expected stream missing from archive")
