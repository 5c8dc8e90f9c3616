package history

import (
	"fmt"

	"github.com/Priyanshu23/kmerdbgo/archive"
)

// Reader gives random and sequential access to a database's recorded
// history items, one archive part per item in the order they were
// appended.
type Reader struct {
	arc      *archive.Archive
	streamID archive.StreamID
	cursor   int
}

// NewReader opens the history stream of arc. It is not an error for the
// stream to be empty, only for it to be entirely absent.
func NewReader(arc *archive.Archive) (*Reader, error) {
	id, ok := arc.StreamIDByName(StreamName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingStream, StreamName)
	}
	return &Reader{arc: arc, streamID: id}, nil
}

// NumItems is the number of history items recorded.
func (r *Reader) NumItems() int {
	return r.arc.NumParts(r.streamID)
}

// Ith decodes the i'th recorded item, in append order.
func (r *Reader) Ith(i int) (Item, error) {
	raw, err := r.arc.GetPart(r.streamID, i)
	if err != nil {
		return Item{}, fmt.Errorf("history: reading item %d: %w", i, err)
	}
	return LoadItem(raw)
}

// Last decodes the most recently appended item.
func (r *Reader) Last() (Item, error) {
	n := r.NumItems()
	if n == 0 {
		return Item{}, fmt.Errorf("history: stream has no items")
	}
	return r.Ith(n - 1)
}

// Reset rewinds Next to the first item.
func (r *Reader) Reset() {
	r.cursor = 0
}

// Next decodes the next item in sequence, or ok=false once the stream
// is exhausted.
func (r *Reader) Next() (it Item, ok bool, err error) {
	if r.cursor >= r.NumItems() {
		return Item{}, false, nil
	}
	it, err = r.Ith(r.cursor)
	if err != nil {
		return Item{}, false, err
	}
	r.cursor++
	return it, true, nil
}
