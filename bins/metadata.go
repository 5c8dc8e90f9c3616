package bins

import (
	"fmt"

	"github.com/Priyanshu23/kmerdbgo/serial"
)

// Metadata is the small per-bin footer payload (one per bin) recording
// how many k-mer records the bin holds, written once at Close and
// exposed by readers through TotalKmers. Readers do not compare it
// against the number of records actually present in the data stream.
type Metadata struct {
	TotalKmers uint64
}

// Serialize encodes m as its own standalone byte stream.
func (m Metadata) Serialize() []byte {
	return serial.PutUint64(nil, m.TotalKmers)
}

// LoadMetadata decodes a bin metadata stream produced by Serialize.
func LoadMetadata(buf []byte) (Metadata, error) {
	total, rest, err := serial.GetUint64(buf)
	if err != nil {
		return Metadata{}, fmt.Errorf("bins: reading bin metadata: %w", err)
	}
	if len(rest) != 0 {
		return Metadata{}, fmt.Errorf("bins: trailing %d bytes after bin metadata", len(rest))
	}
	return Metadata{TotalKmers: total}, nil
}
