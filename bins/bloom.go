package bins

import (
	"bytes"
	"fmt"

	"github.com/Priyanshu23/kmerdbgo/archive"
	"github.com/bits-and-blooms/bloom/v3"
)

// bloomEstimate is the filter capacity every bin's Bloom filter is
// built with. A bin writer streams records without knowing the final
// count in advance, so — like the teacher's own SST writer, which
// hardcodes bloom.NewWithEstimates(100000, 0.01) regardless of the
// number of keys a given SST will hold — this is a fixed, generous
// estimate rather than one derived from an exact count. Exceeding it
// only raises the false-positive rate; it never produces a false
// negative.
const bloomEstimate = 100000

// BloomStreamName is the persisted Bloom filter sub-stream for a
// SortedPlain bin.
func BloomStreamName(binID uint64) string {
	return DataStreamName(binID) + "_bloom"
}

// SufDataBloomStreamName is the persisted Bloom filter sub-stream for
// a SortedWithLUT bin.
func SufDataBloomStreamName(binID uint64) string {
	return SufDataStreamName(binID) + "_bloom"
}

func newBloomFilter() *bloom.BloomFilter {
	return bloom.NewWithEstimates(bloomEstimate, 0.01)
}

// writeBloomFilter persists filter as streamName's single part.
func writeBloomFilter(arc *archive.Archive, streamName string, filter *bloom.BloomFilter) error {
	var buf bytes.Buffer
	if _, err := filter.WriteTo(&buf); err != nil {
		return fmt.Errorf("bins: serializing %s: %w", streamName, err)
	}
	id := arc.RegisterStream(streamName)
	if _, err := arc.AddPart(id, buf.Bytes()); err != nil {
		return fmt.Errorf("bins: writing %s: %w", streamName, err)
	}
	return nil
}

// loadBloomFilter loads streamName's persisted Bloom filter. The
// stream is additive: if it is absent (an archive written without
// this enrichment), loadBloomFilter returns a nil filter and no error,
// and callers fall back to an unfiltered binary search.
func loadBloomFilter(arc *archive.Archive, streamName string) (*bloom.BloomFilter, error) {
	id, ok := arc.StreamIDByName(streamName)
	if !ok {
		return nil, nil
	}
	raw, err := arc.RequireSinglePart(id)
	if err != nil {
		return nil, fmt.Errorf("bins: %s: %w", streamName, err)
	}
	var filter bloom.BloomFilter
	if _, err := filter.ReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("bins: decoding %s: %w", streamName, err)
	}
	return &filter, nil
}
