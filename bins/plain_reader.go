package bins

import (
	"fmt"

	"github.com/Priyanshu23/kmerdbgo/archive"
	"github.com/Priyanshu23/kmerdbgo/kmer"
	"github.com/Priyanshu23/kmerdbgo/valuetype"
	"github.com/bits-and-blooms/bloom/v3"
)

func loadBinMetadata(arc *archive.Archive, binID uint64) (Metadata, error) {
	id, ok := arc.StreamIDByName(MetadataStreamName(binID))
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %s", ErrMissingStream, MetadataStreamName(binID))
	}
	raw, err := arc.RequireSinglePart(id)
	if err != nil {
		return Metadata{}, fmt.Errorf("bins: %s: %w", MetadataStreamName(binID), err)
	}
	return LoadMetadata(raw)
}

// PlainRandomAccessReader loads an entire SortedPlain bin into memory
// and answers point lookups by binary search, with a Bloom filter to
// fast-reject misses without touching the sorted data at all.
type PlainRandomAccessReader struct {
	k           uint64
	schema      valuetype.Schema
	numSamples  uint64
	kmerBytes   int
	recordBytes int

	data   []byte
	meta   Metadata
	filter *bloom.BloomFilter
}

// OpenPlainRandomAccessReader loads bin binID's full SortedPlain data
// stream from arc.
func OpenPlainRandomAccessReader(arc *archive.Archive, binID, k uint64, schema valuetype.Schema, numSamples uint64) (*PlainRandomAccessReader, error) {
	meta, err := loadBinMetadata(arc, binID)
	if err != nil {
		return nil, err
	}
	dataID, ok := arc.StreamIDByName(DataStreamName(binID))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingStream, DataStreamName(binID))
	}
	data, err := arc.ReadAllParts(dataID)
	if err != nil {
		return nil, err
	}

	kmerBytes := int((k + 3) / 4)
	recordBytes := kmerBytes + int(schema.RecordBytes(numSamples))

	r := &PlainRandomAccessReader{
		k: k, schema: schema, numSamples: numSamples,
		kmerBytes: kmerBytes, recordBytes: recordBytes,
		data: data, meta: meta,
	}

	filter, err := loadBloomFilter(arc, BloomStreamName(binID))
	if err != nil {
		return nil, err
	}
	r.filter = filter
	return r, nil
}

func (r *PlainRandomAccessReader) numRecords() int {
	if r.recordBytes == 0 {
		return 0
	}
	return len(r.data) / r.recordBytes
}

// TotalKmers is the bin's record count, as recorded at Close time.
func (r *PlainRandomAccessReader) TotalKmers() uint64 { return r.meta.TotalKmers }

// Contains reports whether km is present in the bin.
func (r *PlainRandomAccessReader) Contains(km kmer.Kmer) bool {
	_, found := r.Get(km)
	return found
}

// Get returns km's value tuple and whether it was found.
func (r *PlainRandomAccessReader) Get(km kmer.Kmer) ([]valuetype.Field, bool) {
	key := km.StoreLeftAligned(r.k)
	if r.filter != nil && !r.filter.Test(key) {
		return valuetype.Zero(r.schema, r.numSamples), false
	}
	idx, found := binarySearchKey(r.data, r.recordBytes, r.kmerBytes, r.numRecords(), key)
	if !found {
		return valuetype.Zero(r.schema, r.numSamples), false
	}
	start := idx*r.recordBytes + r.kmerBytes
	values, _ := valuetype.Load(r.data[start:start+int(r.schema.RecordBytes(r.numSamples))], r.schema, r.numSamples)
	return values, true
}

// PlainListingReader streams a SortedPlain bin's records in order,
// pulling bounded-size windows from the archive instead of loading the
// whole bin into memory.
type PlainListingReader struct {
	k           uint64
	schema      valuetype.Schema
	numSamples  uint64
	kmerBytes   int
	recordBytes int

	meta        Metadata
	sr          *archive.StreamReader
	windowBytes int
	buf         []byte
	pos         int
	emitted     uint64
}

// OpenPlainListingReader prepares sequential access to bin binID,
// reading in windows sized to the nearest whole number of records that
// fit under maxWindowBytes.
func OpenPlainListingReader(arc *archive.Archive, binID, k uint64, schema valuetype.Schema, numSamples uint64, maxWindowBytes int) (*PlainListingReader, error) {
	meta, err := loadBinMetadata(arc, binID)
	if err != nil {
		return nil, err
	}
	dataID, ok := arc.StreamIDByName(DataStreamName(binID))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingStream, DataStreamName(binID))
	}

	kmerBytes := int((k + 3) / 4)
	recordBytes := kmerBytes + int(schema.RecordBytes(numSamples))
	windowRecords := maxWindowBytes / recordBytes
	if windowRecords < 1 {
		windowRecords = 1
	}

	return &PlainListingReader{
		k: k, schema: schema, numSamples: numSamples,
		kmerBytes: kmerBytes, recordBytes: recordBytes,
		meta: meta, sr: arc.NewStreamReader(dataID),
		windowBytes: windowRecords * recordBytes,
	}, nil
}

// TotalKmers is the bin's record count, as recorded at Close time.
func (r *PlainListingReader) TotalKmers() uint64 { return r.meta.TotalKmers }

// Next returns the next record in order, or ok=false once the bin is
// exhausted.
func (r *PlainListingReader) Next() (km kmer.Kmer, values []valuetype.Field, ok bool) {
	if r.pos == len(r.buf) {
		chunk, got := r.sr.Next(r.windowBytes)
		if !got {
			return kmer.Kmer{}, nil, false
		}
		r.buf = chunk
		r.pos = 0
	}
	rec := r.buf[r.pos : r.pos+r.recordBytes]
	km = kmer.LoadFromLeftAligned(rec[:r.kmerBytes], r.k, kmer.NumLimbs(r.k))
	values, _ = valuetype.Load(rec[r.kmerBytes:], r.schema, r.numSamples)
	r.pos += r.recordBytes
	r.emitted++
	return km, values, true
}
