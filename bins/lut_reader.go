package bins

import (
	"fmt"

	"github.com/Priyanshu23/kmerdbgo/archive"
	"github.com/Priyanshu23/kmerdbgo/kmer"
	"github.com/Priyanshu23/kmerdbgo/serial"
	"github.com/Priyanshu23/kmerdbgo/valuetype"
	"github.com/bits-and-blooms/bloom/v3"
)

// LUTRandomAccessReader loads a SortedWithLUT bin's prefix table and
// suffix+value data fully into memory. A prefix lookup narrows a point
// query to one LUT bucket before falling back to binary search within
// it; a whole-key Bloom filter rejects most misses before either step.
type LUTRandomAccessReader struct {
	k            uint64
	lutPrefixLen uint64
	suffixLen    uint64
	schema       valuetype.Schema
	numSamples   uint64
	suffixBytes  int
	recordBytes  int

	lut    []uint64
	data   []byte
	meta   Metadata
	filter *bloom.BloomFilter
}

// OpenLUTRandomAccessReader loads bin binID's LUT and suffix+data
// streams from arc.
func OpenLUTRandomAccessReader(arc *archive.Archive, binID, k, lutPrefixLen uint64, schema valuetype.Schema, numSamples uint64) (*LUTRandomAccessReader, error) {
	meta, err := loadBinMetadata(arc, binID)
	if err != nil {
		return nil, err
	}
	lutID, ok := arc.StreamIDByName(LUTStreamName(binID))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingStream, LUTStreamName(binID))
	}
	lutRaw, err := arc.ReadAllParts(lutID)
	if err != nil {
		return nil, err
	}
	numBuckets := int(uint64(1) << (2 * lutPrefixLen))
	lut, err := serial.GetUint64Array(lutRaw, numBuckets+1)
	if err != nil {
		return nil, fmt.Errorf("bins: decoding bin %d LUT: %w", binID, err)
	}

	sufID, ok := arc.StreamIDByName(SufDataStreamName(binID))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingStream, SufDataStreamName(binID))
	}
	data, err := arc.ReadAllParts(sufID)
	if err != nil {
		return nil, err
	}

	suffixLen := k - lutPrefixLen
	suffixBytes := int((suffixLen + 3) / 4)
	recordBytes := suffixBytes + int(schema.RecordBytes(numSamples))

	r := &LUTRandomAccessReader{
		k: k, lutPrefixLen: lutPrefixLen, suffixLen: suffixLen,
		schema: schema, numSamples: numSamples,
		suffixBytes: suffixBytes, recordBytes: recordBytes,
		lut: lut, data: data, meta: meta,
	}

	filter, err := loadBloomFilter(arc, SufDataBloomStreamName(binID))
	if err != nil {
		return nil, err
	}
	r.filter = filter
	return r, nil
}

// TotalKmers is the bin's record count, as recorded at Close time.
func (r *LUTRandomAccessReader) TotalKmers() uint64 { return r.meta.TotalKmers }

// Contains reports whether km is present in the bin.
func (r *LUTRandomAccessReader) Contains(km kmer.Kmer) bool {
	_, found := r.Get(km)
	return found
}

// Get returns km's value tuple and whether it was found.
func (r *LUTRandomAccessReader) Get(km kmer.Kmer) ([]valuetype.Field, bool) {
	full := km.StoreLeftAligned(r.k)
	if r.filter != nil && !r.filter.Test(full) {
		return valuetype.Zero(r.schema, r.numSamples), false
	}

	var prefix uint64
	if r.lutPrefixLen != 0 {
		prefix = km.RemoveSuffix(uint32(2 * r.suffixLen))
	}
	lo, hi := r.lut[prefix], r.lut[prefix+1]
	if lo == hi {
		return valuetype.Zero(r.schema, r.numSamples), false
	}
	if r.suffixLen == 0 {
		// k == lutPrefixLen: membership is presence in the bucket alone.
		start := int(lo)*r.recordBytes + r.suffixBytes
		values, _ := valuetype.Load(r.data[start:start+int(r.schema.RecordBytes(r.numSamples))], r.schema, r.numSamples)
		return values, true
	}

	suffix := km.Clone()
	suffix.K = r.suffixLen
	key := suffix.StoreLeftAligned(r.suffixLen)

	base := int(lo) * r.recordBytes
	window := r.data[base : int(hi)*r.recordBytes]
	idx, found := binarySearchKey(window, r.recordBytes, r.suffixBytes, int(hi-lo), key)
	if !found {
		return valuetype.Zero(r.schema, r.numSamples), false
	}
	start := idx*r.recordBytes + r.suffixBytes
	values, _ := valuetype.Load(window[start:start+int(r.schema.RecordBytes(r.numSamples))], r.schema, r.numSamples)
	return values, true
}

// LUTListingReader streams a SortedWithLUT bin's records in order,
// reattaching each record's LUT prefix as it crosses bucket boundaries.
type LUTListingReader struct {
	k            uint64
	lutPrefixLen uint64
	suffixLen    uint64
	schema       valuetype.Schema
	numSamples   uint64
	suffixBytes  int
	recordBytes  int

	lut           []uint64
	meta          Metadata
	sr            *archive.StreamReader
	windowBytes   int
	buf           []byte
	pos           int
	emitted       uint64
	currentPrefix uint64
}

// OpenLUTListingReader prepares sequential access to bin binID.
func OpenLUTListingReader(arc *archive.Archive, binID, k, lutPrefixLen uint64, schema valuetype.Schema, numSamples uint64, maxWindowBytes int) (*LUTListingReader, error) {
	meta, err := loadBinMetadata(arc, binID)
	if err != nil {
		return nil, err
	}
	lutID, ok := arc.StreamIDByName(LUTStreamName(binID))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingStream, LUTStreamName(binID))
	}
	lutRaw, err := arc.ReadAllParts(lutID)
	if err != nil {
		return nil, err
	}
	numBuckets := int(uint64(1) << (2 * lutPrefixLen))
	lut, err := serial.GetUint64Array(lutRaw, numBuckets+1)
	if err != nil {
		return nil, fmt.Errorf("bins: decoding bin %d LUT: %w", binID, err)
	}

	suffixLen := k - lutPrefixLen
	suffixBytes := int((suffixLen + 3) / 4)
	recordBytes := suffixBytes + int(schema.RecordBytes(numSamples))

	// Degenerate case: k == lutPrefixLen and no value fields at all, so
	// every record is zero bytes wide. Nothing to read; the LUT alone
	// tells Next how many empty records each prefix owns.
	if recordBytes == 0 {
		return &LUTListingReader{
			k: k, lutPrefixLen: lutPrefixLen, suffixLen: suffixLen,
			schema: schema, numSamples: numSamples,
			suffixBytes: suffixBytes, recordBytes: recordBytes,
			lut: lut, meta: meta,
		}, nil
	}

	sufID, ok := arc.StreamIDByName(SufDataStreamName(binID))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingStream, SufDataStreamName(binID))
	}

	windowRecords := maxWindowBytes / recordBytes
	if windowRecords < 1 {
		windowRecords = 1
	}

	return &LUTListingReader{
		k: k, lutPrefixLen: lutPrefixLen, suffixLen: suffixLen,
		schema: schema, numSamples: numSamples,
		suffixBytes: suffixBytes, recordBytes: recordBytes,
		lut: lut, meta: meta, sr: arc.NewStreamReader(sufID),
		windowBytes: windowRecords * recordBytes,
	}, nil
}

// TotalKmers is the bin's record count, as recorded at Close time.
func (r *LUTListingReader) TotalKmers() uint64 { return r.meta.TotalKmers }

// Next returns the next record in order, or ok=false once the bin is
// exhausted.
func (r *LUTListingReader) Next() (km kmer.Kmer, values []valuetype.Field, ok bool) {
	if r.recordBytes == 0 {
		if r.emitted == r.meta.TotalKmers {
			return kmer.Kmer{}, nil, false
		}
		for r.emitted >= r.lut[r.currentPrefix+1] {
			r.currentPrefix++
		}
		full := kmer.New(r.k)
		full.SetPrefix(r.currentPrefix, uint32(2*r.suffixLen))
		r.emitted++
		return full, nil, true
	}
	if r.pos == len(r.buf) {
		chunk, got := r.sr.Next(r.windowBytes)
		if !got {
			return kmer.Kmer{}, nil, false
		}
		r.buf = chunk
		r.pos = 0
	}
	rec := r.buf[r.pos : r.pos+r.recordBytes]

	for r.emitted >= r.lut[r.currentPrefix+1] {
		r.currentPrefix++
	}

	full := kmer.LoadFromLeftAligned(rec[:r.suffixBytes], r.suffixLen, kmer.NumLimbs(r.k))
	full.SetPrefix(r.currentPrefix, uint32(2*r.suffixLen))
	full.K = r.k

	values, _ = valuetype.Load(rec[r.suffixBytes:], r.schema, r.numSamples)
	r.pos += r.recordBytes
	r.emitted++
	return full, values, true
}
