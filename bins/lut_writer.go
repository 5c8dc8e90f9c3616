package bins

import (
	"fmt"

	"github.com/Priyanshu23/kmerdbgo/archive"
	"github.com/Priyanshu23/kmerdbgo/kmer"
	"github.com/Priyanshu23/kmerdbgo/serial"
	"github.com/Priyanshu23/kmerdbgo/valuetype"
	"github.com/bits-and-blooms/bloom/v3"
)

// LUTRawWriter is the Raw form of the SortedWithLUT bin writer: the
// caller supplies suffix+value bytes already sorted and grouped by
// prefix, plus a fully built cumulative-count LUT of length
// 4^lutPrefixLen+1. LUTWriter (the Indexing form) builds its LUT from
// individual k-mers and delegates to this type to do the actual
// stream writes.
type LUTRawWriter struct {
	arc        *archive.Archive
	binID      uint64
	k          uint64
	schema     valuetype.Schema
	numSamples uint64

	lutPrefixLen uint64
	suffixBytes  int
	recordBytes  int

	sufDataStream archive.StreamID
	lutStream     archive.StreamID
	metaStream    archive.StreamID

	totalKmers      uint64
	anyWriteStarted bool
	closed          bool
}

// NewLUTRawWriter registers the bin's streams for the Raw writer form.
func NewLUTRawWriter(arc *archive.Archive, binID, k, lutPrefixLen uint64, schema valuetype.Schema, numSamples uint64) *LUTRawWriter {
	w := &LUTRawWriter{
		arc:           arc,
		binID:         binID,
		k:             k,
		schema:        schema,
		numSamples:    numSamples,
		sufDataStream: arc.RegisterStream(SufDataStreamName(binID)),
		lutStream:     arc.RegisterStream(LUTStreamName(binID)),
		metaStream:    arc.RegisterStream(MetadataStreamName(binID)),
	}
	w.ChangeLutPrefixLen(lutPrefixLen)
	return w
}

// ChangeLutPrefixLen changes the split point before any write has
// happened. It fails once AddSufAndData or AddLUT has been called.
func (w *LUTRawWriter) ChangeLutPrefixLen(newLutPrefixLen uint64) error {
	if w.anyWriteStarted {
		return fmt.Errorf("%w: bin %d", ErrIllegalLUTChange, w.binID)
	}
	w.lutPrefixLen = newLutPrefixLen
	suffixLen := w.k - newLutPrefixLen
	w.suffixBytes = int((suffixLen + 3) / 4)
	w.recordBytes = w.suffixBytes + int(w.schema.RecordBytes(w.numSamples))
	return nil
}

// AddSufAndData appends one already-serialized run of suffix+value
// records (sorted and grouped by prefix, as the caller's LUT will
// describe) as one archive part, and accumulates the bin's record
// count from its length.
func (w *LUTRawWriter) AddSufAndData(buf []byte) error {
	w.anyWriteStarted = true
	if len(buf) == 0 {
		return nil
	}
	if w.recordBytes > 0 {
		w.totalKmers += uint64(len(buf) / w.recordBytes)
	}
	if _, err := w.arc.AddPart(w.sufDataStream, buf); err != nil {
		return fmt.Errorf("bins: writing bin %d suf+data: %w", w.binID, err)
	}
	return nil
}

// AddBloomFilter persists the caller's fully built whole-key Bloom
// filter as the bin's Bloom sub-stream. Optional: callers that never
// call it simply produce a bin with no persisted filter, which readers
// treat as "filter absent" and fall back to an unfiltered search.
func (w *LUTRawWriter) AddBloomFilter(filter *bloom.BloomFilter) error {
	w.anyWriteStarted = true
	return writeBloomFilter(w.arc, SufDataBloomStreamName(w.binID), filter)
}

// AddLUT stores the caller's fully built cumulative-count LUT (length
// 4^lutPrefixLen+1) as the bin's LUT stream. It must be called exactly
// once, after every AddSufAndData call. In the degenerate
// zero-suffix-width case (k == lutPrefixLen), no suffix data exists to
// count records from, so total_kmers is instead read from the LUT's
// own guard entry.
func (w *LUTRawWriter) AddLUT(lut []uint64) error {
	w.anyWriteStarted = true
	wantLen := int(uint64(1)<<(2*w.lutPrefixLen)) + 1
	if len(lut) != wantLen {
		return fmt.Errorf("bins: bin %d LUT has %d entries, want %d", w.binID, len(lut), wantLen)
	}
	if w.suffixBytes == 0 {
		w.totalKmers = lut[len(lut)-1]
	}
	if _, err := w.arc.AddPart(w.lutStream, serial.PutUint64Array(nil, lut)); err != nil {
		return fmt.Errorf("bins: writing bin %d LUT: %w", w.binID, err)
	}
	return nil
}

// Close writes the bin's metadata stream. Idempotent.
func (w *LUTRawWriter) Close() (Metadata, error) {
	if w.closed {
		return Metadata{TotalKmers: w.totalKmers}, nil
	}
	w.closed = true
	meta := Metadata{TotalKmers: w.totalKmers}
	if _, err := w.arc.AddPart(w.metaStream, meta.Serialize()); err != nil {
		return Metadata{}, fmt.Errorf("bins: writing bin %d metadata: %w", w.binID, err)
	}
	return meta, nil
}

// LUTWriter splits each k-mer's leading lutPrefixLen symbols off into an
// implicit prefix lookup table and stores only the remaining suffix (plus
// the value tuple) per record — the SortedWithLUT bin layout's Indexing
// form. It exposes the same add_kmer-shaped contract as PlainWriter,
// accumulating a counter array as k-mers arrive and delegating the
// actual stream writes to a LUTRawWriter at Close.
type LUTWriter struct {
	raw *LUTRawWriter

	k          uint64
	schema     valuetype.Schema
	numSamples uint64

	lutPrefixLen uint64
	suffixLen    uint64
	suffixBytes  int
	recordBytes  int

	buf            []byte
	maxPartBytes   int
	maxPartRecords int
	counts         []uint64

	filter *bloom.BloomFilter

	started  bool
	haveLast bool
	last     kmer.Kmer
}

// NewLUTWriter registers the bin's streams and returns a writer with
// the given initial LUT prefix length; ChangeLutPrefixLen may still be
// called before the first Add.
func NewLUTWriter(arc *archive.Archive, binID, k, lutPrefixLen uint64, schema valuetype.Schema, numSamples uint64, maxPartBytes int) *LUTWriter {
	w := &LUTWriter{
		raw:          NewLUTRawWriter(arc, binID, k, lutPrefixLen, schema, numSamples),
		k:            k,
		schema:       schema,
		numSamples:   numSamples,
		maxPartBytes: maxPartBytes,
		filter:       newBloomFilter(),
	}
	w.setLutPrefixLen(lutPrefixLen)
	return w
}

func (w *LUTWriter) setLutPrefixLen(l uint64) {
	w.lutPrefixLen = l
	w.suffixLen = w.k - l
	w.suffixBytes = int((w.suffixLen + 3) / 4)
	w.recordBytes = w.suffixBytes + int(w.schema.RecordBytes(w.numSamples))
	w.maxPartRecords = 1
	if w.recordBytes > 0 {
		w.maxPartRecords = w.maxPartBytes / w.recordBytes
		if w.maxPartRecords < 1 {
			w.maxPartRecords = 1
		}
	}
	w.counts = make([]uint64, uint64(1)<<(2*l))
}

// ChangeLutPrefixLen changes the split point before any record has been
// written. It fails once Add has been called once.
func (w *LUTWriter) ChangeLutPrefixLen(newLutPrefixLen uint64) error {
	if w.started {
		return fmt.Errorf("%w: bin %d", ErrIllegalLUTChange, w.raw.binID)
	}
	if err := w.raw.ChangeLutPrefixLen(newLutPrefixLen); err != nil {
		return err
	}
	w.setLutPrefixLen(newLutPrefixLen)
	return nil
}

// Add appends one record. km must strictly follow every previously
// added k-mer in lexicographic order.
func (w *LUTWriter) Add(km kmer.Kmer, values []valuetype.Field) error {
	if w.haveLast && !w.last.Less(km) {
		return fmt.Errorf("%w: bin %d", ErrOutOfOrderWrite, w.raw.binID)
	}
	w.started = true

	var prefix uint64
	if w.lutPrefixLen != 0 {
		prefix = km.RemoveSuffix(uint32(2 * w.suffixLen))
	}
	w.counts[prefix]++

	suffix := km.Clone()
	suffix.K = w.suffixLen
	w.buf = append(w.buf, suffix.StoreLeftAligned(w.suffixLen)...)
	w.buf = valuetype.Serialize(w.buf, values, w.schema, w.numSamples)
	w.filter.Add(km.StoreLeftAligned(w.k))

	w.last = km.Clone()
	w.haveLast = true

	if w.recordBytes > 0 && len(w.buf)/w.recordBytes >= w.maxPartRecords {
		if err := w.flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *LUTWriter) flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	if err := w.raw.AddSufAndData(w.buf); err != nil {
		return err
	}
	w.buf = w.buf[:0]
	return nil
}

// Close flushes remaining records, converts the counter array to a
// cumulative-sum LUT, and delegates to the Raw writer to emit the LUT
// and the bin's metadata.
func (w *LUTWriter) Close() (Metadata, error) {
	if err := w.flush(); err != nil {
		return Metadata{}, err
	}

	lut := make([]uint64, len(w.counts)+1)
	var running uint64
	for i, c := range w.counts {
		lut[i] = running
		running += c
	}
	lut[len(w.counts)] = running

	if err := w.raw.AddLUT(lut); err != nil {
		return Metadata{}, err
	}
	if err := w.raw.AddBloomFilter(w.filter); err != nil {
		return Metadata{}, err
	}
	return w.raw.Close()
}
