package bins

import (
	"fmt"

	"github.com/Priyanshu23/kmerdbgo/archive"
	"github.com/Priyanshu23/kmerdbgo/kmer"
	"github.com/Priyanshu23/kmerdbgo/valuetype"
	"github.com/bits-and-blooms/bloom/v3"
)

// PlainWriter appends sorted k-mer records — full k-mer bytes followed
// by the value tuple — into one bin's data stream, batching them into
// archive parts of roughly maxPartBytes each and flushing a final bin
// metadata stream at Close.
type PlainWriter struct {
	arc        *archive.Archive
	binID      uint64
	k          uint64
	schema     valuetype.Schema
	numSamples uint64

	kmerBytes   int
	recordBytes int

	dataStream archive.StreamID
	metaStream archive.StreamID

	buf            []byte
	maxPartRecords int

	filter *bloom.BloomFilter

	totalKmers uint64
	started    bool
	haveLast   bool
	last       kmer.Kmer
}

// NewPlainWriter registers the bin's streams on arc and returns a
// writer ready to accept records in increasing k-mer order.
func NewPlainWriter(arc *archive.Archive, binID, k uint64, schema valuetype.Schema, numSamples uint64, maxPartBytes int) *PlainWriter {
	kmerBytes := int((k + 3) / 4)
	recordBytes := kmerBytes + int(schema.RecordBytes(numSamples))
	maxPartRecords := maxPartBytes / recordBytes
	if maxPartRecords < 1 {
		maxPartRecords = 1
	}
	return &PlainWriter{
		arc:            arc,
		binID:          binID,
		k:              k,
		schema:         schema,
		numSamples:     numSamples,
		kmerBytes:      kmerBytes,
		recordBytes:    recordBytes,
		dataStream:     arc.RegisterStream(DataStreamName(binID)),
		metaStream:     arc.RegisterStream(MetadataStreamName(binID)),
		maxPartRecords: maxPartRecords,
		filter:         newBloomFilter(),
	}
}

// Add appends one record. km must strictly follow every previously
// added k-mer in lexicographic order.
func (w *PlainWriter) Add(km kmer.Kmer, values []valuetype.Field) error {
	if w.haveLast && !w.last.Less(km) {
		return fmt.Errorf("%w: bin %d", ErrOutOfOrderWrite, w.binID)
	}
	key := km.StoreLeftAligned(w.k)
	w.buf = append(w.buf, key...)
	w.buf = valuetype.Serialize(w.buf, values, w.schema, w.numSamples)
	w.filter.Add(key)
	w.totalKmers++
	w.last = km.Clone()
	w.haveLast = true
	w.started = true

	if len(w.buf)/w.recordBytes >= w.maxPartRecords {
		if err := w.flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *PlainWriter) flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	if _, err := w.arc.AddPart(w.dataStream, w.buf); err != nil {
		return fmt.Errorf("bins: flushing bin %d data: %w", w.binID, err)
	}
	w.buf = w.buf[:0]
	return nil
}

// Close flushes any buffered records and writes the bin's metadata
// stream, returning the finished bin's metadata.
func (w *PlainWriter) Close() (Metadata, error) {
	if err := w.flush(); err != nil {
		return Metadata{}, err
	}
	if err := writeBloomFilter(w.arc, BloomStreamName(w.binID), w.filter); err != nil {
		return Metadata{}, err
	}
	meta := Metadata{TotalKmers: w.totalKmers}
	if _, err := w.arc.AddPart(w.metaStream, meta.Serialize()); err != nil {
		return Metadata{}, fmt.Errorf("bins: writing bin %d metadata: %w", w.binID, err)
	}
	return meta, nil
}
