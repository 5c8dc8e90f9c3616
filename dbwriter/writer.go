// Package dbwriter assembles a k-mer database from scratch: it owns
// the archive, creates one bin writer per bin, routes each incoming
// k-mer to its bin by signature, and on Close writes the history
// record, the optional sample names, the bins' tails, and the global
// metadata, in that order, before closing the archive.
package dbwriter

import (
	"fmt"

	"github.com/Priyanshu23/kmerdbgo/archive"
	"github.com/Priyanshu23/kmerdbgo/binid"
	"github.com/Priyanshu23/kmerdbgo/bins"
	"github.com/Priyanshu23/kmerdbgo/history"
	"github.com/Priyanshu23/kmerdbgo/kmer"
	"github.com/Priyanshu23/kmerdbgo/metadata"
	"github.com/Priyanshu23/kmerdbgo/signature"
	"github.com/Priyanshu23/kmerdbgo/valuetype"
)

// defaultMaxPartBytes bounds how much a bin writer buffers before it
// flushes a part to the archive.
const defaultMaxPartBytes = 1 << 20

// Options configures a new database at creation time. Everything here
// ends up recorded, verbatim or derived, in the database's metadata.
type Options struct {
	Config               metadata.Config
	Schema               valuetype.Schema
	Representation       metadata.Representation
	RepresentationConfig metadata.RepresentationConfig

	// SampleNames, if non-empty, must have exactly Config.NumSamples
	// entries; it is stored as the optional samples_names stream.
	SampleNames []string

	// MaxPartBytes bounds each bin writer's flush size. Zero selects a
	// reasonable default.
	MaxPartBytes int

	// CreatedFrom, if non-nil, is an already-open reader whose history
	// is copied forward into the new database before its own history
	// item is appended.
	CreatedFrom *archive.Archive
}

// Writer owns one archive being built into a k-mer database.
type Writer struct {
	arc    *archive.Archive
	opts   Options
	scheme signature.Scheme
	hist   *history.Writer

	plainBins []*bins.PlainWriter
	lutBins   []*bins.LUTWriter

	closed bool
}

// Create opens a new database file at path and prepares one bin writer
// per bin according to opts.
func Create(path string, opts Options) (*Writer, error) {
	if opts.MaxPartBytes <= 0 {
		opts.MaxPartBytes = defaultMaxPartBytes
	}

	scheme, err := opts.Config.SignatureScheme.Scheme()
	if err != nil {
		return nil, err
	}

	arc, err := archive.Create(path)
	if err != nil {
		return nil, err
	}

	hist, err := history.NewWriter(arc, opts.CreatedFrom)
	if err != nil {
		arc.Close()
		return nil, err
	}

	w := &Writer{arc: arc, opts: opts, scheme: scheme, hist: hist}

	switch opts.Representation {
	case metadata.SortedPlain:
		if _, ok := opts.RepresentationConfig.(metadata.ConfigSortedPlain); !ok {
			arc.Close()
			return nil, fmt.Errorf("%w: SortedPlain requires ConfigSortedPlain", ErrUnsupportedRepresentation)
		}
		w.plainBins = make([]*bins.PlainWriter, opts.Config.NumBins)
		for i := range w.plainBins {
			w.plainBins[i] = bins.NewPlainWriter(arc, uint64(i), opts.Config.KmerLen, opts.Schema, opts.Config.NumSamples, opts.MaxPartBytes)
		}
	case metadata.SortedWithLUT:
		cfg, ok := opts.RepresentationConfig.(metadata.ConfigSortedWithLUT)
		if !ok {
			arc.Close()
			return nil, fmt.Errorf("%w: SortedWithLUT requires ConfigSortedWithLUT", ErrUnsupportedRepresentation)
		}
		w.lutBins = make([]*bins.LUTWriter, opts.Config.NumBins)
		for i := range w.lutBins {
			w.lutBins[i] = bins.NewLUTWriter(arc, uint64(i), opts.Config.KmerLen, cfg.LutPrefixLen, opts.Schema, opts.Config.NumSamples, opts.MaxPartBytes)
		}
	default:
		arc.Close()
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRepresentation, opts.Representation)
	}

	return w, nil
}

// ChangeLutPrefixLen changes every bin's LUT prefix length. Only valid
// for a SortedWithLUT writer, and only before the first Add call.
func (w *Writer) ChangeLutPrefixLen(newLutPrefixLen uint64) error {
	if w.lutBins == nil {
		return fmt.Errorf("%w: ChangeLutPrefixLen requires SortedWithLUT", ErrUnsupportedRepresentation)
	}
	for _, bw := range w.lutBins {
		if err := bw.ChangeLutPrefixLen(newLutPrefixLen); err != nil {
			return err
		}
	}
	cfg := w.opts.RepresentationConfig.(metadata.ConfigSortedWithLUT)
	cfg.LutPrefixLen = newLutPrefixLen
	w.opts.RepresentationConfig = cfg
	return nil
}

// Add routes km to its bin by signature and appends its value tuple.
// Within a bin, k-mers must be added in strictly increasing order.
func (w *Writer) Add(km kmer.Kmer, values []valuetype.Field) error {
	sig := signature.Compute(km, w.opts.Config.KmerLen, w.opts.Config.SignatureLen, w.scheme)
	binID, err := binid.BinID(w.opts.Config.BinMapping, sig, w.opts.Config.NumBins)
	if err != nil {
		return err
	}
	if w.plainBins != nil {
		return w.plainBins[binID].Add(km, values)
	}
	return w.lutBins[binID].Add(km, values)
}

// AppendInfo adds free-form text to the database's history item.
func (w *Writer) AppendInfo(s string) { w.hist.AppendInfo(s) }

// CaptureStdout starts or stops capturing standard output into the
// database's history item.
func (w *Writer) CaptureStdout(enable bool) error { return w.hist.CaptureStdout(enable) }

// CaptureStderr is CaptureStdout's counterpart for standard error.
func (w *Writer) CaptureStderr(enable bool) error { return w.hist.CaptureStderr(enable) }

// Close flushes every bin, writes the sample names (if any), the
// history item, and the global metadata, then closes the archive.
// Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.hist.Finish(); err != nil {
		w.arc.Close()
		return err
	}

	if len(w.opts.SampleNames) > 0 {
		if uint64(len(w.opts.SampleNames)) != w.opts.Config.NumSamples {
			w.arc.Close()
			return fmt.Errorf("%w: %d names, num_samples=%d", ErrSampleNameCountMismatch, len(w.opts.SampleNames), w.opts.Config.NumSamples)
		}
		id := w.arc.RegisterStream(metadata.SampleNamesStreamName)
		if _, err := w.arc.AddPart(id, metadata.SerializeSampleNames(w.opts.SampleNames)); err != nil {
			w.arc.Close()
			return err
		}
	}

	if w.plainBins != nil {
		for _, bw := range w.plainBins {
			if _, err := bw.Close(); err != nil {
				w.arc.Close()
				return err
			}
		}
	} else {
		for _, bw := range w.lutBins {
			if _, err := bw.Close(); err != nil {
				w.arc.Close()
				return err
			}
		}
	}

	md := metadata.Metadata{
		Version:              metadata.Current,
		Config:               w.opts.Config,
		Schema:               w.opts.Schema,
		Representation:       w.opts.Representation,
		RepresentationConfig: w.opts.RepresentationConfig,
	}
	mdID := w.arc.RegisterStream(metadata.StreamName)
	if _, err := w.arc.AddPart(mdID, md.Serialize()); err != nil {
		w.arc.Close()
		return err
	}

	return w.arc.Close()
}
