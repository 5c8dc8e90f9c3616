// Package dbreader opens an existing k-mer database read-only: it
// loads and validates the global metadata, builds one random-access
// bin reader per bin, and composes signature and bin-id computation
// with per-bin lookup into a single full-database check_kmer.
package dbreader

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

// defaultMaxWindowBytes bounds a listing reader's sliding window size.
const defaultMaxWindowBytes = 1 << 20

// BinListingReader streams one bin's records in sorted order. Both
// bins.PlainListingReader and bins.LUTListingReader satisfy it.
type BinListingReader interface {
	Next() (km kmer.Kmer, values []valuetype.Field, ok bool)
	TotalKmers() uint64
}

// Reader owns an open archive and every per-bin random-access reader
// needed to answer point lookups against the whole database.
type Reader struct {
	arc    *archive.Archive
	md     metadata.Metadata
	scheme signature.Scheme

	plainRandom []*bins.PlainRandomAccessReader
	lutRandom   []*bins.LUTRandomAccessReader

	sampleNames []string
	history     *history.Reader
}

// Open loads the database at path. If wantSchema is non-nil, the
// database's recorded value schema must match it exactly.
func Open(path string, wantSchema valuetype.Schema) (*Reader, error) {
	arc, err := archive.Open(path)
	if err != nil {
		return nil, err
	}

	mdID, ok := arc.StreamIDByName(metadata.StreamName)
	if !ok {
		arc.Close()
		return nil, fmt.Errorf("dbreader: %s stream missing from archive", metadata.StreamName)
	}
	raw, err := arc.RequireSinglePart(mdID)
	if err != nil {
		arc.Close()
		return nil, fmt.Errorf("dbreader: %s: %w", metadata.StreamName, err)
	}
	md, err := metadata.Load(raw)
	if err != nil {
		arc.Close()
		return nil, err
	}
	if err := md.CheckCompatible(); err != nil {
		arc.Close()
		return nil, err
	}
	if wantSchema != nil {
		if err := md.CheckSchema(wantSchema); err != nil {
			arc.Close()
			return nil, err
		}
	}

	scheme, err := md.Config.SignatureScheme.Scheme()
	if err != nil {
		arc.Close()
		return nil, err
	}

	r := &Reader{arc: arc, md: md, scheme: scheme}

	switch md.Representation {
	case metadata.SortedPlain:
		r.plainRandom = make([]*bins.PlainRandomAccessReader, md.Config.NumBins)
		for i := range r.plainRandom {
			br, err := bins.OpenPlainRandomAccessReader(arc, uint64(i), md.Config.KmerLen, md.Schema, md.Config.NumSamples)
			if err != nil {
				arc.Close()
				return nil, err
			}
			r.plainRandom[i] = br
		}
	case metadata.SortedWithLUT:
		cfg, ok := md.RepresentationConfig.(metadata.ConfigSortedWithLUT)
		if !ok {
			arc.Close()
			return nil, fmt.Errorf("%w: SortedWithLUT requires ConfigSortedWithLUT", ErrUnsupportedRepresentation)
		}
		r.lutRandom = make([]*bins.LUTRandomAccessReader, md.Config.NumBins)
		for i := range r.lutRandom {
			br, err := bins.OpenLUTRandomAccessReader(arc, uint64(i), md.Config.KmerLen, cfg.LutPrefixLen, md.Schema, md.Config.NumSamples)
			if err != nil {
				arc.Close()
				return nil, err
			}
			r.lutRandom[i] = br
		}
	default:
		arc.Close()
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRepresentation, md.Representation)
	}

	if id, ok := arc.StreamIDByName(metadata.SampleNamesStreamName); ok {
		sampleRaw, err := arc.ReadAllParts(id)
		if err != nil {
			arc.Close()
			return nil, err
		}
		names, err := metadata.LoadSampleNames(sampleRaw)
		if err != nil {
			arc.Close()
			return nil, err
		}
		r.sampleNames = names
	}

	if hr, err := history.NewReader(arc); err == nil {
		r.history = hr
	}

	return r, nil
}

// Metadata returns the database's global configuration and schema.
func (r *Reader) Metadata() metadata.Metadata { return r.md }

// SampleNames returns the recorded per-sample names, or nil if none
// were written.
func (r *Reader) SampleNames() []string { return r.sampleNames }

// History returns a reader over the database's recorded history
// items, or nil if the database carries no history stream at all.
func (r *Reader) History() *history.Reader { return r.history }

// CheckKmer looks up km across the whole database: it computes km's
// signature and bin id, then delegates to that bin's random-access
// reader.
func (r *Reader) CheckKmer(km kmer.Kmer) ([]valuetype.Field, bool, error) {
	sig := signature.Compute(km, r.md.Config.KmerLen, r.md.Config.SignatureLen, r.scheme)
	binID, err := binid.BinID(r.md.Config.BinMapping, sig, r.md.Config.NumBins)
	if err != nil {
		return nil, false, err
	}
	if r.plainRandom != nil {
		values, found := r.plainRandom[binID].Get(km)
		return values, found, nil
	}
	values, found := r.lutRandom[binID].Get(km)
	return values, found, nil
}

// OpenBinListing prepares a sequential, in-order reader over bin
// binID, in whatever representation the database was written with.
func (r *Reader) OpenBinListing(binID uint64, maxWindowBytes int) (BinListingReader, error) {
	if maxWindowBytes <= 0 {
		maxWindowBytes = defaultMaxWindowBytes
	}
	switch r.md.Representation {
	case metadata.SortedPlain:
		return bins.OpenPlainListingReader(r.arc, binID, r.md.Config.KmerLen, r.md.Schema, r.md.Config.NumSamples, maxWindowBytes)
	case metadata.SortedWithLUT:
		cfg := r.md.RepresentationConfig.(metadata.ConfigSortedWithLUT)
		return bins.OpenLUTListingReader(r.arc, binID, r.md.Config.KmerLen, cfg.LutPrefixLen, r.md.Schema, r.md.Config.NumSamples, maxWindowBytes)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRepresentation, r.md.Representation)
	}
}

// Close closes the underlying archive.
func (r *Reader) Close() error {
	return r.arc.Close()
}
