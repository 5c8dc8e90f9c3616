// Package kmerdb is the public entry point to this module: an on-disk
// database of DNA k-mers, each carrying one or more per-sample value
// tuples, partitioned into signature-hashed bins for near-constant-time
// lookup. Create a database with NewWriter, close it, then open it for
// point lookups or sequential scans with NewReader.
package kmerdb

import (
	"github.com/Priyanshu23/kmerdbgo/binid"
	"github.com/Priyanshu23/kmerdbgo/dbreader"
	"github.com/Priyanshu23/kmerdbgo/dbwriter"
	"github.com/Priyanshu23/kmerdbgo/history"
	"github.com/Priyanshu23/kmerdbgo/kmer"
	"github.com/Priyanshu23/kmerdbgo/metadata"
	"github.com/Priyanshu23/kmerdbgo/valuetype"
)

// Re-exported types callers need to build a Config/Options without
// reaching into this module's internal packages directly.
type (
	Config               = metadata.Config
	Schema               = valuetype.Schema
	FieldSpec            = valuetype.FieldSpec
	Field                = valuetype.Field
	ValueType            = valuetype.Type
	SignatureScheme      = metadata.SignatureScheme
	BinMapping           = binid.Mapping
	Representation       = metadata.Representation
	RepresentationConfig = metadata.RepresentationConfig
	ConfigSortedPlain    = metadata.ConfigSortedPlain
	ConfigSortedWithLUT  = metadata.ConfigSortedWithLUT
	Kmer                 = kmer.Kmer
	HistoryItem          = history.Item
)

const (
	Uint8  = valuetype.Uint8
	Uint16 = valuetype.Uint16
	Uint32 = valuetype.Uint32
	Uint64 = valuetype.Uint64
	Float  = valuetype.Float
	Double = valuetype.Double

	MinHash      = metadata.MinHash
	KMCCanonical = metadata.KMCCanonical

	Modulo = binid.Modulo
	ZigZag = binid.ZigZag

	SortedPlain   = metadata.SortedPlain
	SortedWithLUT = metadata.SortedWithLUT
)

// CreateOptions configures a new database. It mirrors dbwriter.Options
// exactly; kept as a distinct type so callers depend only on the
// kmerdb package, not on dbwriter.
type CreateOptions = dbwriter.Options

// Writer builds a new database. See dbwriter.Writer for the full API:
// Add, AppendInfo, CaptureStdout, CaptureStderr, ChangeLutPrefixLen,
// Close.
type Writer = dbwriter.Writer

// NewWriter creates a new database at path.
func NewWriter(path string, opts CreateOptions) (*Writer, error) {
	return dbwriter.Create(path, opts)
}

// Reader answers point lookups and sequential scans against an
// existing database. See dbreader.Reader for the full API: CheckKmer,
// OpenBinListing, Metadata, SampleNames, History, Close.
type Reader = dbreader.Reader

// NewReader opens the database at path. If wantSchema is non-nil, the
// database's recorded value schema must match it exactly.
func NewReader(path string, wantSchema Schema) (*Reader, error) {
	return dbreader.Open(path, wantSchema)
}

// ParseKmer decodes a k-mer from its ACGT string form.
func ParseKmer(s string) (Kmer, error) {
	return kmer.FromString(s)
}

// Field constructors, re-exported from valuetype.
var (
	FieldFromUint64  = valuetype.FieldFromUint64
	FieldFromFloat32 = valuetype.FieldFromFloat32
	FieldFromFloat64 = valuetype.FieldFromFloat64
)
