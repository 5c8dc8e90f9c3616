package dbwriter

import (
	"path/filepath"
	"testing"

	"github.com/Priyanshu23/kmerdbgo/archive"
	"github.com/Priyanshu23/kmerdbgo/binid"
	"github.com/Priyanshu23/kmerdbgo/kmer"
	"github.com/Priyanshu23/kmerdbgo/metadata"
	"github.com/Priyanshu23/kmerdbgo/valuetype"
)

func mustKmer(t *testing.T, s string) kmer.Kmer {
	t.Helper()
	km, err := kmer.FromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return km
}

func testOptions(repr metadata.Representation, reprCfg metadata.RepresentationConfig) Options {
	return Options{
		Config: metadata.Config{
			KmerLen: 8, NumSamples: 1, NumBins: 4, SignatureLen: 3,
			SignatureScheme: metadata.MinHash, BinMapping: binid.Modulo,
		},
		Schema:               valuetype.Schema{{Type: valuetype.Uint32, StoredWidth: 4}},
		Representation:       repr,
		RepresentationConfig: reprCfg,
		SampleNames:          []string{"sample1"},
	}
}

func TestWriteThenReadBackMetadataAndSampleNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.kdb")

	w, err := Create(path, testOptions(metadata.SortedPlain, metadata.ConfigSortedPlain{}))
	if err != nil {
		t.Fatal(err)
	}

	seqs := []string{"AAAAAAAA", "AACCGGTT", "ACGTACGT", "CCCCCCCC", "TTTTTTTT"}
	for i, s := range seqs {
		km := mustKmer(t, s)
		values := []valuetype.Field{valuetype.FieldFromUint64(uint64(i + 1))}
		if err := w.Add(km, values); err != nil {
			t.Fatalf("Add(%s): %v", s, err)
		}
	}
	w.AppendInfo("test build")
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close should be a no-op: %v", err)
	}

	arc, err := archive.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer arc.Close()

	mdID, ok := arc.StreamIDByName(metadata.StreamName)
	if !ok {
		t.Fatal("expected metadata stream")
	}
	raw, err := arc.ReadAllParts(mdID)
	if err != nil {
		t.Fatal(err)
	}
	md, err := metadata.Load(raw)
	if err != nil {
		t.Fatal(err)
	}
	if md.Config.NumBins != 4 || md.Representation != metadata.SortedPlain {
		t.Fatalf("unexpected metadata: %+v", md)
	}

	sampleID, ok := arc.StreamIDByName(metadata.SampleNamesStreamName)
	if !ok {
		t.Fatal("expected samples_names stream")
	}
	sampleRaw, err := arc.ReadAllParts(sampleID)
	if err != nil {
		t.Fatal(err)
	}
	names, err := metadata.LoadSampleNames(sampleRaw)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "sample1" {
		t.Fatalf("sample names = %v, want [sample1]", names)
	}
}

func TestChangeLutPrefixLenRejectedForSortedPlain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.kdb")

	w, err := Create(path, testOptions(metadata.SortedPlain, metadata.ConfigSortedPlain{}))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.ChangeLutPrefixLen(2); err == nil {
		t.Fatal("expected an error changing LUT prefix length on a SortedPlain writer")
	}
}

func TestSampleNameCountMismatchRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mismatch.kdb")

	opts := testOptions(metadata.SortedPlain, metadata.ConfigSortedPlain{})
	opts.SampleNames = []string{"a", "b"}
	w, err := Create(path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err == nil {
		t.Fatal("expected a sample name count mismatch error")
	}
}
