package dbreader

import (
	"path/filepath"
	"testing"

	"github.com/Priyanshu23/kmerdbgo/binid"
	"github.com/Priyanshu23/kmerdbgo/dbwriter"
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

func writeTestDB(t *testing.T, path string, repr metadata.Representation, reprCfg metadata.RepresentationConfig, seqs []string) {
	t.Helper()
	opts := dbwriter.Options{
		Config: metadata.Config{
			KmerLen: 8, NumSamples: 1, NumBins: 4, SignatureLen: 3,
			SignatureScheme: metadata.MinHash, BinMapping: binid.Modulo,
		},
		Schema:               valuetype.Schema{{Type: valuetype.Uint32, StoredWidth: 4}},
		Representation:       repr,
		RepresentationConfig: reprCfg,
	}
	w, err := dbwriter.Create(path, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range seqs {
		km := mustKmer(t, s)
		values := []valuetype.Field{valuetype.FieldFromUint64(uint64(i + 1))}
		if err := w.Add(km, values); err != nil {
			t.Fatalf("Add(%s): %v", s, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestCheckKmerSortedPlain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.kdb")
	seqs := []string{"AAAAAAAA", "AACCGGTT", "ACGTACGT", "CCCCCCCC", "TTTTTTTT"}
	writeTestDB(t, path, metadata.SortedPlain, metadata.ConfigSortedPlain{}, seqs)

	r, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	for i, s := range seqs {
		km := mustKmer(t, s)
		values, found, err := r.CheckKmer(km)
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatalf("%s: expected to be found", s)
		}
		if values[0].AsUint64() != uint64(i+1) {
			t.Fatalf("%s: value = %d, want %d", s, values[0].AsUint64(), i+1)
		}
	}

	missing := mustKmer(t, "GGGGGGGG")
	if _, found, err := r.CheckKmer(missing); err != nil || found {
		t.Fatalf("expected GGGGGGGG to be absent, found=%v err=%v", found, err)
	}
}

func TestCheckKmerSortedWithLUT(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lut.kdb")
	seqs := []string{"AAAAAAAA", "AACCGGTT", "ACGTACGT", "TTTTTTTT"}
	writeTestDB(t, path, metadata.SortedWithLUT, metadata.ConfigSortedWithLUT{LutPrefixLen: 2}, seqs)

	r, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	for i, s := range seqs {
		km := mustKmer(t, s)
		values, found, err := r.CheckKmer(km)
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatalf("%s: expected to be found", s)
		}
		if values[0].AsUint64() != uint64(i+1) {
			t.Fatalf("%s: value = %d, want %d", s, values[0].AsUint64(), i+1)
		}
	}
}

func TestOpenBinListingYieldsRecordsInOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.kdb")
	seqs := []string{"AAAAAAAA", "AACCGGTT", "ACGTACGT", "CCCCCCCC", "TTTTTTTT"}
	writeTestDB(t, path, metadata.SortedPlain, metadata.ConfigSortedPlain{}, seqs)

	r, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var total uint64
	for bin := uint64(0); bin < r.Metadata().Config.NumBins; bin++ {
		lr, err := r.OpenBinListing(bin, 4096)
		if err != nil {
			t.Fatal(err)
		}
		var prev kmer.Kmer
		first := true
		for {
			km, _, ok := lr.Next()
			if !ok {
				break
			}
			if !first && !prev.Less(km) {
				t.Fatalf("bin %d: records out of order", bin)
			}
			prev = km
			first = false
			total++
		}
	}
	if total != uint64(len(seqs)) {
		t.Fatalf("total records listed = %d, want %d", total, len(seqs))
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.kdb")
	writeTestDB(t, path, metadata.SortedPlain, metadata.ConfigSortedPlain{}, []string{"AAAAAAAA"})

	wrongSchema := valuetype.Schema{{Type: valuetype.Uint8, StoredWidth: 1}}
	if _, err := Open(path, wrongSchema); err == nil {
		t.Fatal("expected a schema mismatch error")
	}
}
