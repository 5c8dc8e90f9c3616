package bins

import (
	"path/filepath"
	"testing"

	"github.com/Priyanshu23/kmerdbgo/archive"
	"github.com/Priyanshu23/kmerdbgo/kmer"
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

func TestPlainWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.kmdb")
	schema := valuetype.Schema{{Type: valuetype.Uint32, StoredWidth: 4}}
	k := uint64(8)

	seqs := []string{"AAAAAAAA", "AACCGGTT", "TTTTTTTT"}
	counts := []uint64{1, 2, 3}

	a, err := archive.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := NewPlainWriter(a, 0, k, schema, 1, 4096)
	for i, s := range seqs {
		km := mustKmer(t, s)
		if err := w.Add(km, []valuetype.Field{valuetype.FieldFromUint64(counts[i])}); err != nil {
			t.Fatal(err)
		}
	}
	meta, err := w.Close()
	if err != nil {
		t.Fatal(err)
	}
	if meta.TotalKmers != 3 {
		t.Fatalf("TotalKmers = %d, want 3", meta.TotalKmers)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	ra, err := archive.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ra.Close()

	rr, err := OpenPlainRandomAccessReader(ra, 0, k, schema, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range seqs {
		values, found := rr.Get(mustKmer(t, s))
		if !found {
			t.Fatalf("expected %s to be found", s)
		}
		if got := values[0].AsUint64(); got != counts[i] {
			t.Errorf("%s: value = %d, want %d", s, got, counts[i])
		}
	}
	if rr.Contains(mustKmer(t, "CCCCCCCC")) {
		t.Error("unexpected hit for absent k-mer")
	}
	missValues, found := rr.Get(mustKmer(t, "CCCCCCCC"))
	if found {
		t.Error("unexpected hit for absent k-mer")
	}
	if len(missValues) != len(schema) {
		t.Fatalf("miss returned %d values, want %d", len(missValues), len(schema))
	}
	if missValues[0].AsUint64() != 0 {
		t.Errorf("miss path returned non-zero value %v, want all-zero tuple", missValues)
	}

	lr, err := OpenPlainListingReader(ra, 0, k, schema, 1, 4096)
	if err != nil {
		t.Fatal(err)
	}
	var n int
	var last kmer.Kmer
	for {
		km, _, ok := lr.Next()
		if !ok {
			break
		}
		if n > 0 && !last.Less(km) {
			t.Fatal("listing reader returned out-of-order records")
		}
		last = km
		n++
	}
	if n != 3 {
		t.Fatalf("listing reader emitted %d records, want 3", n)
	}
}

func TestOutOfOrderWriteRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.kmdb")
	schema := valuetype.Schema{{Type: valuetype.Uint8, StoredWidth: 1}}
	a, err := archive.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := NewPlainWriter(a, 0, 4, schema, 1, 4096)
	if err := w.Add(mustKmer(t, "TTTT"), []valuetype.Field{valuetype.FieldFromUint64(1)}); err != nil {
		t.Fatal(err)
	}
	err = w.Add(mustKmer(t, "AAAA"), []valuetype.Field{valuetype.FieldFromUint64(1)})
	if err == nil {
		t.Fatal("expected out-of-order error")
	}
}

func TestLUTWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.kmdb")
	schema := valuetype.Schema{{Type: valuetype.Uint16, StoredWidth: 2}}
	k := uint64(8)
	lutPrefixLen := uint64(2)

	seqs := []string{"AAAAAAAA", "AACCGGTT", "ACGTACGT", "TTTTTTTT"}
	counts := []uint64{10, 20, 30, 40}

	a, err := archive.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := NewLUTWriter(a, 0, k, lutPrefixLen, schema, 1, 4096)
	for i, s := range seqs {
		km := mustKmer(t, s)
		if err := w.Add(km, []valuetype.Field{valuetype.FieldFromUint64(counts[i])}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	ra, err := archive.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ra.Close()

	rr, err := OpenLUTRandomAccessReader(ra, 0, k, lutPrefixLen, schema, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range seqs {
		values, found := rr.Get(mustKmer(t, s))
		if !found {
			t.Fatalf("expected %s to be found", s)
		}
		if got := values[0].AsUint64(); got != counts[i] {
			t.Errorf("%s: value = %d, want %d", s, got, counts[i])
		}
	}
	if rr.Contains(mustKmer(t, "GGGGGGGG")) {
		t.Error("unexpected hit for absent k-mer")
	}

	lr, err := OpenLUTListingReader(ra, 0, k, lutPrefixLen, schema, 1, 4096)
	if err != nil {
		t.Fatal(err)
	}
	var n int
	var last kmer.Kmer
	for {
		km, _, ok := lr.Next()
		if !ok {
			break
		}
		if n > 0 && !last.Less(km) {
			t.Fatal("listing reader returned out-of-order records")
		}
		last = km
		n++
	}
	if n != len(seqs) {
		t.Fatalf("listing reader emitted %d records, want %d", n, len(seqs))
	}
}

func TestLUTZeroPrefixLenDoesNotPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.kmdb")
	schema := valuetype.Schema{{Type: valuetype.Uint8, StoredWidth: 1}}
	k := uint64(32)

	seqs := []string{
		"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"CCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC",
	}

	a, err := archive.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := NewLUTWriter(a, 0, k, 0, schema, 1, 4096)
	for i, s := range seqs {
		km := mustKmer(t, s)
		if err := w.Add(km, []valuetype.Field{valuetype.FieldFromUint64(uint64(i))}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	ra, err := archive.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ra.Close()

	rr, err := OpenLUTRandomAccessReader(ra, 0, k, 0, schema, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range seqs {
		values, found := rr.Get(mustKmer(t, s))
		if !found {
			t.Fatalf("expected %s to be found", s)
		}
		if got := values[0].AsUint64(); got != uint64(i) {
			t.Errorf("%s: value = %d, want %d", s, got, i)
		}
	}

	miss := "GGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGG"
	values, found := rr.Get(mustKmer(t, miss))
	if found {
		t.Errorf("unexpected hit for absent k-mer %s", miss)
	}
	for _, v := range values {
		if v.AsUint64() != 0 {
			t.Errorf("miss path returned non-zero value %v, want all-zero tuple", values)
			break
		}
	}
	if len(values) != len(schema) {
		t.Errorf("miss path returned %d values, want %d", len(values), len(schema))
	}
}

func TestLUTAllInLUTDegenerateCase(t *testing.T) {
	// k == lutPrefixLen and no value fields: every record is zero bytes
	// wide, so the bin is represented entirely by the LUT's counts.
	path := filepath.Join(t.TempDir(), "t.kmdb")
	var schema valuetype.Schema
	k := uint64(4)

	seqs := []string{"AAAA", "ACGT", "TTTT"}

	a, err := archive.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := NewLUTWriter(a, 0, k, k, schema, 0, 4096)
	for _, s := range seqs {
		if err := w.Add(mustKmer(t, s), nil); err != nil {
			t.Fatal(err)
		}
	}
	meta, err := w.Close()
	if err != nil {
		t.Fatal(err)
	}
	if meta.TotalKmers != uint64(len(seqs)) {
		t.Fatalf("TotalKmers = %d, want %d", meta.TotalKmers, len(seqs))
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	ra, err := archive.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ra.Close()

	rr, err := OpenLUTRandomAccessReader(ra, 0, k, k, schema, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !rr.Contains(mustKmer(t, "AAAA")) {
		t.Error("expected AAAA to be found")
	}
	if !rr.Contains(mustKmer(t, "TTTT")) {
		t.Error("expected TTTT to be found")
	}
	if rr.Contains(mustKmer(t, "GGGG")) {
		t.Error("unexpected hit for absent k-mer")
	}

	lr, err := OpenLUTListingReader(ra, 0, k, k, schema, 0, 4096)
	if err != nil {
		t.Fatal(err)
	}
	var n int
	for {
		_, _, ok := lr.Next()
		if !ok {
			break
		}
		n++
	}
	if n != len(seqs) {
		t.Fatalf("listing reader emitted %d records, want %d", n, len(seqs))
	}
}

func TestLUTRawWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.kmdb")
	schema := valuetype.Schema{{Type: valuetype.Uint16, StoredWidth: 2}}
	k := uint64(8)
	lutPrefixLen := uint64(2)
	suffixLen := k - lutPrefixLen

	seqs := []string{"AAAAAAAA", "AACCGGTT", "ACGTACGT", "TTTTTTTT"}
	counts := []uint64{10, 20, 30, 40}

	a, err := archive.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	raw := NewLUTRawWriter(a, 0, k, lutPrefixLen, schema, 1)

	numBuckets := int(uint64(1) << (2 * lutPrefixLen))
	counters := make([]uint64, numBuckets)
	var buf []byte
	for i, s := range seqs {
		km := mustKmer(t, s)
		prefix := km.RemoveSuffix(uint32(2 * suffixLen))
		counters[prefix]++

		suffix := km.Clone()
		suffix.K = suffixLen
		buf = append(buf, suffix.StoreLeftAligned(suffixLen)...)
		buf = valuetype.Serialize(buf, []valuetype.Field{valuetype.FieldFromUint64(counts[i])}, schema, 1)
	}
	if err := raw.AddSufAndData(buf); err != nil {
		t.Fatal(err)
	}

	lut := make([]uint64, numBuckets+1)
	var running uint64
	for i, c := range counters {
		lut[i] = running
		running += c
	}
	lut[numBuckets] = running
	if err := raw.AddLUT(lut); err != nil {
		t.Fatal(err)
	}
	if _, err := raw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	ra, err := archive.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ra.Close()

	rr, err := OpenLUTRandomAccessReader(ra, 0, k, lutPrefixLen, schema, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range seqs {
		values, found := rr.Get(mustKmer(t, s))
		if !found {
			t.Fatalf("expected %s to be found", s)
		}
		if got := values[0].AsUint64(); got != counts[i] {
			t.Errorf("%s: value = %d, want %d", s, got, counts[i])
		}
	}
}

func TestChangeLutPrefixLenAfterStartFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.kmdb")
	schema := valuetype.Schema{{Type: valuetype.Uint8, StoredWidth: 1}}
	a, err := archive.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := NewLUTWriter(a, 0, 8, 2, schema, 1, 4096)
	if err := w.Add(mustKmer(t, "AAAAAAAA"), []valuetype.Field{valuetype.FieldFromUint64(1)}); err != nil {
		t.Fatal(err)
	}
	if err := w.ChangeLutPrefixLen(3); err == nil {
		t.Fatal("expected ChangeLutPrefixLen to fail after a write")
	}
}

func TestBloomFilterIsPersistedNotRebuiltOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.kmdb")
	schema := valuetype.Schema{{Type: valuetype.Uint8, StoredWidth: 1}}
	k := uint64(8)

	a, err := archive.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := NewPlainWriter(a, 0, k, schema, 1, 4096)
	if err := w.Add(mustKmer(t, "AAAAAAAA"), []valuetype.Field{valuetype.FieldFromUint64(1)}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	ra, err := archive.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ra.Close()

	if _, ok := ra.StreamIDByName(BloomStreamName(0)); !ok {
		t.Fatal("expected a persisted bloom filter stream")
	}

	filter, err := loadBloomFilter(ra, BloomStreamName(0))
	if err != nil {
		t.Fatal(err)
	}
	if filter == nil {
		t.Fatal("expected a non-nil filter loaded from the persisted stream")
	}
	if !filter.Test(mustKmer(t, "AAAAAAAA").StoreLeftAligned(k)) {
		t.Error("persisted filter does not recognize a k-mer it was built from")
	}
}
