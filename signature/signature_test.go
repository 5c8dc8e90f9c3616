package signature

import (
	"testing"

	"github.com/Priyanshu23/kmerdbgo/kmer"
)

func TestComputeDeterministic(t *testing.T) {
	km, _ := kmer.FromString("ACGTACGTA")
	a := Compute(km, 9, 4, MinHash())
	b := Compute(km, 9, 4, MinHash())
	if a != b {
		t.Fatalf("signature not deterministic: %d != %d", a, b)
	}
}

func TestComputeDependsOnParameters(t *testing.T) {
	km, _ := kmer.FromString("ACGTACGTA")
	a := Compute(km, 9, 4, MinHash())
	b := Compute(km, 9, 5, MinHash())
	if a == b {
		t.Fatalf("expected different signature for different m-mer length, got %d for both", a)
	}
}

func TestKMCCanonicalDisallowsLowComplexity(t *testing.T) {
	// "AAAA" as a 4-mer bit pattern is 0, which the KMC filter disallows
	// (AAA prefix / *AA prefix); its normalized value must be the
	// sentinel 4^4, i.e. it never wins a minimum against any allowed
	// pattern that also appears.
	w := KMCCanonical().NewWindow(4).(*kmcWindow)
	w.Insert(0)
	w.Insert(0)
	w.Insert(0)
	w.Insert(0)
	if w.Value() != uint64(1<<8) {
		t.Fatalf("expected sentinel value %d for AAAA, got %d", uint64(1<<8), w.Value())
	}
}

func TestIsAllowedMatchesDocumentedPatterns(t *testing.T) {
	if isAllowed(0, 4) { // AAAA: AAA prefix
		t.Fatal("AAAA should be disallowed (AAA prefix)")
	}
	if isAllowed(0x3f, 4) { // ATTT: TTT suffix (low 6 bits all set)
		t.Fatal("TTT suffix should be disallowed")
	}
	if !isAllowed(0b01_10_11_01, 4) { // CGTC: no disallowed pattern present
		t.Fatal("CGTC should be allowed")
	}
}
