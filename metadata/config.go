package metadata

import (
	"fmt"

	"github.com/Priyanshu23/kmerdbgo/binid"
	"github.com/Priyanshu23/kmerdbgo/signature"
)

// SignatureScheme names which minimizer scheme selects a k-mer's
// signature, as persisted in a database's config.
type SignatureScheme string

const (
	MinHash      SignatureScheme = "MinHash"
	KMCCanonical SignatureScheme = "KMCCanonical"
)

// ParseSignatureScheme inverts SignatureScheme's string form.
func ParseSignatureScheme(s string) (SignatureScheme, error) {
	switch SignatureScheme(s) {
	case MinHash, KMCCanonical:
		return SignatureScheme(s), nil
	default:
		return "", fmt.Errorf("metadata: unknown signature_selection_scheme %q", s)
	}
}

// Scheme resolves the named scheme to its implementation.
func (s SignatureScheme) Scheme() (signature.Scheme, error) {
	switch s {
	case MinHash:
		return signature.MinHash(), nil
	case KMCCanonical:
		return signature.KMCCanonical(), nil
	default:
		return nil, fmt.Errorf("metadata: unknown signature_selection_scheme %q", s)
	}
}

// Config is the whole-database configuration shared by every bin:
// k-mer length, sample count, bin count, and how signatures route
// k-mers to bins.
type Config struct {
	KmerLen         uint64
	NumSamples      uint64
	NumBins         uint64
	SignatureLen    uint64
	SignatureScheme SignatureScheme
	BinMapping      binid.Mapping
}
