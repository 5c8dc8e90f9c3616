package signature

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// kmcCanonicalScheme is MmerSignature: like MinHash, but the value of an
// m-mer is a filtered canonical form where certain low-complexity
// patterns are disallowed (mapped to a sentinel). Present for
// completeness, matching the upstream counting tool's own minimizer
// filter; not the database's default signature source.
type kmcCanonicalScheme struct{}

// KMCCanonical returns the canonical-minimizer scheme. Supported m-mer
// lengths are 4..11, matching the precomputed norm table sizes.
func KMCCanonical() Scheme { return kmcCanonicalScheme{} }

func (kmcCanonicalScheme) Name() string { return "KMCCanonical" }

func (kmcCanonicalScheme) NewWindow(mmerLen uint32) Window {
	return &kmcWindow{
		length: mmerLen,
		mask:   (uint32(1) << (2 * mmerLen)) - 1,
		norm:   normTable(mmerLen),
	}
}

type kmcWindow struct {
	length     uint32
	mask       uint32
	norm       []uint32
	str        uint32
	currentVal uint64
}

func (w *kmcWindow) Insert(sym uint8) {
	w.str = (w.str<<2 + uint32(sym)) & w.mask
	w.currentVal = uint64(w.norm[w.str])
}

func (w *kmcWindow) Value() uint64 { return w.currentVal }

// isAllowed reports whether mmer (length symbols, 2 bits each) passes
// the KMC low-complexity filter: no AA run, no AAA/ACA prefix, no *AA
// prefix, no TTT/TGT/TG* suffix.
func isAllowed(mmer uint32, length uint32) bool {
	if mmer&0x3f == 0x3f { // TTT suffix
		return false
	}
	if mmer&0x3f == 0x3b { // TGT suffix
		return false
	}
	if mmer&0x3c == 0x3c { // TG* suffix
		return false
	}

	m := mmer
	for j := uint32(0); j < length-3; j++ {
		if m&0xf == 0 { // AA inside
			return false
		}
		m >>= 2
	}

	if m == 0 { // AAA prefix
		return false
	}
	if m == 0x04 { // ACA prefix
		return false
	}
	if m&0xf == 0 { // *AA prefix
		return false
	}
	return true
}

func reverseComplementMmer(mmer uint32, length uint32) uint32 {
	var rev uint32
	shift := length*2 - 2
	for i := uint32(0); i < length; i++ {
		rev += (3 - (mmer & 3)) << shift
		mmer >>= 2
		shift -= 2
	}
	return rev
}

var (
	normCacheMu sync.Mutex
	normCache   = map[uint32][]uint32{}
)

// normTable lazily builds and caches, per m-mer length, the table mapping
// every raw m-mer bit pattern to its canonical normalized signature
// value (the sentinel 4^length marks "disallowed"). The allowed/
// disallowed partition of the domain is tracked with a bitset rather
// than reusing the sentinel-valued norm array, so the two concerns
// (membership, value) stay separate the way the archive's own bloom
// filter separates membership from payload.
func normTable(length uint32) []uint32 {
	normCacheMu.Lock()
	defer normCacheMu.Unlock()

	if t, ok := normCache[length]; ok {
		return t
	}

	special := uint32(1) << (length * 2)
	allowed := bitset.New(uint(special))
	for i := uint32(0); i < special; i++ {
		if isAllowed(i, length) {
			allowed.Set(uint(i))
		}
	}

	norm := make([]uint32, special)
	for i := uint32(0); i < special; i++ {
		rev := reverseComplementMmer(i, length)

		strVal := special
		if allowed.Test(uint(i)) {
			strVal = i
		}
		revVal := special
		if allowed.Test(uint(rev)) {
			revVal = rev
		}

		if strVal < revVal {
			norm[i] = strVal
		} else {
			norm[i] = revVal
		}
	}

	normCache[length] = norm
	return norm
}
