// Package signature computes a bin-routing signature for a k-mer: a
// sliding-window minimum over its m-mer substrings, taking the canonical
// (min of forward/reverse-complement) form of each window.
package signature

import "github.com/Priyanshu23/kmerdbgo/kmer"

// Window accumulates one symbol at a time and reports the signature
// value of the m-mer ending at the most recently inserted symbol.
type Window interface {
	Insert(sym uint8)
	Value() uint64
}

// Scheme selects how an m-mer's value is computed from its raw bits.
type Scheme interface {
	Name() string
	NewWindow(mmerLen uint32) Window
}

// Compute slides an m-mer-length window across the k-mer from left to
// right and returns the minimum window value under scheme.
func Compute(km kmer.Kmer, kmerLen, mmerLen uint64, scheme Scheme) uint64 {
	w := scheme.NewWindow(uint32(mmerLen))

	pos := uint32(2*kmerLen - 2)
	for i := uint64(0); i < mmerLen; i++ {
		w.Insert(km.Get2Bits(pos))
		pos -= 2
	}
	min := w.Value()
	for i := mmerLen; i < kmerLen; i++ {
		w.Insert(km.Get2Bits(pos))
		pos -= 2
		if v := w.Value(); v < min {
			min = v
		}
	}
	return min
}

// minHashScheme is MmerMinHash<MurMur64Hash>: canonical m-mer, mixed
// through the MurmurHash3 64-bit finalizer. This is the default scheme.
type minHashScheme struct{}

// MinHash returns the default signature scheme.
func MinHash() Scheme { return minHashScheme{} }

func (minHashScheme) Name() string { return "MinHash" }

func (minHashScheme) NewWindow(mmerLen uint32) Window {
	return &minHashWindow{
		length: mmerLen,
		mask:   (uint64(1) << (2 * mmerLen)) - 1,
	}
}

type minHashWindow struct {
	length     uint32
	mask       uint64
	str, rev   uint64
	currentVal uint64
}

func (w *minHashWindow) Insert(sym uint8) {
	w.str = (w.str<<2 + uint64(sym)) & w.mask
	w.rev >>= 2
	w.rev += (3 - uint64(sym)) << (2*w.length - 2)

	canon := w.str
	if w.rev < canon {
		canon = w.rev
	}
	w.currentVal = MurMurFinalizer64(canon)
}

func (w *minHashWindow) Value() uint64 { return w.currentVal }
