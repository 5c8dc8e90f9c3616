package signature

// MurMurFinalizer64 is the MurmurHash3 64-bit finalizer mix, used to turn
// a canonical m-mer bit pattern into a well-distributed signature value.
func MurMurFinalizer64(h uint64) uint64 {
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}
