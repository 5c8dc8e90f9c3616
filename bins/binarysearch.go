package bins

import "bytes"

// binarySearchKey looks for target among numRecords fixed-width records
// packed into data, comparing only the first keyBytes of each record.
// Records must already be sorted by that key in ascending byte order —
// the same left-aligned byte order kmer.StoreLeftAligned produces,
// which matches lexicographic k-mer order. Returns the record index and
// whether an exact match was found.
func binarySearchKey(data []byte, recordBytes, keyBytes, numRecords int, target []byte) (idx int, found bool) {
	lo, hi := 0, numRecords
	for lo < hi {
		mid := (lo + hi) / 2
		key := data[mid*recordBytes : mid*recordBytes+keyBytes]
		switch bytes.Compare(key, target) {
		case 0:
			return mid, true
		case -1:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo, false
}
