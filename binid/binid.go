// Package binid maps a k-mer signature to a bin index.
package binid

// Mapping selects how a signature is reduced to a bin index.
type Mapping string

const (
	// Modulo is the only implemented mapping: bin_id = signature % num_bins.
	Modulo Mapping = "Modulo"

	// ZigZag is a documented future extension (a reflected-range mapping)
	// that is not implemented; selecting it is a caller error.
	ZigZag Mapping = "ZigZag"
)

// BinID derives a bin index from a signature under mapping.
func BinID(mapping Mapping, signature uint64, numBins uint64) (uint64, error) {
	switch mapping {
	case Modulo:
		return signature % numBins, nil
	default:
		return 0, errUnsupportedMapping(mapping)
	}
}

type errUnsupportedMapping Mapping

func (e errUnsupportedMapping) Error() string {
	return "binid: unsupported signature-to-bin mapping: " + string(e)
}
