package bins

import "fmt"

// padID formats a bin index as the fixed 5-digit, zero-padded decimal
// string used throughout stream names.
func padID(binID uint64) string {
	return fmt.Sprintf("%05d", binID)
}

// MetadataStreamName is the per-bin stream carrying a serialized
// BinMetadata, written once at Close.
func MetadataStreamName(binID uint64) string {
	return "bin_metadata_" + padID(binID)
}

// DataStreamName is the base stream name for a bin's sorted records.
// SortedPlain bins store full records here; SortedWithLUT bins use
// SufDataStreamName/LUTStreamName instead.
func DataStreamName(binID uint64) string {
	return "bin_" + padID(binID)
}

// SufDataStreamName is the suffix+value stream of a SortedWithLUT bin.
func SufDataStreamName(binID uint64) string {
	return DataStreamName(binID) + "_suf+data"
}

// LUTStreamName is the prefix lookup table stream of a SortedWithLUT bin.
func LUTStreamName(binID uint64) string {
	return DataStreamName(binID) + "_lut"
}
