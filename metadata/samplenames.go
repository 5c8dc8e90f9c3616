package metadata

import (
	"fmt"

	"github.com/Priyanshu23/kmerdbgo/serial"
)

// SerializeSampleNames encodes names as the samples_names stream's
// single part: a count followed by that many length-prefixed strings.
func SerializeSampleNames(names []string) []byte {
	buf := serial.PutUint64(nil, uint64(len(names)))
	for _, n := range names {
		buf = serial.PutString(buf, n)
	}
	return buf
}

// LoadSampleNames decodes a samples_names stream part produced by
// SerializeSampleNames.
func LoadSampleNames(buf []byte) ([]string, error) {
	n, buf, err := serial.GetUint64(buf)
	if err != nil {
		return nil, fmt.Errorf("metadata: reading sample name count: %w", err)
	}
	names := make([]string, n)
	for i := uint64(0); i < n; i++ {
		var name string
		name, buf, err = serial.GetString(buf)
		if err != nil {
			return nil, fmt.Errorf("metadata: reading sample name %d: %w", i, err)
		}
		names[i] = name
	}
	return names, nil
}
