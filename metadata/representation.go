package metadata

import (
	"fmt"

	"github.com/Priyanshu23/kmerdbgo/serial"
)

// Representation selects a bin's on-disk record layout.
type Representation string

const (
	SortedPlain   Representation = "SortedPlain"
	SortedWithLUT Representation = "SortedWithLUT"
)

// ParseRepresentation inverts Representation's string form.
func ParseRepresentation(s string) (Representation, error) {
	switch Representation(s) {
	case SortedPlain, SortedWithLUT:
		return Representation(s), nil
	default:
		return "", fmt.Errorf("metadata: unknown kmers_representation %q", s)
	}
}

// RepresentationConfig is the layout-specific piece of a database's
// configuration: empty for SortedPlain, the LUT prefix length for
// SortedWithLUT.
type RepresentationConfig interface {
	Serialize() []byte
}

// ConfigSortedPlain carries no extra configuration.
type ConfigSortedPlain struct{}

func (ConfigSortedPlain) Serialize() []byte { return nil }

// ConfigSortedWithLUT records the LUT prefix length bins were written
// with.
type ConfigSortedWithLUT struct {
	LutPrefixLen uint64
}

func (c ConfigSortedWithLUT) Serialize() []byte {
	return serial.PutUint64(nil, c.LutPrefixLen)
}

// LoadRepresentationConfig decodes the representation-specific
// configuration for repr from the front of buf, returning the
// remaining bytes.
func LoadRepresentationConfig(repr Representation, buf []byte) (RepresentationConfig, []byte, error) {
	switch repr {
	case SortedPlain:
		return ConfigSortedPlain{}, buf, nil
	case SortedWithLUT:
		l, rest, err := serial.GetUint64(buf)
		if err != nil {
			return nil, nil, fmt.Errorf("metadata: reading lut_prefix_len: %w", err)
		}
		return ConfigSortedWithLUT{LutPrefixLen: l}, rest, nil
	default:
		return nil, nil, fmt.Errorf("metadata: unknown kmers_representation %q", repr)
	}
}
