// Package metadata describes a k-mer database's whole-file
// configuration and value schema: the "metadata" archive stream every
// database carries, written once at creation and validated against on
// every open.
package metadata

import (
	"fmt"

	"github.com/Priyanshu23/kmerdbgo/binid"
	"github.com/Priyanshu23/kmerdbgo/serial"
	"github.com/Priyanshu23/kmerdbgo/valuetype"
)

// Metadata is the full contents of a database's "metadata" stream.
type Metadata struct {
	Version              Version
	Config               Config
	Schema               valuetype.Schema
	Representation       Representation
	RepresentationConfig RepresentationConfig
}

// Serialize encodes m in the exact field order a reader expects:
// version, core config, per-field value types and widths, then the
// chosen representation and its own configuration.
func (m Metadata) Serialize() []byte {
	buf := serial.PutString(nil, m.Version.String())
	buf = serial.PutUint64(buf, m.Config.KmerLen)
	buf = serial.PutUint64(buf, m.Config.NumSamples)
	buf = serial.PutUint64(buf, m.Config.NumBins)
	buf = serial.PutUint64(buf, m.Config.SignatureLen)
	buf = serial.PutString(buf, string(m.Config.SignatureScheme))
	buf = serial.PutString(buf, string(m.Config.BinMapping))

	buf = serial.PutUint64(buf, uint64(len(m.Schema)))
	for _, f := range m.Schema {
		buf = serial.PutString(buf, f.Type.String())
		buf = serial.PutUint64(buf, f.StoredBytes())
	}

	buf = serial.PutString(buf, string(m.Representation))
	buf = append(buf, m.RepresentationConfig.Serialize()...)
	return buf
}

// Load decodes a Metadata from a database's "metadata" stream.
func Load(buf []byte) (Metadata, error) {
	var m Metadata

	verStr, buf, err := serial.GetString(buf)
	if err != nil {
		return Metadata{}, fmt.Errorf("metadata: reading version: %w", err)
	}
	if m.Version, err = ParseVersion(verStr); err != nil {
		return Metadata{}, err
	}

	if m.Config.KmerLen, buf, err = serial.GetUint64(buf); err != nil {
		return Metadata{}, fmt.Errorf("metadata: reading kmer_len: %w", err)
	}
	if m.Config.NumSamples, buf, err = serial.GetUint64(buf); err != nil {
		return Metadata{}, fmt.Errorf("metadata: reading num_samples: %w", err)
	}
	if m.Config.NumBins, buf, err = serial.GetUint64(buf); err != nil {
		return Metadata{}, fmt.Errorf("metadata: reading num_bins: %w", err)
	}
	if m.Config.SignatureLen, buf, err = serial.GetUint64(buf); err != nil {
		return Metadata{}, fmt.Errorf("metadata: reading signature_len: %w", err)
	}

	sigStr, buf, err := serial.GetString(buf)
	if err != nil {
		return Metadata{}, fmt.Errorf("metadata: reading signature_selection_scheme: %w", err)
	}
	if m.Config.SignatureScheme, err = ParseSignatureScheme(sigStr); err != nil {
		return Metadata{}, err
	}

	mapStr, buf, err := serial.GetString(buf)
	if err != nil {
		return Metadata{}, fmt.Errorf("metadata: reading signature_to_bin_mapping: %w", err)
	}
	m.Config.BinMapping = binid.Mapping(mapStr)

	numFields, buf, err := serial.GetUint64(buf)
	if err != nil {
		return Metadata{}, fmt.Errorf("metadata: reading value schema size: %w", err)
	}
	m.Schema = make(valuetype.Schema, numFields)
	for i := uint64(0); i < numFields; i++ {
		typeStr, rest, err := serial.GetString(buf)
		if err != nil {
			return Metadata{}, fmt.Errorf("metadata: reading value type %d: %w", i, err)
		}
		buf = rest
		ty, err := valuetype.ParseType(typeStr)
		if err != nil {
			return Metadata{}, err
		}
		width, rest, err := serial.GetUint64(buf)
		if err != nil {
			return Metadata{}, fmt.Errorf("metadata: reading stored width %d: %w", i, err)
		}
		buf = rest
		m.Schema[i] = valuetype.FieldSpec{Type: ty, StoredWidth: width}
	}

	reprStr, buf, err := serial.GetString(buf)
	if err != nil {
		return Metadata{}, fmt.Errorf("metadata: reading kmers_representation: %w", err)
	}
	if m.Representation, err = ParseRepresentation(reprStr); err != nil {
		return Metadata{}, err
	}
	if m.RepresentationConfig, _, err = LoadRepresentationConfig(m.Representation, buf); err != nil {
		return Metadata{}, err
	}

	return m, nil
}

// CheckCompatible validates m against the version this build writes.
func (m Metadata) CheckCompatible() error {
	if !Current.IsCompatible(m.Version) {
		return fmt.Errorf("%w: file is version %s, this build writes %s", ErrIncompatibleVersion, m.Version, Current)
	}
	return nil
}

// CheckSchema validates that want matches the schema recorded in m.
func (m Metadata) CheckSchema(want valuetype.Schema) error {
	if len(want) != len(m.Schema) {
		return fmt.Errorf("%w: %d fields recorded, %d given", ErrSchemaMismatch, len(m.Schema), len(want))
	}
	for i := range want {
		if want[i] != m.Schema[i] {
			return fmt.Errorf("%w: field %d is %v/%d, given %v/%d",
				ErrSchemaMismatch, i, m.Schema[i].Type, m.Schema[i].StoredWidth, want[i].Type, want[i].StoredWidth)
		}
	}
	return nil
}
