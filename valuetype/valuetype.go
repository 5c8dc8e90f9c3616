// Package valuetype describes the per-k-mer value schema: a tuple of
// typed fields, each with a declared semantic type and on-disk width,
// and a raw-bits carrier for field values that stands in for the
// heterogeneous C++ value tuple template (Go generics cannot parametrize
// over a per-position heterogeneous field list the way a variadic
// template can).
package valuetype

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Type is a field's semantic type.
type Type int

const (
	Uint8 Type = iota
	Uint16
	Uint32
	Uint64
	Float
	Double
)

func (t Type) String() string {
	switch t {
	case Uint8:
		return "Uint8"
	case Uint16:
		return "Uint16"
	case Uint32:
		return "Uint32"
	case Uint64:
		return "Uint64"
	case Float:
		return "Float"
	case Double:
		return "Double"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType inverts String, as used when decoding a metadata stream.
func ParseType(s string) (Type, error) {
	switch s {
	case "Uint8":
		return Uint8, nil
	case "Uint16":
		return Uint16, nil
	case "Uint32":
		return Uint32, nil
	case "Uint64":
		return Uint64, nil
	case "Float":
		return Float, nil
	case "Double":
		return Double, nil
	default:
		return 0, fmt.Errorf("valuetype: unknown value_type_name %q", s)
	}
}

// NativeWidth is the in-memory width of the semantic type, in bytes.
func (t Type) NativeWidth() uint64 {
	switch t {
	case Uint8:
		return 1
	case Uint16:
		return 2
	case Uint32:
		return 4
	case Uint64:
		return 8
	case Float:
		return 4
	case Double:
		return 8
	default:
		return 0
	}
}

// FieldSpec is one column of the per-k-mer value tuple: a semantic type
// plus its declared stored width. Integers may be stored narrower than
// their native width; floats must be stored at native width.
type FieldSpec struct {
	Type        Type
	StoredWidth uint64
}

// Schema is the declared shape of one sample's value tuple.
type Schema []FieldSpec

// TupleBytes is the serialized size of one sample's tuple.
func (s Schema) TupleBytes() uint64 {
	var total uint64
	for _, f := range s {
		total += f.storedBytes()
	}
	return total
}

// RecordBytes is the serialized size of all samples' tuples for one
// k-mer record.
func (s Schema) RecordBytes(numSamples uint64) uint64 {
	return s.TupleBytes() * numSamples
}

func (f FieldSpec) storedBytes() uint64 {
	if f.Type == Float || f.Type == Double {
		return f.Type.NativeWidth()
	}
	return f.StoredWidth
}

// StoredBytes is the on-disk width of one field, as persisted in
// metadata: native width for floats, the declared StoredWidth for
// integers.
func (f FieldSpec) StoredBytes() uint64 {
	return f.storedBytes()
}

// Field is a raw-bits carrier for one field's value: unsigned integers
// are held verbatim, floats are held via their IEEE bit pattern.
type Field uint64

func FieldFromUint64(v uint64) Field    { return Field(v) }
func FieldFromFloat32(v float32) Field  { return Field(math.Float32bits(v)) }
func FieldFromFloat64(v float64) Field  { return Field(math.Float64bits(v)) }
func (f Field) AsUint64() uint64        { return uint64(f) }
func (f Field) AsFloat32() float32      { return math.Float32frombits(uint32(f)) }
func (f Field) AsFloat64() float64      { return math.Float64frombits(uint64(f)) }

// Zero returns a zeroed tuple set for numSamples samples under schema.
func Zero(schema Schema, numSamples uint64) []Field {
	return make([]Field, uint64(len(schema))*numSamples)
}

// Serialize appends the little-endian encoding of values (numSamples
// tuples, schema fields in declaration order, tuples in sample order)
// to buf and returns the extended slice.
func Serialize(buf []byte, values []Field, schema Schema, numSamples uint64) []byte {
	idx := 0
	for s := uint64(0); s < numSamples; s++ {
		for _, spec := range schema {
			buf = appendLE(buf, uint64(values[idx]), spec.storedBytes())
			idx++
		}
	}
	return buf
}

// Load decodes numSamples tuples from buf and returns the values plus
// the number of bytes consumed.
func Load(buf []byte, schema Schema, numSamples uint64) ([]Field, int) {
	values := make([]Field, 0, uint64(len(schema))*numSamples)
	pos := 0
	for s := uint64(0); s < numSamples; s++ {
		for _, spec := range schema {
			width := int(spec.storedBytes())
			v := readLE(buf[pos : pos+width])
			pos += width
			values = append(values, Field(v))
		}
	}
	return values, pos
}

func appendLE(buf []byte, v uint64, width uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:width]...)
}

func readLE(buf []byte) uint64 {
	var b [8]byte
	copy(b[:], buf)
	return binary.LittleEndian.Uint64(b[:])
}
