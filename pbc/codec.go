package pbc

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Marshaler renders a record into its wire payload.
type Marshaler interface {
	Marshal() ([]byte, error)
}

// Unmarshaler parses a wire payload into a record.
type Unmarshaler interface {
	Unmarshal(payload []byte) error
}

// Symbolic quorum values accepted wherever a uint32 quorum (r, w, pr, ...)
// is expected.
const (
	QuorumOne     uint32 = math.MaxUint32 - 1
	QuorumQuorum  uint32 = math.MaxUint32 - 2
	QuorumAll     uint32 = math.MaxUint32 - 3
	QuorumDefault uint32 = math.MaxUint32 - 4
)

// Uint32 returns a pointer to v, for optional fields.
func Uint32(v uint32) *uint32 { return &v }

// Bool returns a pointer to v, for optional fields.
func Bool(v bool) *bool { return &v }

// encoder appends protobuf fields to a byte slice.
// Optional fields are skipped when nil.
type encoder struct {
	b []byte
}

func (e *encoder) bytes(num protowire.Number, v []byte) {
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, v)
}

func (e *encoder) optBytes(num protowire.Number, v []byte) {
	if v != nil {
		e.bytes(num, v)
	}
}

func (e *encoder) repBytes(num protowire.Number, vs [][]byte) {
	for _, v := range vs {
		e.bytes(num, v)
	}
}

func (e *encoder) varint(num protowire.Number, v uint64) {
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, v)
}

func (e *encoder) optUint32(num protowire.Number, v *uint32) {
	if v != nil {
		e.varint(num, uint64(*v))
	}
}

func (e *encoder) boolean(num protowire.Number, v bool) {
	e.varint(num, protowire.EncodeBool(v))
}

func (e *encoder) optBool(num protowire.Number, v *bool) {
	if v != nil {
		e.boolean(num, *v)
	}
}

func (e *encoder) optFloat32(num protowire.Number, v *float32) {
	if v != nil {
		e.b = protowire.AppendTag(e.b, num, protowire.Fixed32Type)
		e.b = protowire.AppendFixed32(e.b, math.Float32bits(*v))
	}
}

// message encodes a nested record as a length-delimited field.
func (e *encoder) message(num protowire.Number, m appender) {
	e.bytes(num, m.appendTo(nil))
}

// appender is implemented by every record that can be nested.
type appender interface {
	appendTo(b []byte) []byte
}

// field is one decoded key/value pair. The accessors check the wire type;
// a mismatch is recorded in bad and fails the whole decode.
type field struct {
	num protowire.Number
	typ protowire.Type
	v   uint64 // varint and fixed values
	b   []byte // length-delimited values, aliases the input
	bad *error
}

func (f field) want(typ protowire.Type) bool {
	if f.typ == typ {
		return true
	}
	if *f.bad == nil {
		*f.bad = fmt.Errorf("field %d: wire type %d, want %d", f.num, f.typ, typ)
	}
	return false
}

func (f field) uint32() uint32 {
	if !f.want(protowire.VarintType) {
		return 0
	}
	return uint32(f.v)
}

func (f field) uint32p() *uint32 {
	v := f.uint32()
	return &v
}

func (f field) int64() int64 {
	if !f.want(protowire.VarintType) {
		return 0
	}
	return int64(f.v)
}

func (f field) boolean() bool {
	if !f.want(protowire.VarintType) {
		return false
	}
	return protowire.DecodeBool(f.v)
}

func (f field) boolp() *bool {
	v := f.boolean()
	return &v
}

func (f field) float32p() *float32 {
	if !f.want(protowire.Fixed32Type) {
		return nil
	}
	v := math.Float32frombits(uint32(f.v))
	return &v
}

// decode walks every field in b and hands it to fn. Unknown fields must be
// ignored by fn. Wire-level corruption, and a known field read with the
// wrong wire type, are reported as a SchemaError naming the record.
func decode(record string, b []byte, fn func(f field) error) error {
	var bad error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return schemaError(record, protowire.ParseError(n))
		}
		b = b[n:]

		f := field{num: num, typ: typ, bad: &bad}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.v = uint64(v)
		case protowire.Fixed64Type:
			f.v, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return schemaError(record, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
		if bad != nil {
			return schemaError(record, bad)
		}
	}
	return nil
}

// bytes returns the value of a length-delimited field. An empty value is
// returned as a non-nil empty slice so it stays distinguishable from an
// absent field.
func (f field) bytes() []byte {
	if !f.want(protowire.BytesType) {
		return nil
	}
	if f.b == nil {
		return []byte{}
	}
	return f.b
}
