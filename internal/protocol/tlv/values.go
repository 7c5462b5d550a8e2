package tlv

import (
	"bytes"
	"fmt"

	"github.com/danmuck/bincodec/codec"
)

// Constructors and accessors for typed field values. Numeric values go through
// the codec so they share its byte-order handling.

func encodeValue(put func(w *codec.Writer) error) []byte {
	var buf bytes.Buffer
	if err := put(codec.NewWriter(&buf)); err != nil {
		// fixed-width writes cannot fail against an in-memory buffer
		panic(err)
	}
	return buf.Bytes()
}

func U8(id uint16, v uint8) Field {
	return Field{ID: id, Type: TypeU8, Value: []byte{v}}
}

func U16(id uint16, v uint16) Field {
	return Field{ID: id, Type: TypeU16, Value: encodeValue(func(w *codec.Writer) error { return w.PutU16(v, codec.Big) })}
}

func U32(id uint16, v uint32) Field {
	return Field{ID: id, Type: TypeU32, Value: encodeValue(func(w *codec.Writer) error { return w.PutU32(v, codec.Big) })}
}

func U64(id uint16, v uint64) Field {
	return Field{ID: id, Type: TypeU64, Value: encodeValue(func(w *codec.Writer) error { return w.PutU64(v, codec.Big) })}
}

func Bool(id uint16, v bool) Field {
	b := byte(0)
	if v {
		b = 1
	}
	return Field{ID: id, Type: TypeBool, Value: []byte{b}}
}

func String(id uint16, v string) Field {
	return Field{ID: id, Type: TypeString, Value: []byte(v)}
}

func Bytes(id uint16, v []byte) Field {
	out := make([]byte, len(v))
	copy(out, v)
	return Field{ID: id, Type: TypeBytes, Value: out}
}

func (f Field) reader(want uint8) (*codec.Reader, error) {
	if err := MustType(f, want); err != nil {
		return nil, err
	}
	if err := checkValue(f.Type, f.Value); err != nil {
		return nil, fmt.Errorf("tlv: field %d: %w", f.ID, err)
	}
	return codec.NewReader(f.Value), nil
}

func (f Field) AsU8() (uint8, error) {
	r, err := f.reader(TypeU8)
	if err != nil {
		return 0, err
	}
	return r.GetU8()
}

func (f Field) AsU16() (uint16, error) {
	r, err := f.reader(TypeU16)
	if err != nil {
		return 0, err
	}
	return r.GetU16(codec.Big)
}

func (f Field) AsU32() (uint32, error) {
	r, err := f.reader(TypeU32)
	if err != nil {
		return 0, err
	}
	return r.GetU32(codec.Big)
}

func (f Field) AsU64() (uint64, error) {
	r, err := f.reader(TypeU64)
	if err != nil {
		return 0, err
	}
	return r.GetU64(codec.Big)
}

func (f Field) AsBool() (bool, error) {
	r, err := f.reader(TypeBool)
	if err != nil {
		return false, err
	}
	return codec.DecodeBool(r, wire)
}

func (f Field) AsString() (string, error) {
	if _, err := f.reader(TypeString); err != nil {
		return "", err
	}
	return string(f.Value), nil
}

func (f Field) AsBytes() ([]byte, error) {
	if err := MustType(f, TypeBytes); err != nil {
		return nil, err
	}
	return f.Value, nil
}

// Any returns the value as a Go value suitable for display: integers as
// uint64, bool, string, or []byte for bytes and unknown types.
func (f Field) Any() (any, error) {
	switch f.Type {
	case TypeU8:
		v, err := f.AsU8()
		return uint64(v), err
	case TypeU16:
		v, err := f.AsU16()
		return uint64(v), err
	case TypeU32:
		v, err := f.AsU32()
		return uint64(v), err
	case TypeU64:
		return f.AsU64()
	case TypeBool:
		return f.AsBool()
	case TypeString:
		return f.AsString()
	default:
		return f.Value, nil
	}
}
