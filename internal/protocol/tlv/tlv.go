package tlv

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/danmuck/bincodec/codec"
)

// HeaderLen is id(2) + type(1) + length(4).
const HeaderLen = 7

var (
	ErrShortFieldHeader = errors.New("tlv: short field header")
	ErrShortFieldValue  = errors.New("tlv: short field value")
	ErrBadValue         = errors.New("tlv: malformed field value")
)

// Type IDs. Anything else decodes through the unknown arm and is kept verbatim.
const (
	TypeU8     uint8 = 1
	TypeU16    uint8 = 2
	TypeU32    uint8 = 3
	TypeU64    uint8 = 4
	TypeBool   uint8 = 5
	TypeString uint8 = 6
	TypeBytes  uint8 = 7
)

// valueUnion frames every value as type(u8) + length(u32 BE) + bytes so that
// readers can skip types they do not understand.
var valueUnion = codec.MustUnion(
	codec.UnionConfig{Tag: codec.U8, Nest: codec.U32, NestEndian: codec.Big},
	codec.ArmAt("u8", uint64(TypeU8)),
	codec.Arm("u16"),
	codec.Arm("u32"),
	codec.Arm("u64"),
	codec.Arm("bool"),
	codec.Arm("string"),
	codec.Arm("bytes"),
	codec.DefaultArm("unknown"),
)

var wire = codec.Zero().WithEndian(codec.Big)

// Field is one TLV field. Value holds the encoded value bytes; numeric types
// are big-endian.
type Field struct {
	ID    uint16
	Type  uint8
	Value []byte
}

// Known reports whether t is one of the declared type IDs.
func Known(t uint8) bool {
	return t >= TypeU8 && t <= TypeBytes
}

// TypeName is the declared name of t, or "unknown".
func TypeName(t uint8) string {
	if !Known(t) {
		return "unknown"
	}
	return valueUnion.Name(valueUnion.Match(uint64(t)))
}

func (f Field) EncodeTo(w *codec.Writer, _ codec.Attrs) error {
	if err := codec.EncodeUint16(w, f.ID, wire); err != nil {
		return err
	}
	if !Known(f.Type) {
		return valueUnion.EncodeUnknown(w, codec.Unknown{Discriminant: uint64(f.Type), Raw: f.Value})
	}
	if err := checkValue(f.Type, f.Value); err != nil {
		return fmt.Errorf("tlv: field %d: %w", f.ID, err)
	}
	return valueUnion.EncodeVariant(w, valueUnion.Match(uint64(f.Type)), func(w *codec.Writer) error {
		_, err := w.Write(f.Value)
		return err
	})
}

func (f *Field) DecodeFrom(r *codec.Reader, _ codec.Attrs) error {
	id, err := codec.DecodeUint16(r, wire)
	if err != nil {
		return err
	}
	var value []byte
	idx, unk, err := valueUnion.Decode(r, func(_ int, sub *codec.Reader) error {
		var rerr error
		value, rerr = sub.ReadRest()
		return rerr
	})
	if err != nil {
		return err
	}
	out := Field{ID: id}
	if def, _ := valueUnion.DefaultIndex(); idx == def {
		out.Type = uint8(unk.Discriminant)
		out.Value = unk.Raw
	} else {
		d, _ := valueUnion.Discriminant(idx)
		out.Type = uint8(d)
		out.Value = value
		if err := checkValue(out.Type, out.Value); err != nil {
			return fmt.Errorf("tlv: field %d: %w", id, err)
		}
	}
	*f = out
	return nil
}

// checkValue rejects values whose width or content does not match a known type.
func checkValue(t uint8, v []byte) error {
	want := 0
	switch t {
	case TypeU8, TypeBool:
		want = 1
	case TypeU16:
		want = 2
	case TypeU32:
		want = 4
	case TypeU64:
		want = 8
	case TypeString:
		if !utf8.Valid(v) {
			return fmt.Errorf("%w: %w", ErrBadValue, codec.ErrInvalidUTF8)
		}
		return nil
	default:
		return nil
	}
	if len(v) != want {
		return fmt.Errorf("%w: %s wants %d bytes, got %d", ErrBadValue, TypeName(t), want, len(v))
	}
	return nil
}

// EncodeField returns the wire bytes of a single field.
func EncodeField(f Field) ([]byte, error) {
	return codec.EncodeToBytes(f)
}

// EncodeFields concatenates the fields with no count prefix.
func EncodeFields(fields []Field) ([]byte, error) {
	return codec.EncodeToBytes(codec.Seq[Field, *Field](fields))
}

// DecodeFields decodes a payload made only of fields. Unlike a plain unbounded
// sequence, a truncated trailing field is an error here: a frame payload has
// an exact length, so leftover bytes mean corruption.
func DecodeFields(payload []byte) ([]Field, error) {
	r := codec.NewReader(payload)
	fields := make([]Field, 0)
	for {
		rem, _ := r.Remaining()
		if rem == 0 {
			return fields, nil
		}
		if err := r.Require(HeaderLen); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrShortFieldHeader, err)
		}
		var f Field
		if err := f.DecodeFrom(r, codec.Zero()); err != nil {
			if errors.Is(err, codec.ErrInsufficientData) {
				return nil, fmt.Errorf("%w: %w", ErrShortFieldValue, err)
			}
			return nil, err
		}
		fields = append(fields, f)
	}
}

func GetField(fields []Field, id uint16) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

func MustType(f Field, expected uint8) error {
	if f.Type != expected {
		return fmt.Errorf("tlv: field %d type mismatch: got %s want %s", f.ID, TypeName(f.Type), TypeName(expected))
	}
	return nil
}
