package codec

import (
	"fmt"
	"math"
	"strings"
)

// Endian selects the byte order of a multi-byte value.
type Endian uint8

const (
	Little Endian = iota
	Big
)

func (e Endian) String() string {
	switch e {
	case Little:
		return "little"
	case Big:
		return "big"
	default:
		return fmt.Sprintf("Endian(%d)", uint8(e))
	}
}

// ParseEndian accepts "little" or "big" (case-insensitive).
func ParseEndian(raw string) (Endian, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "little", "le":
		return Little, nil
	case "big", "be":
		return Big, nil
	default:
		return Little, fmt.Errorf("codec: unknown endianness %q", raw)
	}
}

// IntKind is the width and signedness of an integer carried on the wire for a
// length prefix, union discriminant or flags carrier. NoLen means no
// integer is written at all.
type IntKind uint8

const (
	NoLen IntKind = iota
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
)

var intKindNames = [...]string{"none", "u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64"}

func (k IntKind) String() string {
	if int(k) < len(intKindNames) {
		return intKindNames[k]
	}
	return fmt.Sprintf("IntKind(%d)", uint8(k))
}

// ParseIntKind maps a name such as "u16" or "none" to its IntKind.
func ParseIntKind(raw string) (IntKind, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for i, n := range intKindNames {
		if n == name {
			return IntKind(i), nil
		}
	}
	return NoLen, fmt.Errorf("%w: %q", ErrInvalidKind, raw)
}

// Size is the encoded width in bytes; 0 for NoLen.
func (k IntKind) Size() int {
	switch k {
	case U8, I8:
		return 1
	case U16, I16:
		return 2
	case U32, I32:
		return 4
	case U64, I64:
		return 8
	default:
		return 0
	}
}

func (k IntKind) Signed() bool {
	return k >= I8 && k <= I64
}

func (k IntKind) valid() bool {
	return k >= U8 && k <= I64
}

// maxUnsigned is the largest non-negative value the kind can carry.
func (k IntKind) maxUnsigned() uint64 {
	switch k {
	case U8:
		return math.MaxUint8
	case U16:
		return math.MaxUint16
	case U32:
		return math.MaxUint32
	case U64:
		return math.MaxUint64
	case I8:
		return math.MaxInt8
	case I16:
		return math.MaxInt16
	case I32:
		return math.MaxInt32
	case I64:
		return math.MaxInt64
	default:
		return 0
	}
}

// fitsTag reports whether v, read as a two's complement bit pattern for signed
// kinds, is representable in k.
func (k IntKind) fitsTag(v uint64) bool {
	if !k.Signed() {
		return v <= k.maxUnsigned()
	}
	s := int64(v)
	limit := int64(k.maxUnsigned())
	return s <= limit && s >= -limit-1
}

// Attrs is the encode/decode policy that travels with every codec call. It is
// passed by value, so a field-level override never leaks to siblings or the
// caller. The zero value is the default: no length field, little-endian.
type Attrs struct {
	Len       IntKind
	LenEndian Endian
	Endian    Endian
}

// Zero returns the default configuration.
func Zero() Attrs {
	return Attrs{}
}

// WithEndian returns a copy with the value endianness replaced.
func (a Attrs) WithEndian(e Endian) Attrs {
	a.Endian = e
	return a
}

// WithLen returns a copy that prefixes sequences with a kind-wide length in
// byte order e.
func (a Attrs) WithLen(kind IntKind, e Endian) Attrs {
	a.Len = kind
	a.LenEndian = e
	return a
}

// WithoutLen returns a copy with no length field.
func (a Attrs) WithoutLen() Attrs {
	a.Len = NoLen
	a.LenEndian = Little
	return a
}

// Reset returns the default configuration.
func (a Attrs) Reset() Attrs {
	return Attrs{}
}

func (a Attrs) String() string {
	return fmt.Sprintf("endian=%s len=%s len_endian=%s", a.Endian, a.Len, a.LenEndian)
}

// EncodeLength writes n with the configured length kind. It is a no-op when
// no length field is configured.
func (a Attrs) EncodeLength(w *Writer, n int) error {
	if a.Len == NoLen {
		return nil
	}
	if !a.Len.valid() {
		return fmt.Errorf("%w: %s", ErrInvalidKind, a.Len)
	}
	if n < 0 || uint64(n) > a.Len.maxUnsigned() {
		return overflow(uint64(n), a.Len)
	}
	return w.putKind(a.Len, a.LenEndian, uint64(n))
}

// DecodeLength reads a length with the configured kind. ok is false when no
// length field is configured; nothing is consumed in that case.
func (a Attrs) DecodeLength(r *Reader) (n int, ok bool, err error) {
	if a.Len == NoLen {
		return 0, false, nil
	}
	if !a.Len.valid() {
		return 0, false, fmt.Errorf("%w: %s", ErrInvalidKind, a.Len)
	}
	raw, err := r.getKind(a.Len, a.LenEndian)
	if err != nil {
		return 0, false, err
	}
	if a.Len.Signed() && int64(raw) < 0 {
		return 0, false, overflow(raw, a.Len)
	}
	if raw > math.MaxInt {
		return 0, false, overflow(raw, a.Len)
	}
	return int(raw), true, nil
}
