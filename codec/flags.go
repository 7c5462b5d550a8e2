package codec

import "fmt"

// Flags is the value of a flags carrier: one bit per optional field that
// follows it. The carrier written to the wire is always built from which
// optional fields are present, never taken from the caller's own copy of the
// carrier field.
type Flags uint64

// Mark sets bit when present is true and clears it otherwise, so a carrier
// seeded from caller state still matches the fields that follow it.
func (f *Flags) Mark(bit uint64, present bool) {
	if present {
		*f |= Flags(bit)
		return
	}
	*f &^= Flags(bit)
}

func (f Flags) Has(bit uint64) bool {
	return uint64(f)&bit != 0
}

func checkCarrier(kind IntKind) error {
	switch kind {
	case U8, U16, U32, U64:
		return nil
	default:
		return fmt.Errorf("%w: flags carrier must be unsigned, got %s", ErrInvalidKind, kind)
	}
}

// EncodeFlags writes f as a carrier of the given unsigned kind in the
// field's value byte order.
func EncodeFlags(w *Writer, f Flags, kind IntKind, a Attrs) error {
	if err := checkCarrier(kind); err != nil {
		return err
	}
	if uint64(f) > kind.maxUnsigned() {
		return overflow(uint64(f), kind)
	}
	return w.putKind(kind, a.Endian, uint64(f))
}

// DecodeFlags reads a carrier of the given unsigned kind.
func DecodeFlags(r *Reader, kind IntKind, a Attrs) (Flags, error) {
	if err := checkCarrier(kind); err != nil {
		return 0, err
	}
	v, err := r.getKind(kind, a.Endian)
	if err != nil {
		return 0, err
	}
	return Flags(v), nil
}

// EncodeOptional writes *v when it is present. A present value whose bit is
// not set in the carrier already on the wire is an error, since a decoder
// would never read it back.
func EncodeOptional[T any, P EncoderPtr[T]](w *Writer, f Flags, bit uint64, v *T, a Attrs) error {
	if v == nil {
		return nil
	}
	if bit == 0 || !f.Has(bit) {
		return Errorf("optional field present but carrier bit %#x is not set", bit)
	}
	return P(v).EncodeTo(w, a)
}

// DecodeOptional decodes a T when bit is set in f and returns nil, consuming
// nothing, when it is not.
func DecodeOptional[T any, P DecoderPtr[T]](r *Reader, f Flags, bit uint64, a Attrs) (*T, error) {
	if !f.Has(bit) {
		return nil, nil
	}
	return DecodeBox[T, P](r, a)
}
