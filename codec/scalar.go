package codec

// Scalar codecs. The free functions are what aggregate codecs call for
// native Go fields; the named types wrap them so scalars can be sequence
// elements.

func EncodeBool(w *Writer, v bool, _ Attrs) error {
	if v {
		return w.PutU8(1)
	}
	return w.PutU8(0)
}

func DecodeBool(r *Reader, _ Attrs) (bool, error) {
	b, err := r.GetU8()
	return b != 0, err
}

func EncodeUint8(w *Writer, v uint8, _ Attrs) error { return w.PutU8(v) }
func DecodeUint8(r *Reader, _ Attrs) (uint8, error) { return r.GetU8() }
func EncodeInt8(w *Writer, v int8, _ Attrs) error   { return w.PutI8(v) }
func DecodeInt8(r *Reader, _ Attrs) (int8, error)   { return r.GetI8() }

func EncodeUint16(w *Writer, v uint16, a Attrs) error { return w.PutU16(v, a.Endian) }
func DecodeUint16(r *Reader, a Attrs) (uint16, error) { return r.GetU16(a.Endian) }
func EncodeInt16(w *Writer, v int16, a Attrs) error   { return w.PutI16(v, a.Endian) }
func DecodeInt16(r *Reader, a Attrs) (int16, error)   { return r.GetI16(a.Endian) }

func EncodeUint32(w *Writer, v uint32, a Attrs) error { return w.PutU32(v, a.Endian) }
func DecodeUint32(r *Reader, a Attrs) (uint32, error) { return r.GetU32(a.Endian) }
func EncodeInt32(w *Writer, v int32, a Attrs) error   { return w.PutI32(v, a.Endian) }
func DecodeInt32(r *Reader, a Attrs) (int32, error)   { return r.GetI32(a.Endian) }

func EncodeUint64(w *Writer, v uint64, a Attrs) error { return w.PutU64(v, a.Endian) }
func DecodeUint64(r *Reader, a Attrs) (uint64, error) { return r.GetU64(a.Endian) }
func EncodeInt64(w *Writer, v int64, a Attrs) error   { return w.PutI64(v, a.Endian) }
func DecodeInt64(r *Reader, a Attrs) (int64, error)   { return r.GetI64(a.Endian) }

func EncodeFloat32(w *Writer, v float32, a Attrs) error { return w.PutF32(v, a.Endian) }
func DecodeFloat32(r *Reader, a Attrs) (float32, error) { return r.GetF32(a.Endian) }
func EncodeFloat64(w *Writer, v float64, a Attrs) error { return w.PutF64(v, a.Endian) }
func DecodeFloat64(r *Reader, a Attrs) (float64, error) { return r.GetF64(a.Endian) }

type (
	Bool    bool
	Uint8   uint8
	Int8    int8
	Uint16  uint16
	Int16   int16
	Uint32  uint32
	Int32   int32
	Uint64  uint64
	Int64   int64
	Float32 float32
	Float64 float64
)

func (v Bool) EncodeTo(w *Writer, a Attrs) error { return EncodeBool(w, bool(v), a) }
func (v *Bool) DecodeFrom(r *Reader, a Attrs) error {
	x, err := DecodeBool(r, a)
	if err == nil {
		*v = Bool(x)
	}
	return err
}
func (Bool) FixedSize() int { return 1 }

func (v Uint8) EncodeTo(w *Writer, a Attrs) error { return EncodeUint8(w, uint8(v), a) }
func (v *Uint8) DecodeFrom(r *Reader, a Attrs) error {
	x, err := DecodeUint8(r, a)
	if err == nil {
		*v = Uint8(x)
	}
	return err
}
func (Uint8) FixedSize() int { return 1 }

func (v Int8) EncodeTo(w *Writer, a Attrs) error { return EncodeInt8(w, int8(v), a) }
func (v *Int8) DecodeFrom(r *Reader, a Attrs) error {
	x, err := DecodeInt8(r, a)
	if err == nil {
		*v = Int8(x)
	}
	return err
}
func (Int8) FixedSize() int { return 1 }

func (v Uint16) EncodeTo(w *Writer, a Attrs) error { return EncodeUint16(w, uint16(v), a) }
func (v *Uint16) DecodeFrom(r *Reader, a Attrs) error {
	x, err := DecodeUint16(r, a)
	if err == nil {
		*v = Uint16(x)
	}
	return err
}
func (Uint16) FixedSize() int { return 2 }

func (v Int16) EncodeTo(w *Writer, a Attrs) error { return EncodeInt16(w, int16(v), a) }
func (v *Int16) DecodeFrom(r *Reader, a Attrs) error {
	x, err := DecodeInt16(r, a)
	if err == nil {
		*v = Int16(x)
	}
	return err
}
func (Int16) FixedSize() int { return 2 }

func (v Uint32) EncodeTo(w *Writer, a Attrs) error { return EncodeUint32(w, uint32(v), a) }
func (v *Uint32) DecodeFrom(r *Reader, a Attrs) error {
	x, err := DecodeUint32(r, a)
	if err == nil {
		*v = Uint32(x)
	}
	return err
}
func (Uint32) FixedSize() int { return 4 }

func (v Int32) EncodeTo(w *Writer, a Attrs) error { return EncodeInt32(w, int32(v), a) }
func (v *Int32) DecodeFrom(r *Reader, a Attrs) error {
	x, err := DecodeInt32(r, a)
	if err == nil {
		*v = Int32(x)
	}
	return err
}
func (Int32) FixedSize() int { return 4 }

func (v Uint64) EncodeTo(w *Writer, a Attrs) error { return EncodeUint64(w, uint64(v), a) }
func (v *Uint64) DecodeFrom(r *Reader, a Attrs) error {
	x, err := DecodeUint64(r, a)
	if err == nil {
		*v = Uint64(x)
	}
	return err
}
func (Uint64) FixedSize() int { return 8 }

func (v Int64) EncodeTo(w *Writer, a Attrs) error { return EncodeInt64(w, int64(v), a) }
func (v *Int64) DecodeFrom(r *Reader, a Attrs) error {
	x, err := DecodeInt64(r, a)
	if err == nil {
		*v = Int64(x)
	}
	return err
}
func (Int64) FixedSize() int { return 8 }

func (v Float32) EncodeTo(w *Writer, a Attrs) error { return EncodeFloat32(w, float32(v), a) }
func (v *Float32) DecodeFrom(r *Reader, a Attrs) error {
	x, err := DecodeFloat32(r, a)
	if err == nil {
		*v = Float32(x)
	}
	return err
}
func (Float32) FixedSize() int { return 4 }

func (v Float64) EncodeTo(w *Writer, a Attrs) error { return EncodeFloat64(w, float64(v), a) }
func (v *Float64) DecodeFrom(r *Reader, a Attrs) error {
	x, err := DecodeFloat64(r, a)
	if err == nil {
		*v = Float64(x)
	}
	return err
}
func (Float64) FixedSize() int { return 8 }

// Unit encodes to and decodes from zero bytes.
type Unit struct{}

func (Unit) EncodeTo(*Writer, Attrs) error    { return nil }
func (*Unit) DecodeFrom(*Reader, Attrs) error { return nil }
func (Unit) FixedSize() int                   { return 0 }
