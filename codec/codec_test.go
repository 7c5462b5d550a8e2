package codec

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/bincodec/internal/testutil/testlog"
)

func roundTrip[T any, P Codec[T]](t *testing.T, v T, want []byte) {
	t.Helper()
	got, err := EncodeToBytes(P(&v))
	if err != nil {
		t.Fatalf("encode %v: %v", v, err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("encode %v: got % x want % x", v, got, want)
	}
	back, err := DecodeFromBytes[T, P](want)
	if err != nil {
		t.Fatalf("decode % x: %v", want, err)
	}
	if !reflect.DeepEqual(back, v) {
		t.Fatalf("decode % x: got %v want %v", want, back, v)
	}
}

func TestPrimitiveRoundTrip(t *testing.T) {
	roundTrip(t, Uint8(42), []byte{42})
	roundTrip(t, Int8(-5), []byte{251})
	roundTrip(t, Uint16(42), []byte{42, 0})
	roundTrip(t, Int16(-5), []byte{251, 255})
	roundTrip(t, Uint32(42), []byte{42, 0, 0, 0})
	roundTrip(t, Int32(-5), []byte{251, 255, 255, 255})
	roundTrip(t, Uint64(42), []byte{42, 0, 0, 0, 0, 0, 0, 0})
	roundTrip(t, Int64(-5), []byte{251, 255, 255, 255, 255, 255, 255, 255})
	roundTrip(t, Bool(true), []byte{1})
	roundTrip(t, Bool(false), []byte{0})
	roundTrip(t, Float32(2.0), []byte{0, 0, 0, 64})
	roundTrip(t, Float64(2.0), []byte{0, 0, 0, 0, 0, 0, 0, 64})
	roundTrip(t, Unit{}, []byte{})
}

func TestEndiannessSelectsByteOrder(t *testing.T) {
	cases := []struct {
		attrs Attrs
		want  []byte
	}{
		{Zero(), []byte{0x22, 0x11}},
		{Zero().WithEndian(Big), []byte{0x11, 0x22}},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		if err := Uint16(0x1122).EncodeTo(NewWriter(&buf), tc.attrs); err != nil {
			t.Fatalf("encode (%s): %v", tc.attrs, err)
		}
		if !bytes.Equal(buf.Bytes(), tc.want) {
			t.Fatalf("encode (%s): got % x want % x", tc.attrs, buf.Bytes(), tc.want)
		}
		v, err := DecodeUint16(NewReader(tc.want), tc.attrs)
		if err != nil || v != 0x1122 {
			t.Fatalf("decode (%s): got %#x err=%v", tc.attrs, v, err)
		}
	}
}

func TestBoolDecodesAnyNonZeroAsTrue(t *testing.T) {
	v, err := DecodeBool(NewReader([]byte{7}), Zero())
	if err != nil || !v {
		t.Fatalf("expected true, got %v err=%v", v, err)
	}
}

func TestCStringRoundTrip(t *testing.T) {
	roundTrip(t, CString(""), []byte{0})
	roundTrip(t, CString("test"), []byte{116, 101, 115, 116, 0})
}

func TestCStringMissingTerminator(t *testing.T) {
	_, err := DecodeCString(NewReader([]byte{'a', 'b'}), Zero())
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestCStringInvalidUTF8(t *testing.T) {
	_, err := DecodeCString(NewReader([]byte{0xff, 0xfe, 0}), Zero())
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
	var buf bytes.Buffer
	if err := EncodeCString(NewWriter(&buf), "\xff", Zero()); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8 on encode, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written, got % x", buf.Bytes())
	}
}

func TestCStringRejectsInteriorZero(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeCString(NewWriter(&buf), "a\x00b", Zero())
	if KindOf(err) != KindCustom {
		t.Fatalf("expected custom error, got %v", err)
	}
}

type byteSeq = Seq[Uint8, *Uint8]

func TestSeqWithoutLengthPrefix(t *testing.T) {
	roundTrip(t, byteSeq{}, []byte{})
	roundTrip(t, byteSeq{1, 2, 3, 4}, []byte{1, 2, 3, 4})
	roundTrip(t, Seq[Uint16, *Uint16]{1, 2, 3, 4}, []byte{1, 0, 2, 0, 3, 0, 4, 0})
}

func TestSeqLengthPrefixLayout(t *testing.T) {
	attrs := Zero().WithLen(U16, Little)
	var buf bytes.Buffer
	if err := (byteSeq{1, 2, 3, 4}).EncodeTo(NewWriter(&buf), attrs); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0x04, 0x00, 1, 2, 3, 4}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x want % x", buf.Bytes(), want)
	}
	got, err := DecodeSeq[Uint8](NewReader(want), attrs)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, []Uint8{1, 2, 3, 4}) {
		t.Fatalf("decode: got %v", got)
	}
}

func TestSeqLengthPrefixKinds(t *testing.T) {
	cases := []struct {
		attrs Attrs
		want  []byte
	}{
		{Zero().WithLen(U8, Little), []byte{2, 9, 9}},
		{Zero().WithLen(U32, Big), []byte{0, 0, 0, 2, 9, 9}},
		{Zero().WithLen(U64, Little), []byte{2, 0, 0, 0, 0, 0, 0, 0, 9, 9}},
		{Zero().WithLen(I16, Big), []byte{0, 2, 9, 9}},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		if err := EncodeSeq(NewWriter(&buf), []Uint8{9, 9}, tc.attrs); err != nil {
			t.Fatalf("encode (%s): %v", tc.attrs, err)
		}
		if !bytes.Equal(buf.Bytes(), tc.want) {
			t.Fatalf("encode (%s): got % x want % x", tc.attrs, buf.Bytes(), tc.want)
		}
		got, err := DecodeSeq[Uint8](NewReader(tc.want), tc.attrs)
		if err != nil || len(got) != 2 {
			t.Fatalf("decode (%s): got %v err=%v", tc.attrs, got, err)
		}
	}
}

func TestUnboundedSeqConsumesRest(t *testing.T) {
	testlog.Start(t)
	r := NewReader([]byte{5, 6, 7})
	got, err := DecodeSeq[Uint8](r, Zero())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, []Uint8{5, 6, 7}) {
		t.Fatalf("got %v", got)
	}
	if rem, _ := r.Remaining(); rem != 0 {
		t.Fatalf("expected source drained, %d bytes left", rem)
	}
}

func TestUnboundedSeqStopsOnShortElement(t *testing.T) {
	testlog.Start(t)
	// Two complete u16 elements and one dangling byte.
	got, err := DecodeSeq[Uint16](NewReader([]byte{1, 0, 2, 0, 3}), Zero())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, []Uint16{1, 2}) {
		t.Fatalf("got %v", got)
	}
}

func TestUnboundedSeqFromStream(t *testing.T) {
	testlog.Start(t)
	r := NewStreamReader(bytes.NewReader([]byte{1, 2, 3}))
	got, err := DecodeSeq[Uint8](r, Zero())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %v", got)
	}
}

func TestUnboundedSeqOfUnitTerminates(t *testing.T) {
	got, err := DecodeSeq[Unit](NewStreamReader(bytes.NewReader(nil)), Zero())
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v err=%v", got, err)
	}
}

func TestSeqLengthOverflow(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	err := EncodeSeq(w, make([]Uint8, 256), Zero().WithLen(U8, Little))
	if !errors.Is(err, ErrIntegerOverflow) {
		t.Fatalf("expected ErrIntegerOverflow, got %v", err)
	}
	if buf.Len() != 0 || w.Written() != 0 {
		t.Fatalf("expected no bytes written, got % x", buf.Bytes())
	}
}

func TestCountedSeqShortfallReportedUpFront(t *testing.T) {
	attrs := Zero().WithLen(U8, Little)
	_, err := DecodeSeq[Uint8](NewReader([]byte{3, 1, 2}), attrs)
	if n, ok := NeededBytes(err); !ok || n != 1 {
		t.Fatalf("expected shortfall of 1, got %v", err)
	}

	r := NewReader([]byte{3, 1, 0, 2, 0})
	_, err = DecodeSeq[Uint16](r, attrs)
	if n, ok := NeededBytes(err); !ok || n != 2 {
		t.Fatalf("expected shortfall of 2, got %v", err)
	}
	if r.Offset() != 1 {
		t.Fatalf("expected only the prefix consumed, offset=%d", r.Offset())
	}
}

func TestCountedSeqShortElementIsHardFailure(t *testing.T) {
	attrs := Zero().WithLen(U8, Little)
	_, err := DecodeSeq[CString](NewReader([]byte{2, 'a', 0, 'b'}), attrs)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestNegativeSignedLengthRejected(t *testing.T) {
	_, err := DecodeSeq[Uint8](NewReader([]byte{0xff, 1}), Zero().WithLen(I8, Little))
	if !errors.Is(err, ErrIntegerOverflow) {
		t.Fatalf("expected ErrIntegerOverflow, got %v", err)
	}
}

func TestArrayHasNoPrefix(t *testing.T) {
	attrs := Zero().WithLen(U32, Little).WithEndian(Big)
	var buf bytes.Buffer
	in := [3]Uint16{1, 2, 3}
	if err := EncodeArray(NewWriter(&buf), in[:], attrs); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0, 1, 0, 2, 0, 3}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x want % x", buf.Bytes(), want)
	}
	var out [3]Uint16
	if err := DecodeArray(NewReader(want), out[:], attrs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("got %v want %v", out, in)
	}
}

func TestArrayDecodeLeavesTargetOnFailure(t *testing.T) {
	out := [2]Uint16{7, 7}
	err := DecodeArray(NewReader([]byte{1, 0, 2}), out[:], Zero())
	if n, ok := NeededBytes(err); !ok || n != 1 {
		t.Fatalf("expected shortfall of 1, got %v", err)
	}
	if out != [2]Uint16{7, 7} {
		t.Fatalf("target mutated: %v", out)
	}
}

func TestBoxDelegates(t *testing.T) {
	v := Uint32(0xdeadbeef)
	var buf bytes.Buffer
	if err := EncodeBox(NewWriter(&buf), &v, Zero().WithEndian(Big)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Fatalf("got % x", buf.Bytes())
	}
	got, err := DecodeBox[Uint32](NewReader(buf.Bytes()), Zero().WithEndian(Big))
	if err != nil || *got != v {
		t.Fatalf("decode: got %v err=%v", got, err)
	}
	if err := EncodeBox[Uint32](NewWriter(&buf), nil, Zero()); err == nil {
		t.Fatalf("expected error for nil box")
	}
}

// sampleRecord is the shape an aggregate codec takes: each field is encoded
// in order with its own copy of the ambient attrs.
type sampleRecord struct {
	A uint16
	B string
	C []byte
	D byteSeq
	E uint8
}

func (x sampleRecord) EncodeTo(w *Writer, a Attrs) error {
	if err := EncodeUint16(w, x.A, a); err != nil {
		return err
	}
	if err := EncodeCString(w, x.B, a); err != nil {
		return err
	}
	if err := EncodeBytes(w, x.C, a.WithLen(U16, Little)); err != nil {
		return err
	}
	if err := x.D.EncodeTo(w, a.WithLen(U32, Big)); err != nil {
		return err
	}
	return EncodeUint8(w, x.E, a)
}

func (x *sampleRecord) DecodeFrom(r *Reader, a Attrs) error {
	var out sampleRecord
	var err error
	if out.A, err = DecodeUint16(r, a); err != nil {
		return err
	}
	if out.B, err = DecodeCString(r, a); err != nil {
		return err
	}
	if out.C, err = DecodeBytes(r, a.WithLen(U16, Little)); err != nil {
		return err
	}
	if err = out.D.DecodeFrom(r, a.WithLen(U32, Big)); err != nil {
		return err
	}
	if out.E, err = DecodeUint8(r, a); err != nil {
		return err
	}
	*x = out
	return nil
}

func TestRecordLayout(t *testing.T) {
	roundTrip(t, sampleRecord{
		A: 10000,
		B: "test",
		C: []byte{1, 2, 3, 4},
		D: byteSeq{66},
		E: 42,
	}, []byte{16, 39, 116, 101, 115, 116, 0, 4, 0, 1, 2, 3, 4, 0, 0, 0, 1, 66, 42})
}

func TestFieldOverrideDoesNotLeak(t *testing.T) {
	parent := Zero().WithEndian(Big)
	child := parent.WithLen(U16, Little).WithEndian(Little)
	if parent.Len != NoLen || parent.Endian != Big {
		t.Fatalf("parent attrs mutated: %s", parent)
	}
	if child.Reset() != Zero() {
		t.Fatalf("reset should return defaults")
	}
}

type shortLenRecord struct {
	X byteSeq
}

func (s shortLenRecord) EncodeTo(w *Writer, a Attrs) error {
	return s.X.EncodeTo(w, a.WithLen(U8, Little))
}

func (s *shortLenRecord) DecodeFrom(r *Reader, a Attrs) error {
	return s.X.DecodeFrom(r, a.WithLen(U8, Little))
}

func TestEntryPointErrors(t *testing.T) {
	if _, err := EncodeToBytes(shortLenRecord{X: make(byteSeq, 256)}); !errors.Is(err, ErrIntegerOverflow) {
		t.Fatalf("expected ErrIntegerOverflow, got %v", err)
	}
	_, err := DecodeFromBytes[shortLenRecord]([]byte{3, 1, 2})
	if n, ok := NeededBytes(err); !ok || n != 1 {
		t.Fatalf("expected InsufficientData(1), got %v", err)
	}
}

func TestStreamEntryPoints(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleRecord{A: 1, B: "x", E: 2}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode[sampleRecord](&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.A != 1 || got.B != "x" || got.E != 2 || len(got.C) != 0 || len(got.D) != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}
}
