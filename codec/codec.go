package codec

import (
	"bytes"
	"io"
)

// Encoder is implemented by values that can write themselves to a Writer.
type Encoder interface {
	EncodeTo(w *Writer, attrs Attrs) error
}

// Decoder is implemented by pointers that can fill their target from a
// Reader. On error the target may hold a partially decoded value; the
// generic helpers in this package decode into a temporary and only hand back
// complete values.
type Decoder interface {
	DecodeFrom(r *Reader, attrs Attrs) error
}

// DecoderPtr constrains P to be *T with a DecodeFrom method.
type DecoderPtr[T any] interface {
	*T
	Decoder
}

// EncoderPtr constrains P to be *T with an EncodeTo method.
type EncoderPtr[T any] interface {
	*T
	Encoder
}

// Codec constrains P to be *T that both encodes and decodes.
type Codec[T any] interface {
	*T
	Encoder
	Decoder
}

// FixedSizer is implemented by types whose encoding has a constant width.
// Sequence decoders use it to report the exact shortfall of a
// length-prefixed sequence before reading any element.
type FixedSizer interface {
	FixedSize() int
}

// Encode writes v to w with the default configuration.
func Encode(w io.Writer, v Encoder) error {
	return v.EncodeTo(NewWriter(w), Zero())
}

// EncodeToBytes returns the encoding of v with the default configuration.
func EncodeToBytes(v Encoder) ([]byte, error) {
	var buf bytes.Buffer
	if err := v.EncodeTo(NewWriter(&buf), Zero()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads one T from r with the default configuration. The stream is
// buffered, so bytes past the value may be consumed from r; callers decoding
// several values from one stream should share a NewStreamReader instead.
func Decode[T any, P DecoderPtr[T]](r io.Reader) (T, error) {
	return DecodeFrom[T, P](NewStreamReader(r), Zero())
}

// DecodeFromBytes decodes one T from b with the default configuration.
// Trailing bytes are ignored.
func DecodeFromBytes[T any, P DecoderPtr[T]](b []byte) (T, error) {
	return DecodeFrom[T, P](NewReader(b), Zero())
}

// DecodeFrom decodes one T from r with attrs. The zero T is returned on
// error.
func DecodeFrom[T any, P DecoderPtr[T]](r *Reader, attrs Attrs) (T, error) {
	var v T
	if err := P(&v).DecodeFrom(r, attrs); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func fixedSizeOf[T any](p *T) (int, bool) {
	if s, ok := any(p).(FixedSizer); ok {
		return s.FixedSize(), true
	}
	return 0, false
}
