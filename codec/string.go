package codec

import (
	"strings"
	"unicode/utf8"
)

// EncodeCString writes s followed by a single zero byte. Strings that are
// not valid UTF-8 or that contain a zero byte cannot round-trip and are
// rejected before anything is written.
func EncodeCString(w *Writer, s string, _ Attrs) error {
	if !utf8.ValidString(s) {
		return ErrInvalidUTF8
	}
	if i := strings.IndexByte(s, 0); i >= 0 {
		return Errorf("string has zero byte at offset %d", i)
	}
	if _, err := w.Write([]byte(s)); err != nil {
		return err
	}
	return w.PutU8(0)
}

// DecodeCString reads bytes up to and including a zero terminator. Running
// out of input before the terminator is an insufficient-data error.
func DecodeCString(r *Reader, _ Attrs) (string, error) {
	var sb strings.Builder
	for {
		b, err := r.GetU8()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		sb.WriteByte(b)
	}
	s := sb.String()
	if !utf8.ValidString(s) {
		return "", ErrInvalidUTF8
	}
	return s, nil
}

// CString is a zero-terminated UTF-8 string.
type CString string

func (s CString) EncodeTo(w *Writer, a Attrs) error { return EncodeCString(w, string(s), a) }
func (s *CString) DecodeFrom(r *Reader, a Attrs) error {
	v, err := DecodeCString(r, a)
	if err == nil {
		*s = CString(v)
	}
	return err
}

// EncodeBytes writes the configured length prefix followed by b verbatim.
func EncodeBytes(w *Writer, b []byte, a Attrs) error {
	if err := a.EncodeLength(w, len(b)); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// DecodeBytes reads a length-prefixed run of bytes, or every remaining byte
// when no length field is configured.
func DecodeBytes(r *Reader, a Attrs) ([]byte, error) {
	n, ok, err := a.DecodeLength(r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.ReadRest()
	}
	return r.ReadBytes(n)
}

// Bytes is a byte sequence with the same wire layout as Seq[Uint8].
type Bytes []byte

func (b Bytes) EncodeTo(w *Writer, a Attrs) error { return EncodeBytes(w, b, a) }
func (b *Bytes) DecodeFrom(r *Reader, a Attrs) error {
	v, err := DecodeBytes(r, a)
	if err == nil {
		*b = v
	}
	return err
}
