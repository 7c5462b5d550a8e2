package codec

import (
	"errors"
	"math"

	"github.com/rs/zerolog/log"
)

// EncodeSeq writes the configured length prefix and then every element in
// order. The prefix is range-checked before any element is written.
func EncodeSeq[T any, P EncoderPtr[T]](w *Writer, s []T, a Attrs) error {
	if err := a.EncodeLength(w, len(s)); err != nil {
		return err
	}
	for i := range s {
		if err := P(&s[i]).EncodeTo(w, a); err != nil {
			return err
		}
	}
	return nil
}

// DecodeSeq reads a sequence. With a length field configured it decodes
// exactly that many elements and any element error is returned unchanged.
// Without one it decodes until the source runs dry: the first
// insufficient-data error ends the sequence and the elements decoded so far
// are returned.
//
// In the unprefixed case a truncated final element is indistinguishable
// from a clean end of input; its partial bytes are consumed and dropped.
func DecodeSeq[T any, P DecoderPtr[T]](r *Reader, a Attrs) ([]T, error) {
	n, ok, err := a.DecodeLength(r)
	if err != nil {
		return nil, err
	}
	if ok {
		return decodeCounted[T, P](r, n, a)
	}
	return decodeUntilExhausted[T, P](r, a)
}

// maxStreamCapHint bounds the preallocation for a counted sequence whose
// source length is unknown; the slice grows past it as elements decode.
const maxStreamCapHint = 1024

func decodeCounted[T any, P DecoderPtr[T]](r *Reader, n int, a Attrs) ([]T, error) {
	var probe T
	if err := requireElements(r, &probe, n); err != nil {
		return nil, err
	}
	capHint := n
	if rem, known := r.Remaining(); known {
		capHint = min(capHint, rem)
	} else {
		capHint = min(capHint, maxStreamCapHint)
	}
	out := make([]T, 0, capHint)
	for i := 0; i < n; i++ {
		var v T
		if err := P(&v).DecodeFrom(r, a); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeUntilExhausted[T any, P DecoderPtr[T]](r *Reader, a Attrs) ([]T, error) {
	out := make([]T, 0)
	for {
		if rem, known := r.Remaining(); known && rem == 0 {
			return out, nil
		}
		start := r.Offset()
		var v T
		if err := P(&v).DecodeFrom(r, a); err != nil {
			if errors.Is(err, ErrInsufficientData) {
				log.Trace().
					Int("elements", len(out)).
					Int64("offset", r.Offset()).
					Msg("codec: unbounded sequence ended")
				return out, nil
			}
			return nil, err
		}
		// Zero-width elements never exhaust the source.
		if r.Offset() == start {
			return out, nil
		}
		out = append(out, v)
	}
}

// requireElements checks up front that n fixed-size elements fit in the
// source so the caller learns the whole shortfall at once.
func requireElements[T any](r *Reader, probe *T, n int) error {
	size, fixed := fixedSizeOf(probe)
	if !fixed || size == 0 || n == 0 {
		return nil
	}
	if n > math.MaxInt/size {
		return insufficient(0)
	}
	return r.Require(n * size)
}

// Seq is a homogeneous sequence whose wire layout follows the Attrs length
// configuration.
type Seq[T any, P Codec[T]] []T

func (s Seq[T, P]) EncodeTo(w *Writer, a Attrs) error {
	return EncodeSeq[T, P](w, s, a)
}

func (s *Seq[T, P]) DecodeFrom(r *Reader, a Attrs) error {
	v, err := DecodeSeq[T, P](r, a)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// EncodeArray writes elems with no length prefix; the count is part of the
// static shape.
func EncodeArray[T any, P EncoderPtr[T]](w *Writer, elems []T, a Attrs) error {
	for i := range elems {
		if err := P(&elems[i]).EncodeTo(w, a); err != nil {
			return err
		}
	}
	return nil
}

// DecodeArray fills dst with exactly len(dst) elements. dst is only written
// once every element has decoded.
func DecodeArray[T any, P DecoderPtr[T]](r *Reader, dst []T, a Attrs) error {
	var probe T
	if err := requireElements(r, &probe, len(dst)); err != nil {
		return err
	}
	tmp := make([]T, len(dst))
	for i := range tmp {
		if err := P(&tmp[i]).DecodeFrom(r, a); err != nil {
			return err
		}
	}
	copy(dst, tmp)
	return nil
}

// EncodeBox encodes the value v points to; the pointer adds no bytes.
func EncodeBox[T any, P EncoderPtr[T]](w *Writer, v *T, a Attrs) error {
	if v == nil {
		return Errorf("nil boxed value")
	}
	return P(v).EncodeTo(w, a)
}

// DecodeBox decodes a T and returns it behind a fresh pointer.
func DecodeBox[T any, P DecoderPtr[T]](r *Reader, a Attrs) (*T, error) {
	v, err := DecodeFrom[T, P](r, a)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
