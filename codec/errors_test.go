package codec

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindNone},
		{insufficient(3), KindInsufficientData},
		{fmt.Errorf("field x: %w", insufficient(0)), KindInsufficientData},
		{&VariantNotMatchedError{Discriminant: 4}, KindVariantNotMatched},
		{overflow(300, U8), KindIntegerOverflow},
		{ErrInvalidUTF8, KindInvalidUTF8},
		{&IOError{Op: "read", Err: errors.New("x")}, KindIO},
		{Errorf("bad %d", 1), KindCustom},
		{errors.New("other"), KindUnknown},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %s want %s", tc.err, got, tc.want)
		}
	}
}

func TestNeededBytesThroughWrap(t *testing.T) {
	err := fmt.Errorf("header: %w", insufficient(7))
	if n, ok := NeededBytes(err); !ok || n != 7 {
		t.Fatalf("got %d %v", n, ok)
	}
	if _, ok := NeededBytes(ErrIntegerOverflow); ok {
		t.Fatalf("overflow is not an insufficient-data error")
	}
}

func TestErrorMessages(t *testing.T) {
	if got := insufficient(2).Error(); got != "codec: insufficient data: need 2 more bytes" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := overflow(256, U8).Error(); got != "codec: integer overflow: 256 does not fit u8" {
		t.Fatalf("unexpected message %q", got)
	}
}
