package codec

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientData  = errors.New("codec: insufficient data")
	ErrVariantNotMatched = errors.New("codec: variant not matched")
	ErrIntegerOverflow   = errors.New("codec: integer overflow")
	ErrInvalidUTF8       = errors.New("codec: invalid utf-8")
	ErrIO                = errors.New("codec: io error")
	ErrCustom            = errors.New("codec: custom error")
	ErrDuplicateDefault  = errors.New("codec: more than one default variant")
	ErrInvalidKind       = errors.New("codec: invalid integer kind")
)

// InsufficientDataError reports that a decode needs more input. Needed is the
// number of additional bytes required to finish the current field, or 0 when
// the amount cannot be determined.
type InsufficientDataError struct {
	Needed int
}

func (e *InsufficientDataError) Error() string {
	if e.Needed == 0 {
		return "codec: insufficient data"
	}
	return fmt.Sprintf("codec: insufficient data: need %d more bytes", e.Needed)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// VariantNotMatchedError reports a discriminant with no known variant in a
// union that declares no default variant.
type VariantNotMatchedError struct {
	Discriminant uint64
}

func (e *VariantNotMatchedError) Error() string {
	return fmt.Sprintf("codec: variant not matched: discriminant=%d", e.Discriminant)
}

func (e *VariantNotMatchedError) Is(target error) bool {
	return target == ErrVariantNotMatched
}

// OverflowError reports a length, discriminant or flag bit that does not fit
// its configured integer kind.
type OverflowError struct {
	Value uint64
	Kind  IntKind
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("codec: integer overflow: %d does not fit %s", e.Value, e.Kind)
}

func (e *OverflowError) Is(target error) bool {
	return target == ErrIntegerOverflow
}

// IOError wraps a failure of the underlying reader or writer.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("codec: %s: %v", e.Op, e.Err)
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

func (e *IOError) Unwrap() error {
	return e.Err
}

type customError struct {
	msg string
}

func (e *customError) Error() string {
	return "codec: " + e.msg
}

func (e *customError) Is(target error) bool {
	return target == ErrCustom
}

// Errorf builds a custom codec error for conditions outside the fixed taxonomy.
func Errorf(format string, args ...any) error {
	return &customError{msg: fmt.Sprintf(format, args...)}
}

func insufficient(needed int) error {
	return &InsufficientDataError{Needed: needed}
}

func overflow(v uint64, kind IntKind) error {
	return &OverflowError{Value: v, Kind: kind}
}

// ErrorKind classifies an error into the codec taxonomy.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindInsufficientData
	KindVariantNotMatched
	KindIntegerOverflow
	KindInvalidUTF8
	KindIO
	KindCustom
	KindUnknown
)

var errorKindNames = map[ErrorKind]string{
	KindNone:              "none",
	KindInsufficientData:  "insufficient_data",
	KindVariantNotMatched: "variant_not_matched",
	KindIntegerOverflow:   "integer_overflow",
	KindInvalidUTF8:       "invalid_utf8",
	KindIO:                "io",
	KindCustom:            "custom",
	KindUnknown:           "unknown",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// KindOf returns the taxonomy kind of err. Errors from outside the codec
// report KindUnknown.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, ErrVariantNotMatched):
		return KindVariantNotMatched
	case errors.Is(err, ErrIntegerOverflow):
		return KindIntegerOverflow
	case errors.Is(err, ErrInvalidUTF8):
		return KindInvalidUTF8
	case errors.Is(err, ErrIO):
		return KindIO
	case errors.Is(err, ErrCustom), errors.Is(err, ErrDuplicateDefault), errors.Is(err, ErrInvalidKind):
		return KindCustom
	default:
		return KindUnknown
	}
}

// NeededBytes reports the shortfall carried by an insufficient-data error.
func NeededBytes(err error) (int, bool) {
	var ide *InsufficientDataError
	if errors.As(err, &ide) {
		return ide.Needed, true
	}
	return 0, false
}
