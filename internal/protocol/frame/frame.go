package frame

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/bincodec/codec"
	"github.com/danmuck/bincodec/internal/metrics"
	"github.com/danmuck/bincodec/internal/protocol/tlv"
	"github.com/rs/zerolog/log"
)

// Wire layout, all big-endian:
//
//	magic u32 | version u16 | message_id u64 | message_type u32 | flags u32
//	[auth_len u16 | auth]        present iff flags&FlagHasAuth
//	payload_len u32 | payload    TLV fields
const (
	FixedHeaderLen = 22

	FlagHasAuth    uint32 = 0x01
	FlagIsResponse uint32 = 0x02
	FlagIsError    uint32 = 0x04
)

var (
	ErrShortHeader     = errors.New("frame: short fixed header")
	ErrShortBody       = errors.New("frame: short auth or payload")
	ErrEmptyAuth       = errors.New("frame: auth flag set but auth block is empty")
	ErrPayloadTooLarge = errors.New("frame: payload too large")
	ErrAuthTooLarge    = errors.New("frame: auth too large")
	ErrBadMagic        = errors.New("frame: unexpected magic")
	ErrBadVersion      = errors.New("frame: unsupported version")
)

var (
	be          = codec.Zero().WithEndian(codec.Big)
	authAttrs   = be.WithLen(codec.U16, codec.Big)
	payloadAttr = be.WithLen(codec.U32, codec.Big)
)

// Header is the fixed wire header. Flags bit FlagHasAuth is derived from the
// frame's auth block on write; the caller's value for that bit is ignored.
type Header struct {
	Magic       uint32
	Version     uint16
	MessageID   uint64
	MessageType uint32
	Flags       uint32
}

// Check rejects a header whose magic or version differs from the expected
// values. Zero expectations are not checked.
func (h Header) Check(magic uint32, version uint16) error {
	if magic != 0 && h.Magic != magic {
		return fmt.Errorf("%w: got %#08x want %#08x", ErrBadMagic, h.Magic, magic)
	}
	if version != 0 && h.Version != version {
		return fmt.Errorf("%w: got %d want %d", ErrBadVersion, h.Version, version)
	}
	return nil
}

func (h Header) EncodeTo(w *codec.Writer, _ codec.Attrs) error {
	if err := w.PutU32(h.Magic, codec.Big); err != nil {
		return err
	}
	if err := w.PutU16(h.Version, codec.Big); err != nil {
		return err
	}
	if err := w.PutU64(h.MessageID, codec.Big); err != nil {
		return err
	}
	if err := w.PutU32(h.MessageType, codec.Big); err != nil {
		return err
	}
	return codec.EncodeFlags(w, codec.Flags(h.Flags), codec.U32, be)
}

func (h *Header) DecodeFrom(r *codec.Reader, _ codec.Attrs) error {
	if err := r.Require(FixedHeaderLen); err != nil {
		return err
	}
	var out Header
	var err error
	if out.Magic, err = r.GetU32(codec.Big); err != nil {
		return err
	}
	if out.Version, err = r.GetU16(codec.Big); err != nil {
		return err
	}
	if out.MessageID, err = r.GetU64(codec.Big); err != nil {
		return err
	}
	if out.MessageType, err = r.GetU32(codec.Big); err != nil {
		return err
	}
	flags, err := codec.DecodeFlags(r, codec.U32, be)
	if err != nil {
		return err
	}
	out.Flags = uint32(flags)
	*h = out
	return nil
}

// Frame is one complete wire message.
type Frame struct {
	Header  Header
	Auth    []byte
	Payload []byte
}

// New builds a frame whose payload is the encoding of fields.
func New(h Header, auth []byte, fields []tlv.Field) (Frame, error) {
	payload, err := tlv.EncodeFields(fields)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Header: h, Auth: auth, Payload: payload}, nil
}

// Fields decodes the payload as TLV fields.
func (f Frame) Fields() ([]tlv.Field, error) {
	return tlv.DecodeFields(f.Payload)
}

func (f Frame) EncodeTo(w *codec.Writer, _ codec.Attrs) error {
	h := f.Header
	flags := codec.Flags(h.Flags)
	flags.Mark(uint64(FlagHasAuth), len(f.Auth) > 0)
	h.Flags = uint32(flags)
	if err := h.EncodeTo(w, be); err != nil {
		return err
	}
	var auth *codec.Bytes
	if len(f.Auth) > 0 {
		a := codec.Bytes(f.Auth)
		auth = &a
	}
	if err := codec.EncodeOptional(w, flags, uint64(FlagHasAuth), auth, authAttrs); err != nil {
		return err
	}
	return codec.EncodeBytes(w, f.Payload, payloadAttr)
}

// DecodeFrom decodes a frame under DefaultLimits.
func (f *Frame) DecodeFrom(r *codec.Reader, _ codec.Attrs) error {
	out, err := decodeFrame(r, DefaultLimits())
	if err != nil {
		return err
	}
	*f = out
	return nil
}

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxAuthBytes    uint64
	MaxPayloadBytes uint64
}

func DefaultLimits() Limits {
	return Limits{
		MaxAuthBytes:    64 * 1024,
		MaxPayloadBytes: 8 * 1024 * 1024,
	}
}

func (l Limits) check(authLen, payloadLen uint64) error {
	if authLen > l.MaxAuthBytes {
		return fmt.Errorf("%w: %d > %d", ErrAuthTooLarge, authLen, l.MaxAuthBytes)
	}
	if payloadLen > l.MaxPayloadBytes {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, payloadLen, l.MaxPayloadBytes)
	}
	return nil
}

func decodeFrame(r *codec.Reader, limits Limits) (Frame, error) {
	var h Header
	if err := h.DecodeFrom(r, be); err != nil {
		if errors.Is(err, codec.ErrInsufficientData) {
			return Frame{}, fmt.Errorf("%w: %w", ErrShortHeader, err)
		}
		return Frame{}, err
	}
	out := Frame{Header: h}
	if codec.Flags(h.Flags).Has(uint64(FlagHasAuth)) {
		authLen, _, err := authAttrs.DecodeLength(r)
		if err != nil {
			return Frame{}, shortBody(err)
		}
		if authLen == 0 {
			return Frame{}, ErrEmptyAuth
		}
		if err := limits.check(uint64(authLen), 0); err != nil {
			return Frame{}, err
		}
		if out.Auth, err = r.ReadBytes(authLen); err != nil {
			return Frame{}, shortBody(err)
		}
	}
	n, _, err := payloadAttr.DecodeLength(r)
	if err != nil {
		return Frame{}, shortBody(err)
	}
	if err := limits.check(uint64(len(out.Auth)), uint64(n)); err != nil {
		return Frame{}, err
	}
	if out.Payload, err = r.ReadBytes(n); err != nil {
		return Frame{}, shortBody(err)
	}
	return out, nil
}

func shortBody(err error) error {
	if errors.Is(err, codec.ErrInsufficientData) {
		return fmt.Errorf("%w: %w", ErrShortBody, err)
	}
	return err
}

// Reader decodes a sequence of frames from one byte stream. It buffers ahead
// of the current frame, so the underlying reader must not be shared.
type Reader struct {
	src    *codec.Reader
	limits Limits
}

func NewReader(r io.Reader, limits Limits) *Reader {
	return &Reader{src: codec.NewStreamReader(r), limits: limits}
}

// Next returns the next frame, or io.EOF when the stream ends cleanly on a
// frame boundary.
func (fr *Reader) Next() (Frame, error) {
	if err := fr.src.Require(1); err != nil {
		if errors.Is(err, codec.ErrInsufficientData) {
			return Frame{}, io.EOF
		}
		metrics.RecordError(metrics.DirectionRead, err)
		return Frame{}, err
	}
	start := fr.src.Offset()
	f, err := decodeFrame(fr.src, fr.limits)
	if err != nil {
		log.Warn().Err(err).Int64("offset", start).Msg("frame: read rejected")
		metrics.RecordError(metrics.DirectionRead, err)
		return Frame{}, err
	}
	metrics.RecordFrame(metrics.DirectionRead, int(fr.src.Offset()-start), len(f.Payload))
	log.Trace().
		Uint64("message_id", f.Header.MessageID).
		Uint32("message_type", f.Header.MessageType).
		Int("payload_bytes", len(f.Payload)).
		Msg("frame: read")
	return f, nil
}

// ReadFrame reads a single frame. It may consume bytes past the end of the
// frame; use Reader for a stream of frames.
func ReadFrame(r io.Reader, limits Limits) (Frame, error) {
	f, err := NewReader(r, limits).Next()
	if errors.Is(err, io.EOF) {
		return Frame{}, fmt.Errorf("%w: %w", ErrShortHeader, io.ErrUnexpectedEOF)
	}
	return f, err
}

func WriteFrame(w io.Writer, f Frame, limits Limits) error {
	if err := limits.check(uint64(len(f.Auth)), uint64(len(f.Payload))); err != nil {
		log.Warn().Err(err).Uint64("message_id", f.Header.MessageID).Msg("frame: write rejected")
		metrics.RecordError(metrics.DirectionWrite, err)
		return err
	}
	cw := codec.NewWriter(w)
	if err := f.EncodeTo(cw, be); err != nil {
		metrics.RecordError(metrics.DirectionWrite, err)
		return err
	}
	metrics.RecordFrame(metrics.DirectionWrite, int(cw.Written()), len(f.Payload))
	return nil
}
