package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

const streamBufferSize = 4096

func byteOrder(e Endian) binary.ByteOrder {
	if e == Big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Reader is the byte source every decoder reads from. It is backed either by
// an in-memory slice, where the remaining length is known, or by an
// io.Reader. Fixed-width reads are atomic: a read that fails Require
// consumes nothing.
type Reader struct {
	data    []byte
	off     int
	stream  *bufio.Reader
	read    int64
	scratch [8]byte
}

// NewReader returns a Reader over b. The slice is not copied.
func NewReader(b []byte) *Reader {
	return &Reader{data: b}
}

// NewStreamReader returns a Reader that pulls from r through a buffer.
func NewStreamReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok || br.Size() < streamBufferSize {
		br = bufio.NewReaderSize(r, streamBufferSize)
	}
	return &Reader{stream: br}
}

// Remaining reports the unread byte count when it is known up front. Stream
// readers report (0, false).
func (r *Reader) Remaining() (int, bool) {
	if r.stream != nil {
		return 0, false
	}
	return len(r.data) - r.off, true
}

// Offset is the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.read
}

// Require checks that n more bytes are available without consuming them.
// A shortfall is reported as an *InsufficientDataError naming the missing
// byte count. Stream readers cannot look further ahead than their buffer;
// larger requests are not checked here and fail on the read itself, after
// consuming whatever the stream had.
func (r *Reader) Require(n int) error {
	if n <= 0 {
		return nil
	}
	if r.stream == nil {
		if rem := len(r.data) - r.off; rem < n {
			return insufficient(n - rem)
		}
		return nil
	}
	if n > r.stream.Size() {
		return nil
	}
	peeked, err := r.stream.Peek(n)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return insufficient(n - len(peeked))
	}
	return &IOError{Op: "read", Err: err}
}

// ReadFull fills p completely.
func (r *Reader) ReadFull(p []byte) error {
	if err := r.Require(len(p)); err != nil {
		return err
	}
	if r.stream == nil {
		r.off += copy(p, r.data[r.off:])
		r.read += int64(len(p))
		return nil
	}
	n, err := io.ReadFull(r.stream, p)
	r.read += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return insufficient(len(p) - n)
		}
		return &IOError{Op: "read", Err: err}
	}
	return nil
}

// ReadBytes reads exactly n bytes into a fresh slice. On a stream reader a
// request larger than the buffer grows the result as bytes arrive, so a
// bogus length runs out of input instead of allocating n up front.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, Errorf("negative read length %d", n)
	}
	if r.stream != nil && n > r.stream.Size() {
		return r.readLarge(n)
	}
	if err := r.Require(n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := r.ReadFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readLarge copies n bytes from the stream in buffer-sized chunks. Bytes
// read before a shortfall stay consumed.
func (r *Reader) readLarge(n int) ([]byte, error) {
	var buf bytes.Buffer
	copied, err := io.CopyN(&buf, r.stream, int64(n))
	r.read += copied
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, insufficient(int(int64(n) - copied))
		}
		return nil, &IOError{Op: "read", Err: err}
	}
	return buf.Bytes(), nil
}

// ReadRest consumes everything left in the source.
func (r *Reader) ReadRest() ([]byte, error) {
	if r.stream == nil {
		rest := make([]byte, len(r.data)-r.off)
		copy(rest, r.data[r.off:])
		r.off = len(r.data)
		r.read += int64(len(rest))
		return rest, nil
	}
	rest, err := io.ReadAll(r.stream)
	r.read += int64(len(rest))
	if err != nil {
		return nil, &IOError{Op: "read", Err: err}
	}
	return rest, nil
}

// Sub reads exactly n bytes and returns an isolated Reader over them.
func (r *Reader) Sub(n int) (*Reader, error) {
	b, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return NewReader(b), nil
}

func (r *Reader) fixed(n int) ([]byte, error) {
	buf := r.scratch[:n]
	if err := r.ReadFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (r *Reader) GetU8() (uint8, error) {
	b, err := r.fixed(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) GetI8() (int8, error) {
	v, err := r.GetU8()
	return int8(v), err
}

func (r *Reader) GetU16(e Endian) (uint16, error) {
	b, err := r.fixed(2)
	if err != nil {
		return 0, err
	}
	return byteOrder(e).Uint16(b), nil
}

func (r *Reader) GetI16(e Endian) (int16, error) {
	v, err := r.GetU16(e)
	return int16(v), err
}

func (r *Reader) GetU32(e Endian) (uint32, error) {
	b, err := r.fixed(4)
	if err != nil {
		return 0, err
	}
	return byteOrder(e).Uint32(b), nil
}

func (r *Reader) GetI32(e Endian) (int32, error) {
	v, err := r.GetU32(e)
	return int32(v), err
}

func (r *Reader) GetU64(e Endian) (uint64, error) {
	b, err := r.fixed(8)
	if err != nil {
		return 0, err
	}
	return byteOrder(e).Uint64(b), nil
}

func (r *Reader) GetI64(e Endian) (int64, error) {
	v, err := r.GetU64(e)
	return int64(v), err
}

func (r *Reader) GetF32(e Endian) (float32, error) {
	v, err := r.GetU32(e)
	return math.Float32frombits(v), err
}

func (r *Reader) GetF64(e Endian) (float64, error) {
	v, err := r.GetU64(e)
	return math.Float64frombits(v), err
}

// getKind reads an integer of the given kind. Signed values are sign
// extended into the returned bit pattern.
func (r *Reader) getKind(kind IntKind, e Endian) (uint64, error) {
	switch kind {
	case U8:
		v, err := r.GetU8()
		return uint64(v), err
	case U16:
		v, err := r.GetU16(e)
		return uint64(v), err
	case U32:
		v, err := r.GetU32(e)
		return uint64(v), err
	case U64:
		return r.GetU64(e)
	case I8:
		v, err := r.GetI8()
		return uint64(int64(v)), err
	case I16:
		v, err := r.GetI16(e)
		return uint64(int64(v)), err
	case I32:
		v, err := r.GetI32(e)
		return uint64(int64(v)), err
	case I64:
		v, err := r.GetI64(e)
		return uint64(v), err
	default:
		return 0, ErrInvalidKind
	}
}

// Writer is the byte sink every encoder writes to.
type Writer struct {
	w       io.Writer
	written int64
	scratch [8]byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Written is the number of bytes accepted by the underlying writer.
func (w *Writer) Written() int64 {
	return w.written
}

// Write forwards p to the underlying writer.
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := w.w.Write(p)
	w.written += int64(n)
	if err != nil {
		return n, &IOError{Op: "write", Err: err}
	}
	if n != len(p) {
		return n, &IOError{Op: "write", Err: io.ErrShortWrite}
	}
	return n, nil
}

func (w *Writer) put(b []byte) error {
	_, err := w.Write(b)
	return err
}

func (w *Writer) PutU8(v uint8) error {
	w.scratch[0] = v
	return w.put(w.scratch[:1])
}

func (w *Writer) PutI8(v int8) error {
	return w.PutU8(uint8(v))
}

func (w *Writer) PutU16(v uint16, e Endian) error {
	byteOrder(e).PutUint16(w.scratch[:2], v)
	return w.put(w.scratch[:2])
}

func (w *Writer) PutI16(v int16, e Endian) error {
	return w.PutU16(uint16(v), e)
}

func (w *Writer) PutU32(v uint32, e Endian) error {
	byteOrder(e).PutUint32(w.scratch[:4], v)
	return w.put(w.scratch[:4])
}

func (w *Writer) PutI32(v int32, e Endian) error {
	return w.PutU32(uint32(v), e)
}

func (w *Writer) PutU64(v uint64, e Endian) error {
	byteOrder(e).PutUint64(w.scratch[:8], v)
	return w.put(w.scratch[:8])
}

func (w *Writer) PutI64(v int64, e Endian) error {
	return w.PutU64(uint64(v), e)
}

func (w *Writer) PutF32(v float32, e Endian) error {
	return w.PutU32(math.Float32bits(v), e)
}

func (w *Writer) PutF64(v float64, e Endian) error {
	return w.PutU64(math.Float64bits(v), e)
}

// putKind writes the low bits of v as an integer of the given kind. Range
// checks are the caller's job.
func (w *Writer) putKind(kind IntKind, e Endian, v uint64) error {
	switch kind {
	case U8, I8:
		return w.PutU8(uint8(v))
	case U16, I16:
		return w.PutU16(uint16(v), e)
	case U32, I32:
		return w.PutU32(uint32(v), e)
	case U64, I64:
		return w.PutU64(v, e)
	default:
		return ErrInvalidKind
	}
}
