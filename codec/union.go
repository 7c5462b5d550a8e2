package codec

import (
	"bytes"
	"fmt"

	"github.com/rs/zerolog/log"
)

// UnionConfig is the union-level wire policy. It is independent of the
// field-level Attrs passed to payload codecs.
type UnionConfig struct {
	Tag       IntKind
	TagEndian Endian

	// Nest wraps each payload in its own length prefix when set, so a
	// decoder can skip a payload whose shape it does not understand.
	Nest       IntKind
	NestEndian Endian
}

func (c UnionConfig) nestAttrs() Attrs {
	return Attrs{Len: c.Nest, LenEndian: c.NestEndian}
}

// Variant declares one arm of a union.
type Variant struct {
	Name     string
	Explicit bool
	Value    uint64
	Default  bool
}

// Arm declares a variant whose discriminant follows the previous one.
func Arm(name string) Variant {
	return Variant{Name: name}
}

// ArmAt declares a variant with an explicit discriminant; implicit
// discriminants after it continue from d+1.
func ArmAt(name string, d uint64) Variant {
	return Variant{Name: name, Explicit: true, Value: d}
}

// DefaultArm declares the fallback that captures unknown discriminants. It
// does not take a discriminant of its own.
func DefaultArm(name string) Variant {
	return Variant{Name: name, Default: true}
}

// Unknown is the payload of the default arm: the discriminant that was seen
// and the raw bytes that followed it.
type Unknown struct {
	Discriminant uint64
	Raw          []byte
}

// Union maps discriminants to variant indexes and drives the tag, framing
// and fallback steps of encoding and decoding. A Union is immutable once
// built and safe for concurrent use.
type Union struct {
	cfg      UnionConfig
	names    []string
	discs    []uint64
	fallback int
}

// NewUnion resolves discriminants in declaration order. Implicit
// discriminants start at 0 and continue from the last explicit value plus
// one. Declaring a second default arm, or a discriminant that does not fit
// the tag kind, is an error.
func NewUnion(cfg UnionConfig, variants ...Variant) (*Union, error) {
	if !cfg.Tag.valid() {
		return nil, fmt.Errorf("%w: tag kind %s", ErrInvalidKind, cfg.Tag)
	}
	if cfg.Nest != NoLen && !cfg.Nest.valid() {
		return nil, fmt.Errorf("%w: nest kind %s", ErrInvalidKind, cfg.Nest)
	}
	u := &Union{
		cfg:      cfg,
		names:    make([]string, len(variants)),
		discs:    make([]uint64, len(variants)),
		fallback: -1,
	}
	var next uint64
	for i, v := range variants {
		u.names[i] = v.Name
		if v.Default {
			if u.fallback >= 0 {
				return nil, fmt.Errorf("%w: %q and %q", ErrDuplicateDefault, u.names[u.fallback], v.Name)
			}
			u.fallback = i
			continue
		}
		d := next
		if v.Explicit {
			d = v.Value
		}
		if !cfg.Tag.fitsTag(d) {
			return nil, fmt.Errorf("variant %q: %w", v.Name, overflow(d, cfg.Tag))
		}
		u.discs[i] = d
		next = d + 1
	}
	return u, nil
}

// MustUnion is NewUnion for package-level declarations.
func MustUnion(cfg UnionConfig, variants ...Variant) *Union {
	u, err := NewUnion(cfg, variants...)
	if err != nil {
		panic(err)
	}
	return u
}

func (u *Union) Config() UnionConfig {
	return u.cfg
}

// Len is the number of declared variants including the default arm.
func (u *Union) Len() int {
	return len(u.names)
}

func (u *Union) Name(index int) string {
	if index < 0 || index >= len(u.names) {
		return ""
	}
	return u.names[index]
}

// Index returns the index of the named variant or -1.
func (u *Union) Index(name string) int {
	for i, n := range u.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Discriminant returns the resolved discriminant of a known variant.
func (u *Union) Discriminant(index int) (uint64, bool) {
	if index < 0 || index >= len(u.discs) || index == u.fallback {
		return 0, false
	}
	return u.discs[index], true
}

// DefaultIndex returns the index of the default arm, if one is declared.
func (u *Union) DefaultIndex() (int, bool) {
	return u.fallback, u.fallback >= 0
}

// Match returns the first variant declared with discriminant d, or -1.
func (u *Union) Match(d uint64) int {
	for i, disc := range u.discs {
		if i != u.fallback && disc == d {
			return i
		}
	}
	return -1
}

func (u *Union) writeTag(w *Writer, d uint64) error {
	if !u.cfg.Tag.fitsTag(d) {
		return overflow(d, u.cfg.Tag)
	}
	return w.putKind(u.cfg.Tag, u.cfg.TagEndian, d)
}

// EncodeVariant writes the discriminant of the variant at index followed by
// the bytes payload produces, framed when the union nests payloads.
func (u *Union) EncodeVariant(w *Writer, index int, payload func(w *Writer) error) error {
	d, ok := u.Discriminant(index)
	if !ok {
		return Errorf("union has no encodable variant at index %d", index)
	}
	if u.cfg.Nest == NoLen {
		if err := u.writeTag(w, d); err != nil {
			return err
		}
		return payload(w)
	}
	var buf bytes.Buffer
	if err := payload(NewWriter(&buf)); err != nil {
		return err
	}
	if uint64(buf.Len()) > u.cfg.Nest.maxUnsigned() {
		return overflow(uint64(buf.Len()), u.cfg.Nest)
	}
	if err := u.writeTag(w, d); err != nil {
		return err
	}
	return EncodeBytes(w, buf.Bytes(), u.cfg.nestAttrs())
}

// EncodeUnknown writes a captured default-arm value verbatim: the stored
// discriminant, then the stored bytes. When the union nests payloads the
// bytes are framed the same way as a known payload.
func (u *Union) EncodeUnknown(w *Writer, unk Unknown) error {
	if u.fallback < 0 {
		return Errorf("union has no default variant")
	}
	if err := u.writeTag(w, unk.Discriminant); err != nil {
		return err
	}
	if u.cfg.Nest == NoLen {
		_, err := w.Write(unk.Raw)
		return err
	}
	return EncodeBytes(w, unk.Raw, u.cfg.nestAttrs())
}

// Decode reads a discriminant and dispatches on it. For a known variant,
// payload is called with its index and a reader positioned at its bytes;
// a nested payload gets an isolated reader over exactly its framed bytes.
// For an unknown discriminant the default arm index is returned together
// with the captured bytes and payload is not called. Without a default arm
// an unknown discriminant is a *VariantNotMatchedError.
func (u *Union) Decode(r *Reader, payload func(index int, r *Reader) error) (int, Unknown, error) {
	d, err := r.getKind(u.cfg.Tag, u.cfg.TagEndian)
	if err != nil {
		return -1, Unknown{}, err
	}
	index := u.Match(d)
	if index < 0 {
		if u.fallback < 0 {
			log.Debug().Uint64("discriminant", d).Msg("codec: union variant not matched")
			return -1, Unknown{}, &VariantNotMatchedError{Discriminant: d}
		}
		raw, err := u.captureRaw(r)
		if err != nil {
			return -1, Unknown{}, err
		}
		log.Debug().
			Uint64("discriminant", d).
			Int("raw_bytes", len(raw)).
			Str("variant", u.names[u.fallback]).
			Msg("codec: union default variant")
		return u.fallback, Unknown{Discriminant: d, Raw: raw}, nil
	}
	if u.cfg.Nest == NoLen {
		if err := payload(index, r); err != nil {
			return -1, Unknown{}, err
		}
		return index, Unknown{}, nil
	}
	n, _, err := u.cfg.nestAttrs().DecodeLength(r)
	if err != nil {
		return -1, Unknown{}, err
	}
	sub, err := r.Sub(n)
	if err != nil {
		return -1, Unknown{}, err
	}
	if err := payload(index, sub); err != nil {
		return -1, Unknown{}, err
	}
	return index, Unknown{}, nil
}

func (u *Union) captureRaw(r *Reader) ([]byte, error) {
	if u.cfg.Nest == NoLen {
		return r.ReadRest()
	}
	return DecodeBytes(r, u.cfg.nestAttrs())
}
