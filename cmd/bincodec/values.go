package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/bincodec/codec"
	"github.com/danmuck/bincodec/internal/config"
	"github.com/rs/zerolog/log"
)

// values.toml key mapping.
type valuesFile struct {
	Value []valueEntry `toml:"value"`
}

type valueEntry struct {
	Type  string `toml:"type"`
	Value any    `toml:"value"`
}

func loadValues(path string) ([]valueEntry, error) {
	var raw valuesFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load values: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load values: unknown key %q", undecoded[0].String())
	}
	for i := range raw.Value {
		raw.Value[i].Type = strings.ToLower(strings.TrimSpace(raw.Value[i].Type))
	}
	return raw.Value, nil
}

func intIn(v any, lo, hi int64) (int64, error) {
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}

func floatOf(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func stringOf(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %T", v)
	}
	return s, nil
}

func encodeValue(w *codec.Writer, e valueEntry, a codec.Attrs) error {
	switch e.Type {
	case "bool":
		b, ok := e.Value.(bool)
		if !ok {
			return fmt.Errorf("expected a bool, got %T", e.Value)
		}
		return codec.EncodeBool(w, b, a)
	case "u8":
		n, err := intIn(e.Value, 0, math.MaxUint8)
		if err != nil {
			return err
		}
		return codec.EncodeUint8(w, uint8(n), a)
	case "u16":
		n, err := intIn(e.Value, 0, math.MaxUint16)
		if err != nil {
			return err
		}
		return codec.EncodeUint16(w, uint16(n), a)
	case "u32":
		n, err := intIn(e.Value, 0, math.MaxUint32)
		if err != nil {
			return err
		}
		return codec.EncodeUint32(w, uint32(n), a)
	case "u64":
		n, err := intIn(e.Value, 0, math.MaxInt64)
		if err != nil {
			return err
		}
		return codec.EncodeUint64(w, uint64(n), a)
	case "i8":
		n, err := intIn(e.Value, math.MinInt8, math.MaxInt8)
		if err != nil {
			return err
		}
		return codec.EncodeInt8(w, int8(n), a)
	case "i16":
		n, err := intIn(e.Value, math.MinInt16, math.MaxInt16)
		if err != nil {
			return err
		}
		return codec.EncodeInt16(w, int16(n), a)
	case "i32":
		n, err := intIn(e.Value, math.MinInt32, math.MaxInt32)
		if err != nil {
			return err
		}
		return codec.EncodeInt32(w, int32(n), a)
	case "i64":
		n, err := intIn(e.Value, math.MinInt64, math.MaxInt64)
		if err != nil {
			return err
		}
		return codec.EncodeInt64(w, n, a)
	case "f32":
		f, err := floatOf(e.Value)
		if err != nil {
			return err
		}
		return codec.EncodeFloat32(w, float32(f), a)
	case "f64":
		f, err := floatOf(e.Value)
		if err != nil {
			return err
		}
		return codec.EncodeFloat64(w, f, a)
	case "cstring":
		s, err := stringOf(e.Value)
		if err != nil {
			return err
		}
		return codec.EncodeCString(w, s, a)
	case "string":
		s, err := stringOf(e.Value)
		if err != nil {
			return err
		}
		return codec.EncodeBytes(w, []byte(s), a)
	case "bytes":
		s, err := stringOf(e.Value)
		if err != nil {
			return err
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return err
		}
		return codec.EncodeBytes(w, b, a)
	default:
		return fmt.Errorf("unknown value type %q", e.Type)
	}
}

func decodeValue(r *codec.Reader, typ string, a codec.Attrs) (any, error) {
	switch typ {
	case "bool":
		return codec.DecodeBool(r, a)
	case "u8":
		return codec.DecodeUint8(r, a)
	case "u16":
		return codec.DecodeUint16(r, a)
	case "u32":
		return codec.DecodeUint32(r, a)
	case "u64":
		return codec.DecodeUint64(r, a)
	case "i8":
		return codec.DecodeInt8(r, a)
	case "i16":
		return codec.DecodeInt16(r, a)
	case "i32":
		return codec.DecodeInt32(r, a)
	case "i64":
		return codec.DecodeInt64(r, a)
	case "f32":
		return codec.DecodeFloat32(r, a)
	case "f64":
		return codec.DecodeFloat64(r, a)
	case "cstring":
		return codec.DecodeCString(r, a)
	case "string":
		b, err := codec.DecodeBytes(r, a)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, codec.ErrInvalidUTF8
		}
		return string(b), nil
	case "bytes":
		b, err := codec.DecodeBytes(r, a)
		if err != nil {
			return nil, err
		}
		return hex.EncodeToString(b), nil
	default:
		return nil, fmt.Errorf("unknown value type %q", typ)
	}
}

func packBytes(profile config.Profile, values []valueEntry) ([]byte, error) {
	a := profile.Attrs()
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	for i, v := range values {
		if err := encodeValue(w, v, a); err != nil {
			return nil, fmt.Errorf("value[%d] %s: %w", i, v.Type, err)
		}
	}
	log.Debug().Int("values", len(values)).Int64("bytes", w.Written()).Str("attrs", a.String()).Msg("packed")
	return buf.Bytes(), nil
}

func packValues(profile config.Profile, path string, w io.Writer, asHex bool) error {
	values, err := loadValues(path)
	if err != nil {
		return err
	}
	b, err := packBytes(profile, values)
	if err != nil {
		return err
	}
	if asHex {
		_, err = fmt.Fprintln(w, hex.EncodeToString(b))
		return err
	}
	_, err = w.Write(b)
	return err
}

type unpacked struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

func unpackBytes(profile config.Profile, values []valueEntry, data []byte) ([]unpacked, error) {
	a := profile.Attrs()
	r := codec.NewReader(data)
	out := make([]unpacked, 0, len(values))
	for i, v := range values {
		got, err := decodeValue(r, v.Type, a)
		if err != nil {
			return nil, fmt.Errorf("value[%d] %s at offset %d: %w", i, v.Type, r.Offset(), err)
		}
		out = append(out, unpacked{Type: v.Type, Value: got})
	}
	if rem, _ := r.Remaining(); rem > 0 {
		return nil, fmt.Errorf("%d trailing bytes after %d values", rem, len(values))
	}
	return out, nil
}

func unpackValues(profile config.Profile, path string, r io.Reader, w io.Writer, asHex bool) error {
	values, err := loadValues(path)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if asHex {
		if data, err = hex.DecodeString(strings.TrimSpace(string(data))); err != nil {
			return err
		}
	}
	out, err := unpackBytes(profile, values, data)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
