package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/bincodec/internal/config"
	"github.com/danmuck/bincodec/internal/protocol/frame"
	"github.com/danmuck/bincodec/internal/protocol/schema"
	"github.com/danmuck/bincodec/internal/protocol/tlv"
)

// messages.toml key mapping.
type messagesFile struct {
	Message []messageEntry `toml:"message"`
}

type messageEntry struct {
	Type  string       `toml:"type"`
	ID    int64        `toml:"id"`
	Auth  string       `toml:"auth"`
	Flags []string     `toml:"flags"`
	Field []fieldEntry `toml:"field"`
}

type fieldEntry struct {
	ID     int64  `toml:"id"`
	Type   string `toml:"type"`
	TypeID int64  `toml:"type_id"`
	Value  any    `toml:"value"`
}

func loadMessages(profile config.Profile, path string) ([]frame.Frame, error) {
	var raw messagesFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load messages: unknown key %q", undecoded[0].String())
	}
	frames := make([]frame.Frame, 0, len(raw.Message))
	for i, m := range raw.Message {
		f, err := buildFrame(profile, m)
		if err != nil {
			return nil, fmt.Errorf("message[%d]: %w", i, err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func buildFrame(profile config.Profile, m messageEntry) (frame.Frame, error) {
	msgType, err := schema.ParseMessageType(strings.TrimSpace(m.Type))
	if err != nil {
		return frame.Frame{}, err
	}
	if m.ID < 0 {
		return frame.Frame{}, fmt.Errorf("id must be >= 0: %d", m.ID)
	}
	h := profile.Header(uint64(m.ID), msgType)
	for _, name := range m.Flags {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "response":
			h.Flags |= frame.FlagIsResponse
		case "error":
			h.Flags |= frame.FlagIsError
		default:
			return frame.Frame{}, fmt.Errorf("unknown flag %q", name)
		}
	}
	fields := make([]tlv.Field, 0, len(m.Field))
	for j, fe := range m.Field {
		f, err := buildField(fe)
		if err != nil {
			return frame.Frame{}, fmt.Errorf("field[%d]: %w", j, err)
		}
		fields = append(fields, f)
	}
	var auth []byte
	if m.Auth != "" {
		auth = []byte(m.Auth)
	}
	return frame.New(h, auth, fields)
}

func parseTLVType(name string) (uint8, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t := tlv.TypeU8; t <= tlv.TypeBytes; t++ {
		if tlv.TypeName(t) == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown field type %q", name)
}

func buildField(fe fieldEntry) (tlv.Field, error) {
	if fe.ID < 0 || fe.ID > math.MaxUint16 {
		return tlv.Field{}, fmt.Errorf("id out of u16 range: %d", fe.ID)
	}
	id := uint16(fe.ID)

	// type_id carries a raw type for fields outside the known set; the
	// value is then hex.
	if fe.Type == "" {
		if fe.TypeID <= 0 || fe.TypeID > math.MaxUint8 {
			return tlv.Field{}, fmt.Errorf("type or type_id is required")
		}
		s, ok := fe.Value.(string)
		if !ok {
			return tlv.Field{}, fmt.Errorf("type_id fields take a hex string value")
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return tlv.Field{}, err
		}
		return tlv.Field{ID: id, Type: uint8(fe.TypeID), Value: b}, nil
	}

	t, err := parseTLVType(fe.Type)
	if err != nil {
		return tlv.Field{}, err
	}
	switch t {
	case tlv.TypeString:
		s, ok := fe.Value.(string)
		if !ok {
			return tlv.Field{}, fmt.Errorf("string field takes a string value, got %T", fe.Value)
		}
		return tlv.String(id, s), nil
	case tlv.TypeBytes:
		s, ok := fe.Value.(string)
		if !ok {
			return tlv.Field{}, fmt.Errorf("bytes field takes a hex string value, got %T", fe.Value)
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return tlv.Field{}, err
		}
		return tlv.Bytes(id, b), nil
	case tlv.TypeBool:
		v, ok := fe.Value.(bool)
		if !ok {
			return tlv.Field{}, fmt.Errorf("bool field takes a bool value, got %T", fe.Value)
		}
		return tlv.Bool(id, v), nil
	}

	n, ok := fe.Value.(int64)
	if !ok || n < 0 {
		return tlv.Field{}, fmt.Errorf("%s field takes a non-negative integer, got %v", tlv.TypeName(t), fe.Value)
	}
	switch t {
	case tlv.TypeU8:
		if n > math.MaxUint8 {
			return tlv.Field{}, fmt.Errorf("value %d overflows u8", n)
		}
		return tlv.U8(id, uint8(n)), nil
	case tlv.TypeU16:
		if n > math.MaxUint16 {
			return tlv.Field{}, fmt.Errorf("value %d overflows u16", n)
		}
		return tlv.U16(id, uint16(n)), nil
	case tlv.TypeU32:
		if n > math.MaxUint32 {
			return tlv.Field{}, fmt.Errorf("value %d overflows u32", n)
		}
		return tlv.U32(id, uint32(n)), nil
	default:
		return tlv.U64(id, uint64(n)), nil
	}
}

func encodeMessages(profile config.Profile, path string, w io.Writer, validate bool) (int, error) {
	frames, err := loadMessages(profile, path)
	if err != nil {
		return 0, err
	}
	limits := profile.Limits()
	for i, f := range frames {
		if validate {
			fields, err := f.Fields()
			if err != nil {
				return i, err
			}
			if err := schema.Validate(f.Header.MessageType, fields); err != nil {
				return i, fmt.Errorf("message[%d]: %w", i, err)
			}
		}
		if err := frame.WriteFrame(w, f, limits); err != nil {
			return i, fmt.Errorf("message[%d]: %w", i, err)
		}
	}
	return len(frames), nil
}
