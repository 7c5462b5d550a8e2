package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/bincodec/codec"
	"github.com/danmuck/bincodec/internal/logging"
	"github.com/danmuck/bincodec/internal/protocol/frame"
)

// DefaultMagic tags frames written by the bincodec CLI.
const DefaultMagic uint32 = 0xB1C0DEC0

// Profile is the codec profile: default attrs for top-level values, the
// frame header and limits, and the log level.
type Profile struct {
	Codec CodecSection
	Frame FrameSection
	Log   LogSection
}

type CodecSection struct {
	Endian       string
	Length       string
	LengthEndian string
}

type FrameSection struct {
	MaxAuthBytes    uint64
	MaxPayloadBytes uint64
	Magic           uint32
	Version         uint16
}

type LogSection struct {
	Level string
}

func DefaultProfile() Profile {
	limits := frame.DefaultLimits()
	return Profile{
		Codec: CodecSection{
			Endian:       codec.Little.String(),
			Length:       codec.NoLen.String(),
			LengthEndian: codec.Little.String(),
		},
		Frame: FrameSection{
			MaxAuthBytes:    limits.MaxAuthBytes,
			MaxPayloadBytes: limits.MaxPayloadBytes,
			Magic:           DefaultMagic,
			Version:         1,
		},
		Log: LogSection{Level: "info"},
	}
}

// profile.toml key mapping.
type fileProfile struct {
	Codec struct {
		Endian       string `toml:"endian"`
		Length       string `toml:"length"`
		LengthEndian string `toml:"length_endian"`
	} `toml:"codec"`
	Frame struct {
		MaxAuthBytes    int64 `toml:"max_auth_bytes"`
		MaxPayloadBytes int64 `toml:"max_payload_bytes"`
		Magic           int64 `toml:"magic"`
		Version         int64 `toml:"version"`
	} `toml:"frame"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

// LoadProfile overlays the keys present in the TOML file at path onto
// DefaultProfile and validates the result.
func LoadProfile(path string) (Profile, error) {
	var raw fileProfile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Profile{}, fmt.Errorf("load profile: %w", err)
	}
	cfg, err := resolve(raw, meta)
	if err != nil {
		return Profile{}, fmt.Errorf("load profile %s: %w", path, err)
	}
	return cfg, nil
}

// ParseProfile is LoadProfile over an in-memory document.
func ParseProfile(doc string) (Profile, error) {
	var raw fileProfile
	meta, err := toml.Decode(doc, &raw)
	if err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	cfg, err := resolve(raw, meta)
	if err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	return cfg, nil
}

func resolve(raw fileProfile, meta toml.MetaData) (Profile, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Profile{}, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	cfg, err := overlay(DefaultProfile(), raw, meta)
	if err != nil {
		return Profile{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Profile{}, err
	}
	return cfg, nil
}

func overlay(cfg Profile, raw fileProfile, meta toml.MetaData) (Profile, error) {
	if meta.IsDefined("codec", "endian") {
		cfg.Codec.Endian = strings.TrimSpace(raw.Codec.Endian)
	}
	if meta.IsDefined("codec", "length") {
		cfg.Codec.Length = strings.TrimSpace(raw.Codec.Length)
	}
	if meta.IsDefined("codec", "length_endian") {
		cfg.Codec.LengthEndian = strings.TrimSpace(raw.Codec.LengthEndian)
	}
	if meta.IsDefined("frame", "max_auth_bytes") {
		if raw.Frame.MaxAuthBytes < 0 {
			return Profile{}, fmt.Errorf("frame.max_auth_bytes must be >= 0")
		}
		cfg.Frame.MaxAuthBytes = uint64(raw.Frame.MaxAuthBytes)
	}
	if meta.IsDefined("frame", "max_payload_bytes") {
		if raw.Frame.MaxPayloadBytes < 0 {
			return Profile{}, fmt.Errorf("frame.max_payload_bytes must be >= 0")
		}
		cfg.Frame.MaxPayloadBytes = uint64(raw.Frame.MaxPayloadBytes)
	}
	if meta.IsDefined("frame", "magic") {
		if raw.Frame.Magic < 0 || raw.Frame.Magic > 0xFFFFFFFF {
			return Profile{}, fmt.Errorf("frame.magic out of u32 range: %d", raw.Frame.Magic)
		}
		cfg.Frame.Magic = uint32(raw.Frame.Magic)
	}
	if meta.IsDefined("frame", "version") {
		if raw.Frame.Version < 0 || raw.Frame.Version > 0xFFFF {
			return Profile{}, fmt.Errorf("frame.version out of u16 range: %d", raw.Frame.Version)
		}
		cfg.Frame.Version = uint16(raw.Frame.Version)
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	return cfg, nil
}

// Validate rejects names the codec or logger does not know.
func (p Profile) Validate() error {
	if _, err := codec.ParseEndian(p.Codec.Endian); err != nil {
		return fmt.Errorf("codec.endian: %w", err)
	}
	if _, err := codec.ParseIntKind(p.Codec.Length); err != nil {
		return fmt.Errorf("codec.length: %w", err)
	}
	if _, err := codec.ParseEndian(p.Codec.LengthEndian); err != nil {
		return fmt.Errorf("codec.length_endian: %w", err)
	}
	if p.Frame.MaxAuthBytes > 0xFFFF {
		return fmt.Errorf("frame.max_auth_bytes exceeds the u16 auth length field: %d", p.Frame.MaxAuthBytes)
	}
	if p.Frame.MaxPayloadBytes > 0xFFFFFFFF {
		return fmt.Errorf("frame.max_payload_bytes exceeds the u32 payload length field: %d", p.Frame.MaxPayloadBytes)
	}
	if _, ok := logging.ParseLevel(p.Log.Level); !ok {
		return fmt.Errorf("log.level: unknown level %q", p.Log.Level)
	}
	return nil
}

// Attrs converts the codec section. Call Validate first; unknown names fall
// back to the defaults.
func (p Profile) Attrs() codec.Attrs {
	endian, _ := codec.ParseEndian(p.Codec.Endian)
	kind, _ := codec.ParseIntKind(p.Codec.Length)
	lenEndian, _ := codec.ParseEndian(p.Codec.LengthEndian)
	if kind == codec.NoLen {
		return codec.Zero().WithEndian(endian)
	}
	return codec.Zero().WithEndian(endian).WithLen(kind, lenEndian)
}

func (p Profile) Limits() frame.Limits {
	return frame.Limits{
		MaxAuthBytes:    p.Frame.MaxAuthBytes,
		MaxPayloadBytes: p.Frame.MaxPayloadBytes,
	}
}

// Header returns a frame header stamped with the profile magic and version.
func (p Profile) Header(messageID uint64, messageType uint32) frame.Header {
	return frame.Header{
		Magic:       p.Frame.Magic,
		Version:     p.Frame.Version,
		MessageID:   messageID,
		MessageType: messageType,
	}
}
