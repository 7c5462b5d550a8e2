package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/bincodec/internal/auth"
	"github.com/danmuck/bincodec/internal/config"
	"github.com/danmuck/bincodec/internal/protocol/frame"
	"github.com/danmuck/bincodec/internal/protocol/schema"
	"github.com/danmuck/bincodec/internal/protocol/tlv"
	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"
)

// cborMode writes Core Deterministic Encoding so the same frames always
// produce the same bytes.
var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("bincodec: CBOR encoder initialization failed: " + err.Error())
	}
}

type frameView struct {
	MessageID   uint64      `json:"message_id" cbor:"message_id"`
	MessageType uint32      `json:"message_type" cbor:"message_type"`
	TypeName    string      `json:"type,omitempty" cbor:"type,omitempty"`
	Magic       uint32      `json:"magic" cbor:"magic"`
	Version     uint16      `json:"version" cbor:"version"`
	Flags       uint32      `json:"flags" cbor:"flags"`
	Auth        string      `json:"auth,omitempty" cbor:"auth,omitempty"`
	Fields      []fieldView `json:"fields" cbor:"fields"`
	Invalid     string      `json:"invalid,omitempty" cbor:"invalid,omitempty"`
}

type fieldView struct {
	ID     uint16 `json:"id" cbor:"id"`
	Type   string `json:"type" cbor:"type"`
	TypeID uint8  `json:"type_id" cbor:"type_id"`
	Value  any    `json:"value" cbor:"value"`
}

func viewFrame(f frame.Frame, validate bool) (frameView, error) {
	fields, err := f.Fields()
	if err != nil {
		return frameView{}, fmt.Errorf("message_id=%d: %w", f.Header.MessageID, err)
	}
	v := frameView{
		MessageID:   f.Header.MessageID,
		MessageType: f.Header.MessageType,
		TypeName:    schema.MessageName(f.Header.MessageType),
		Magic:       f.Header.Magic,
		Version:     f.Header.Version,
		Flags:       f.Header.Flags,
		Fields:      make([]fieldView, 0, len(fields)),
	}
	if len(f.Auth) > 0 {
		v.Auth = hex.EncodeToString(f.Auth)
	}
	for _, fld := range fields {
		val, err := fld.Any()
		if err != nil {
			return frameView{}, err
		}
		if b, ok := val.([]byte); ok {
			val = hex.EncodeToString(b)
		}
		v.Fields = append(v.Fields, fieldView{
			ID:     fld.ID,
			Type:   tlv.TypeName(fld.Type),
			TypeID: fld.Type,
			Value:  val,
		})
	}
	if validate {
		if _, err := schema.Parse(f); err != nil {
			v.Invalid = err.Error()
		}
	}
	return v, nil
}

// readViews decodes every frame of r. When verifier is non-nil each frame's
// auth block must pass it.
func readViews(profile config.Profile, r io.Reader, validate bool, verifier auth.Validator) ([]frameView, error) {
	fr := frame.NewReader(r, profile.Limits())
	views := make([]frameView, 0)
	for {
		f, err := fr.Next()
		if errors.Is(err, io.EOF) {
			return views, nil
		}
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(views), err)
		}
		if err := f.Header.Check(profile.Frame.Magic, profile.Frame.Version); err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(views), err)
		}
		if verifier != nil {
			if err := auth.Frame(verifier, f); err != nil {
				return nil, fmt.Errorf("frame %d: %w", len(views), err)
			}
		}
		v, err := viewFrame(f, validate)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(views), err)
		}
		views = append(views, v)
	}
}

func decodeFrames(profile config.Profile, r io.Reader, w io.Writer, format string, validate bool, verifier auth.Validator) error {
	views, err := readViews(profile, r, validate, verifier)
	if err != nil {
		return err
	}
	log.Debug().Int("frames", len(views)).Str("format", format).Msg("decoded")
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case "cbor":
		return cborMode.NewEncoder(w).Encode(views)
	case "diag":
		b, err := cborMode.Marshal(views)
		if err != nil {
			return err
		}
		diag, err := cbor.Diagnose(b)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, diag)
		return err
	default:
		return fmt.Errorf("unknown format %q (supported: json, cbor, diag)", format)
	}
}
