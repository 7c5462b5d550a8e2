package schema

import (
	"github.com/danmuck/bincodec/internal/protocol/frame"
	"github.com/danmuck/bincodec/internal/protocol/tlv"
)

// Message is a frame whose required fields have been validated and decoded
// into Go values (uint64, bool, string or []byte, as tlv.Field.Any returns).
type Message struct {
	Header  frame.Header
	Auth    []byte
	Name    string
	Values  map[uint16]any
	Unknown []tlv.Field
}

// Parse decodes the frame payload, validates it, and splits the fields into
// typed values for the required IDs and everything else, which is kept in
// wire order.
func Parse(f frame.Frame) (*Message, error) {
	fields, err := f.Fields()
	if err != nil {
		return nil, err
	}
	if err := Validate(f.Header.MessageType, fields); err != nil {
		return nil, err
	}
	required := make(map[uint16]struct{})
	for _, req := range requirements[f.Header.MessageType] {
		required[req.ID] = struct{}{}
	}
	msg := &Message{
		Header: f.Header,
		Auth:   f.Auth,
		Name:   MessageName(f.Header.MessageType),
		Values: make(map[uint16]any, len(required)),
	}
	for _, field := range fields {
		if _, ok := required[field.ID]; !ok {
			msg.Unknown = append(msg.Unknown, field)
			continue
		}
		if _, dup := msg.Values[field.ID]; dup {
			// first occurrence wins, matching tlv.GetField
			msg.Unknown = append(msg.Unknown, field)
			continue
		}
		v, err := field.Any()
		if err != nil {
			return nil, err
		}
		msg.Values[field.ID] = v
	}
	return msg, nil
}
