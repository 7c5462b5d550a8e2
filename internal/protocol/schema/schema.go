package schema

import (
	"fmt"
	"sort"

	"github.com/danmuck/bincodec/internal/protocol/tlv"
	"github.com/rs/zerolog/log"
)

// Message type IDs of the sample telemetry protocol carried in frames.
const (
	MsgHello  uint32 = 1
	MsgSample uint32 = 2
	MsgAck    uint32 = 3
	MsgError  uint32 = 4
)

// Field IDs, grouped by the message that introduces them.
const (
	FieldNodeID   uint16 = 1
	FieldProtocol uint16 = 2

	FieldSeries      uint16 = 100
	FieldTimestampMS uint16 = 101
	FieldValue       uint16 = 102
	FieldUnit        uint16 = 103

	FieldSequence uint16 = 200
	FieldStatus   uint16 = 201

	FieldCode    uint16 = 300
	FieldMessage uint16 = 301
)

var messageNames = map[uint32]string{
	MsgHello:  "hello",
	MsgSample: "sample",
	MsgAck:    "ack",
	MsgError:  "error",
}

// MessageName returns the catalog name of a message type, or "" if unknown.
func MessageName(messageType uint32) string {
	return messageNames[messageType]
}

// ParseMessageType maps a catalog name back to its type ID.
func ParseMessageType(name string) (uint32, error) {
	for id, n := range messageNames {
		if n == name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("schema: unknown message type %q", name)
}

// MessageNames lists the catalog in type ID order.
func MessageNames() []string {
	ids := make([]uint32, 0, len(messageNames))
	for id := range messageNames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = messageNames[id]
	}
	return out
}

type Requirement struct {
	ID   uint16
	Type uint8
}

type ValidationError struct {
	MessageType uint32
	FieldID     uint16
	Reason      string
}

func (e ValidationError) Error() string {
	if e.FieldID == 0 {
		return fmt.Sprintf("schema: message_type=%d: %s", e.MessageType, e.Reason)
	}
	return fmt.Sprintf("schema: message_type=%d field=%d: %s", e.MessageType, e.FieldID, e.Reason)
}

var requirements = map[uint32][]Requirement{
	MsgHello: {
		{FieldNodeID, tlv.TypeString},
		{FieldProtocol, tlv.TypeU16},
	},
	MsgSample: {
		{FieldSeries, tlv.TypeString},
		{FieldTimestampMS, tlv.TypeU64},
		{FieldValue, tlv.TypeBytes},
	},
	MsgAck: {
		{FieldSequence, tlv.TypeU32},
		{FieldStatus, tlv.TypeString},
	},
	MsgError: {
		{FieldCode, tlv.TypeU32},
		{FieldMessage, tlv.TypeString},
	},
}

// Requirements returns a copy of the required fields of messageType.
func Requirements(messageType uint32) ([]Requirement, bool) {
	reqs, ok := requirements[messageType]
	if !ok {
		return nil, false
	}
	return append([]Requirement(nil), reqs...), true
}

// Validate enforces required fields and required field types for a message type.
// Fields outside the requirement list, including unknown types, are ignored.
func Validate(messageType uint32, fields []tlv.Field) error {
	log.Debug().Uint32("message_type", messageType).Int("fields", len(fields)).Msg("schema.Validate")
	reqs, ok := requirements[messageType]
	if !ok {
		log.Error().Uint32("message_type", messageType).Msg("schema.Validate unknown message_type")
		return ValidationError{MessageType: messageType, Reason: "unknown message_type"}
	}
	for _, req := range reqs {
		f, found := tlv.GetField(fields, req.ID)
		if !found {
			log.Error().
				Uint32("message_type", messageType).
				Uint16("field_id", req.ID).
				Msg("schema.Validate missing field")
			return ValidationError{MessageType: messageType, FieldID: req.ID, Reason: "missing required field"}
		}
		if f.Type != req.Type {
			log.Error().
				Uint32("message_type", messageType).
				Uint16("field_id", req.ID).
				Str("got", tlv.TypeName(f.Type)).
				Str("want", tlv.TypeName(req.Type)).
				Msg("schema.Validate type mismatch")
			return ValidationError{MessageType: messageType, FieldID: req.ID, Reason: "type mismatch"}
		}
	}
	log.Info().Uint32("message_type", messageType).Msg("schema.Validate ok")
	return nil
}
