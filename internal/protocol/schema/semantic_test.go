package schema

import (
	"bytes"
	"testing"

	"github.com/danmuck/bincodec/internal/protocol/frame"
	"github.com/danmuck/bincodec/internal/protocol/tlv"
	"github.com/danmuck/bincodec/internal/testutil/testlog"
)

func TestParseSplitsRequiredAndUnknown(t *testing.T) {
	testlog.Start(t)
	fields := append(sampleFields(),
		tlv.String(FieldUnit, "ratio"),
		tlv.Field{ID: 4000, Type: 0x33, Value: []byte{9}},
		tlv.String(FieldSeries, "shadowed"),
	)
	f, err := frame.New(frame.Header{MessageID: 5, MessageType: MsgSample}, []byte("k"), fields)
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	msg, err := Parse(f)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.Name != "sample" || msg.Header.MessageID != 5 || string(msg.Auth) != "k" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Values[FieldSeries] != "cpu.load" {
		t.Fatalf("series: %v", msg.Values[FieldSeries])
	}
	if msg.Values[FieldTimestampMS] != uint64(1700000000000) {
		t.Fatalf("timestamp: %v", msg.Values[FieldTimestampMS])
	}
	if b, ok := msg.Values[FieldValue].([]byte); !ok || !bytes.Equal(b, []byte{0x3f, 0x80, 0, 0}) {
		t.Fatalf("value: %v", msg.Values[FieldValue])
	}
	if len(msg.Unknown) != 3 || msg.Unknown[1].Type != 0x33 {
		t.Fatalf("unknown: %+v", msg.Unknown)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	testlog.Start(t)
	f, err := frame.New(frame.Header{MessageType: MsgAck}, nil, []tlv.Field{tlv.U32(FieldSequence, 1)})
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if _, err := Parse(f); err == nil {
		t.Fatalf("expected validation error")
	}
	bad := frame.Frame{Header: frame.Header{MessageType: MsgAck}, Payload: []byte{0, 1, 2}}
	if _, err := Parse(bad); err == nil {
		t.Fatalf("expected payload decode error")
	}
}
