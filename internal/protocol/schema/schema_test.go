package schema

import (
	"errors"
	"testing"

	"github.com/danmuck/bincodec/internal/protocol/tlv"
	"github.com/danmuck/bincodec/internal/testutil/testlog"
)

func sampleFields() []tlv.Field {
	return []tlv.Field{
		tlv.String(FieldSeries, "cpu.load"),
		tlv.U64(FieldTimestampMS, 1700000000000),
		tlv.Bytes(FieldValue, []byte{0x3f, 0x80, 0, 0}),
	}
}

func TestValidateSampleRequiredFields(t *testing.T) {
	testlog.Start(t)
	if err := Validate(MsgSample, sampleFields()); err != nil {
		t.Fatalf("validate sample: %v", err)
	}
}

func TestValidateUnknownFieldsIgnored(t *testing.T) {
	testlog.Start(t)
	fields := append(sampleFields(),
		tlv.Field{ID: 9999, Type: tlv.TypeBytes, Value: []byte{0x01}},
		tlv.Field{ID: 9998, Type: 0x60, Value: []byte{0x02}},
	)
	if err := Validate(MsgSample, fields); err != nil {
		t.Fatalf("validate with unknown field: %v", err)
	}
}

func TestValidateMissingRequiredDeterministic(t *testing.T) {
	testlog.Start(t)
	fields := []tlv.Field{tlv.String(FieldSeries, "cpu.load")}
	err := Validate(MsgSample, fields)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if ve.FieldID != FieldTimestampMS || ve.Reason != "missing required field" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
}

func TestValidateTypeMismatchDeterministic(t *testing.T) {
	testlog.Start(t)
	fields := []tlv.Field{
		tlv.U32(FieldSequence, 1),
		tlv.Bytes(FieldStatus, []byte("ok")),
	}
	err := Validate(MsgAck, fields)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if ve.FieldID != FieldStatus || ve.Reason != "type mismatch" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
}

func TestValidateUnknownMessageType(t *testing.T) {
	testlog.Start(t)
	err := Validate(99, nil)
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Reason != "unknown message_type" || ve.FieldID != 0 {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMessageCatalog(t *testing.T) {
	names := MessageNames()
	want := []string{"hello", "sample", "ack", "error"}
	if len(names) != len(want) {
		t.Fatalf("names: %v", names)
	}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("names[%d]=%q want %q", i, names[i], n)
		}
		id, err := ParseMessageType(n)
		if err != nil || MessageName(id) != n {
			t.Fatalf("round trip %q: %d %v", n, id, err)
		}
	}
	if _, err := ParseMessageType("bogus"); err == nil {
		t.Fatalf("expected error for unknown name")
	}
	reqs, ok := Requirements(MsgHello)
	if !ok || len(reqs) != 2 {
		t.Fatalf("hello requirements: %+v", reqs)
	}
	reqs[0].ID = 0
	if again, _ := Requirements(MsgHello); again[0].ID != FieldNodeID {
		t.Fatalf("requirements leaked a mutable reference")
	}
}
