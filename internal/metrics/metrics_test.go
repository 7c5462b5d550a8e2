package metrics

import (
	"errors"
	"testing"

	"github.com/danmuck/bincodec/codec"
	"github.com/danmuck/bincodec/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(frames.WithLabelValues(DirectionWrite))
	RecordFrame(DirectionWrite, 40, 12)
	if got := testutil.ToFloat64(frames.WithLabelValues(DirectionWrite)); got != before+1 {
		t.Fatalf("frames counter: got %v want %v", got, before+1)
	}
}

func TestRecordErrorLabelsByKind(t *testing.T) {
	testlog.Start(t)
	short := frameErrors.WithLabelValues(DirectionRead, codec.KindInsufficientData.String())
	other := frameErrors.WithLabelValues(DirectionRead, codec.KindUnknown.String())
	beforeShort := testutil.ToFloat64(short)
	beforeOther := testutil.ToFloat64(other)

	_, err := codec.NewReader([]byte{1}).GetU32(codec.Big)
	RecordError(DirectionRead, err)
	RecordError(DirectionRead, errors.New("not a codec error"))

	if got := testutil.ToFloat64(short); got != beforeShort+1 {
		t.Fatalf("insufficient_data: got %v want %v", got, beforeShort+1)
	}
	if got := testutil.ToFloat64(other); got != beforeOther+1 {
		t.Fatalf("unknown: got %v want %v", got, beforeOther+1)
	}
}

func TestSnapshotIncludesRecordedSeries(t *testing.T) {
	testlog.Start(t)
	RecordFrame(DirectionRead, 30, 8)
	samples, err := Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	found := false
	for _, s := range samples {
		if s.Name == "bincodec_frame_total" && s.Labels["direction"] == DirectionRead && s.Value >= 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("read frame counter missing from snapshot: %+v", samples)
	}
}
