package metrics

import (
	"sort"
	"strings"
	"sync"

	"github.com/danmuck/bincodec/codec"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DirectionRead  = "read"
	DirectionWrite = "write"
)

var (
	registerOnce sync.Once

	frames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bincodec",
			Subsystem: "frame",
			Name:      "total",
			Help:      "Frames successfully read or written.",
		},
		[]string{"direction"},
	)
	frameBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bincodec",
			Subsystem: "frame",
			Name:      "bytes_total",
			Help:      "Wire bytes of successfully processed frames.",
		},
		[]string{"direction"},
	)
	frameErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bincodec",
			Subsystem: "frame",
			Name:      "errors_total",
			Help:      "Frame failures by codec error kind.",
		},
		[]string{"direction", "kind"},
	)
	payloadSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bincodec",
			Subsystem: "frame",
			Name:      "payload_bytes",
			Help:      "Payload size of processed frames.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
		},
		[]string{"direction"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(frames, frameBytes, frameErrors, payloadSize)
	})
}

// RecordFrame counts one processed frame of wireBytes total size.
func RecordFrame(direction string, wireBytes, payloadBytes int) {
	RegisterMetrics()
	frames.WithLabelValues(direction).Inc()
	frameBytes.WithLabelValues(direction).Add(float64(wireBytes))
	payloadSize.WithLabelValues(direction).Observe(float64(payloadBytes))
}

// RecordError counts a failed frame, labelled with the codec error kind.
// Errors outside the codec taxonomy are labelled "unknown".
func RecordError(direction string, err error) {
	RegisterMetrics()
	frameErrors.WithLabelValues(direction, codec.KindOf(err).String()).Inc()
}

// Sample is one flattened counter value.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Snapshot gathers the bincodec counters from the default registry, sorted by
// name. Histograms report their sample count.
func Snapshot() ([]Sample, error) {
	RegisterMetrics()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return nil, err
	}
	out := make([]Sample, 0)
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, "bincodec_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			s := Sample{Name: name, Labels: labels}
			switch {
			case m.GetCounter() != nil:
				s.Value = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				s.Value = float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
