package hostcall

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/textcodec/errors"
)

const metricsNamespace = "textcodec"

// Metrics holds the bridge collectors.
type Metrics struct {
	calls        *prometheus.CounterVec
	payloadBytes *prometheus.HistogramVec
	duration     *prometheus.HistogramVec
	openDecoders prometheus.Gauge
}

// NewMetrics creates the bridge collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "bridge",
				Name:      "calls_total",
				Help:      "Bridge calls by operation and response status.",
			},
			[]string{"op", "status"},
		),
		payloadBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "bridge",
				Name:      "payload_bytes",
				Help:      "Size of bridge payloads in bytes.",
				Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
			},
			[]string{"op", "direction"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "bridge",
				Name:      "call_duration_seconds",
				Help:      "Time spent serving bridge calls.",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"op"},
		),
		openDecoders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "open_decoders",
			Help:      "Streaming decoders currently held by hosts.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.calls, m.payloadBytes, m.duration, m.openDecoders)
	}
	return m
}

// DecoderOpened and DecoderClosed track the open decoder gauge.
func (m *Metrics) DecoderOpened() { m.openDecoders.Inc() }
func (m *Metrics) DecoderClosed() { m.openDecoders.Dec() }

func (m *Metrics) observe(op string, in, out int, elapsed time.Duration, err error) {
	status := StatusFromError(err)
	if kind, _ := errors.KindOf(err); kind == errors.KindUnknownOp {
		op = "unknown"
	}
	m.calls.WithLabelValues(op, strconv.Itoa(status)).Inc()
	m.payloadBytes.WithLabelValues(op, "request").Observe(float64(in))
	if err == nil {
		m.payloadBytes.WithLabelValues(op, "response").Observe(float64(out))
	}
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}
