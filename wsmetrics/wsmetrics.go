// Package wsmetrics provides a Prometheus websocket.Observer.
package wsmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/streamwire/websocket"
)

// Metrics counts handshakes and frames of the clients it observes.
type Metrics struct {
	Handshakes   *prometheus.CounterVec
	Frames       *prometheus.CounterVec
	PayloadBytes *prometheus.CounterVec
	PayloadSize  *prometheus.HistogramVec
}

var _ websocket.Observer = &Metrics{}

// New registers the metrics with reg under namespace.
// A nil reg registers with prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "websocket"
	}
	f := promauto.With(reg)

	return &Metrics{
		Handshakes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handshakes_total",
				Help:      "Total number of opening handshakes by result",
			},
			[]string{"result"},
		),
		Frames: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_total",
				Help:      "Total number of frames by direction and opcode",
			},
			[]string{"direction", "opcode"},
		),
		PayloadBytes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payload_bytes_total",
				Help:      "Total number of payload bytes by direction",
			},
			[]string{"direction"},
		),
		PayloadSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "payload_size_bytes",
				Help:      "Frame payload size in bytes",
				Buckets:   []float64{0, 16, 125, 1024, 1360, 8192, 65535},
			},
			[]string{"direction"},
		),
	}
}

// HandshakeDone counts a finished handshake by its result.
func (m *Metrics) HandshakeDone(r websocket.Result) {
	m.Handshakes.WithLabelValues(r.String()).Inc()
}

// FrameRead records a frame read with an n byte payload.
func (m *Metrics) FrameRead(op websocket.Opcode, n int) {
	m.frame("read", op, n)
}

// FrameWritten records a frame written with an n byte payload.
func (m *Metrics) FrameWritten(op websocket.Opcode, n int) {
	m.frame("written", op, n)
}

func (m *Metrics) frame(direction string, op websocket.Opcode, n int) {
	m.Frames.WithLabelValues(direction, op.String()).Inc()
	m.PayloadBytes.WithLabelValues(direction).Add(float64(n))
	m.PayloadSize.WithLabelValues(direction).Observe(float64(n))
}
