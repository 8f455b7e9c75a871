package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Rewrite outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeDecodeError = "decode_error"
	OutcomeError       = "error"
)

// Metrics holds the Prometheus collectors of the tagging operations.
type Metrics struct {
	registry   *prometheus.Registry
	saves      *prometheus.CounterVec
	rewrites   *prometheus.CounterVec
	covers     prometheus.Counter
	duration   *prometheus.HistogramVec
	queueDepth prometheus.Gauge
}

// New creates the collectors and registers them, together with the Go
// runtime collectors, on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "id3shim",
			Name:      "saves_total",
			Help:      "Tags written, by ID3v2 version.",
		}, []string{"version"}),
		rewrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "id3shim",
			Name:      "rewrites_total",
			Help:      "Frame rewrites, by outcome.",
		}, []string{"outcome"}),
		covers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "id3shim",
			Name:      "covers_total",
			Help:      "Cover images embedded.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "id3shim",
			Name:      "operation_duration_seconds",
			Help:      "Duration of tagging operations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"operation"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "id3shim",
			Name:      "watch_queue_depth",
			Help:      "Files waiting to be normalized.",
		}),
	}
	m.registry.MustRegister(
		m.saves, m.rewrites, m.covers, m.duration, m.queueDepth,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveSave(version int, d time.Duration) {
	m.saves.WithLabelValues(versionLabel(version)).Inc()
	m.duration.WithLabelValues("save").Observe(d.Seconds())
}

func (m *Metrics) ObserveRewrite(outcome string, d time.Duration) {
	m.rewrites.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues("rewrite").Observe(d.Seconds())
}

func (m *Metrics) ObserveCover(d time.Duration) {
	m.covers.Inc()
	m.duration.WithLabelValues("cover").Observe(d.Seconds())
}

func (m *Metrics) SetQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}

func versionLabel(v int) string {
	switch v {
	case 3:
		return "2.3"
	case 4:
		return "2.4"
	}
	return "unknown"
}
