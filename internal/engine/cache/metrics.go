package cache

import "github.com/prometheus/client_golang/prometheus"

// Metrics exports cache activity to Prometheus. A nil *Metrics records nothing.
type Metrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	failures  prometheus.Counter
	entries   prometheus.Gauge
	bytes     prometheus.Gauge
}

// NewMetrics creates the cache collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "delta", Subsystem: "cache", Name: "hits_total",
			Help: "Lookups served from a stored result.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "delta", Subsystem: "cache", Name: "misses_total",
			Help: "Computations started for a missing key.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "delta", Subsystem: "cache", Name: "evictions_total",
			Help: "Entries evicted to stay within bounds.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "delta", Subsystem: "cache", Name: "failures_total",
			Help: "Computations that returned an error.",
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "delta", Subsystem: "cache", Name: "entries",
			Help: "Stored entries.",
		}),
		bytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "delta", Subsystem: "cache", Name: "bytes",
			Help: "Aggregate cost of stored entries.",
		}),
	}
	for _, c := range []prometheus.Collector{m.hits, m.misses, m.evictions, m.failures, m.entries, m.bytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *Metrics) eviction() {
	if m != nil {
		m.evictions.Inc()
	}
}

func (m *Metrics) failure() {
	if m != nil {
		m.failures.Inc()
	}
}
