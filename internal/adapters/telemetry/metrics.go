package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// SpanMetrics implements sdktrace.SpanProcessor by observing the duration of
// every ended span in a Prometheus histogram labelled by span name and status.
type SpanMetrics struct {
	durations *prometheus.HistogramVec
}

// NewSpanMetrics creates the span histogram and registers it with reg.
func NewSpanMetrics(reg prometheus.Registerer) (*SpanMetrics, error) {
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "delta",
		Subsystem: "trace",
		Name:      "span_duration_seconds",
		Help:      "Duration of traced operations.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"span", "status"})
	if err := reg.Register(durations); err != nil {
		return nil, err
	}
	return &SpanMetrics{durations: durations}, nil
}

// OnStart does nothing.
func (m *SpanMetrics) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd records the span duration.
func (m *SpanMetrics) OnEnd(s sdktrace.ReadOnlySpan) {
	status := "ok"
	if s.Status().Code == codes.Error {
		status = "error"
	}
	m.durations.WithLabelValues(s.Name(), status).Observe(s.EndTime().Sub(s.StartTime()).Seconds())
}

// ForceFlush does nothing.
func (m *SpanMetrics) ForceFlush(context.Context) error {
	return nil
}

// Shutdown does nothing.
func (m *SpanMetrics) Shutdown(context.Context) error {
	return nil
}

// NewProvider creates a tracer provider feeding every span to processors.
func NewProvider(processors ...sdktrace.SpanProcessor) *sdktrace.TracerProvider {
	opts := make([]sdktrace.TracerProviderOption, 0, len(processors))
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	return sdktrace.NewTracerProvider(opts...)
}
