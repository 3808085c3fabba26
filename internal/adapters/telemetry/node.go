package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/delta/internal/core/ports"
)

const (
	// RegistryNodeID is the unique identifier for the metrics registry Graft node.
	RegistryNodeID graft.ID = "adapter.metrics"
	// TracerNodeID is the unique identifier for the Telemetry adapter Graft node.
	TracerNodeID graft.ID = "adapter.telemetry"
)

func init() {
	graft.Register(graft.Node[*prometheus.Registry]{
		ID:        RegistryNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*prometheus.Registry, error) {
			return prometheus.NewRegistry(), nil
		},
	})

	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{RegistryNodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			reg, err := graft.Dep[*prometheus.Registry](ctx)
			if err != nil {
				return nil, err
			}
			metrics, err := NewSpanMetrics(reg)
			if err != nil {
				return nil, err
			}
			return NewOTelTracer(NewProvider(metrics), "go.trai.ch/delta"), nil
		},
	})
}
