package cache

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/delta/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/delta/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/delta/internal/core/domain"
)

// NodeID is the unique identifier for the result cache Graft node.
const NodeID graft.ID = "engine.cache"

func init() {
	graft.Register(graft.Node[*Cache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.ConfigNodeID,
			telemetry.RegistryNodeID,
		},
		Run: func(ctx context.Context) (*Cache, error) {
			cfg, err := graft.Dep[domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			reg, err := graft.Dep[*prometheus.Registry](ctx)
			if err != nil {
				return nil, err
			}

			metrics, err := NewMetrics(reg)
			if err != nil {
				return nil, err
			}
			return New(cfg.Cache, metrics), nil
		},
	})
}
