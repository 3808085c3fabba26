package renderer

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/delta/internal/adapters/compositor" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/delta/internal/adapters/config"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/delta/internal/adapters/processors" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/delta/internal/adapters/telemetry"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/delta/internal/engine/cache"
)

// NodeID is the unique identifier for the renderer Graft node.
const NodeID graft.ID = "engine.renderer"

func init() {
	graft.Register(graft.Node[*Renderer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			processors.NodeID,
			compositor.NodeID,
			cache.NodeID,
			telemetry.TracerNodeID,
			config.ConfigNodeID,
		},
		Run: func(ctx context.Context) (*Renderer, error) {
			registry, err := graft.Dep[ports.ProcessorRegistry](ctx)
			if err != nil {
				return nil, err
			}

			comp, err := graft.Dep[ports.Compositor](ctx)
			if err != nil {
				return nil, err
			}

			results, err := graft.Dep[*cache.Cache](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			cfg, err := graft.Dep[domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			return New(registry, comp, results, tracer, cfg.Output.Format(), cfg.Renderer.Workers), nil
		},
	})
}
