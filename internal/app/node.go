package app

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/delta/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/delta/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/delta/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/delta/internal/engine/cache"
	"go.trai.ch/delta/internal/engine/renderer"
	"go.trai.ch/delta/internal/engine/solver"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components holds the objects the command line needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			config.ConfigNodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			telemetry.RegistryNodeID,
			solver.NodeID,
			cache.NodeID,
			renderer.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.ConfigNodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := graft.Dep[domain.Config](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	reg, err := graft.Dep[*prometheus.Registry](ctx)
	if err != nil {
		return nil, err
	}

	s, err := graft.Dep[*solver.Solver](ctx)
	if err != nil {
		return nil, err
	}

	results, err := graft.Dep[*cache.Cache](ctx)
	if err != nil {
		return nil, err
	}

	r, err := graft.Dep[*renderer.Renderer](ctx)
	if err != nil {
		return nil, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	return New(loader, log, cfg, s, results, r, tracer, reg).WithDir(wd), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := graft.Dep[domain.Config](ctx)
	if err != nil {
		return nil, err
	}

	if lc, ok := log.(logConfigurer); ok {
		if err := lc.Configure(cfg.Log); err != nil {
			return nil, err
		}
	}

	return &Components{
		App:    app,
		Logger: log,
	}, nil
}
