// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/delta/internal/adapters/cas"
	_ "go.trai.ch/delta/internal/adapters/compositor"
	_ "go.trai.ch/delta/internal/adapters/config"
	_ "go.trai.ch/delta/internal/adapters/logger"
	_ "go.trai.ch/delta/internal/adapters/processors"
	_ "go.trai.ch/delta/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/delta/internal/app"
	_ "go.trai.ch/delta/internal/engine/cache"
	_ "go.trai.ch/delta/internal/engine/renderer"
	_ "go.trai.ch/delta/internal/engine/solver"
)
