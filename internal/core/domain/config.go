package domain

import (
	"runtime"

	"go.trai.ch/zerr"
)

// ConfigFileName is the file name of the engine configuration.
const ConfigFileName = "delta.yaml"

// Config is the runtime configuration of the engine.
type Config struct {
	Output     OutputConfig
	Solver     SolverConfig
	Renderer   RendererConfig
	Cache      CacheConfig
	Controller ControllerConfig
	History    HistoryConfig
	Log        LogConfig
}

// OutputConfig describes the produced media.
type OutputConfig struct {
	Width      int
	Height     int
	FrameRate  FrameRate
	SampleRate int
	Channels   int
}

// Format returns the media format of the output.
func (o OutputConfig) Format() Format {
	return Format{Width: o.Width, Height: o.Height, SampleRate: o.SampleRate, Channels: o.Channels}
}

// SolverConfig tunes the constraint solver.
type SolverConfig struct {
	// Tolerance is the largest disagreement between two paths to the same marker
	// that is still accepted.
	Tolerance Time
}

// RendererConfig tunes the evaluation engine.
type RendererConfig struct {
	// Workers bounds concurrent processor calls.
	Workers int
}

// CacheConfig bounds the result cache.
type CacheConfig struct {
	MaxEntries int
	MaxBytes   int64
	Shards     int
}

// ControllerConfig tunes the rendering controller.
type ControllerConfig struct {
	// MaxInFlight bounds concurrently evaluated frame requests.
	MaxInFlight int
	// ExportRate caps frames per second started during export. Zero means unlimited.
	ExportRate float64
	// ReorderWindow bounds how far ahead of the next frame to encode export may run.
	ReorderWindow int
}

// HistoryConfig bounds the undo history.
type HistoryConfig struct {
	Depth int
}

// LogConfig selects log output.
type LogConfig struct {
	Level  string
	Format string
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	workers := max(runtime.GOMAXPROCS(0), 1)
	return Config{
		Output: OutputConfig{
			Width:      64,
			Height:     36,
			FrameRate:  FrameRate{Num: 30, Den: 1},
			SampleRate: 48_000,
			Channels:   2,
		},
		Solver:   SolverConfig{Tolerance: 1},
		Renderer: RendererConfig{Workers: workers},
		Cache: CacheConfig{
			MaxEntries: 4096,
			MaxBytes:   512 << 20,
			Shards:     16,
		},
		Controller: ControllerConfig{
			MaxInFlight:   workers,
			ReorderWindow: 2 * workers,
		},
		History: HistoryConfig{Depth: 100},
		Log:     LogConfig{Level: "info", Format: "pretty"},
	}
}

// Validate checks that every bound is usable.
func (c Config) Validate() error {
	switch {
	case c.Output.Width <= 0 || c.Output.Height <= 0:
		return zerr.With(zerr.Wrap(ErrInvalidConfig, "output size must be positive"), "width", c.Output.Width)
	case !c.Output.FrameRate.Valid():
		return zerr.Wrap(ErrInvalidConfig, "frame rate must be positive")
	case c.Output.SampleRate <= 0 || c.Output.Channels <= 0:
		return zerr.Wrap(ErrInvalidConfig, "audio format must be positive")
	case c.Solver.Tolerance < 0:
		return zerr.Wrap(ErrInvalidConfig, "solver tolerance must not be negative")
	case c.Renderer.Workers <= 0:
		return zerr.With(zerr.Wrap(ErrInvalidConfig, "renderer workers must be positive"), "workers", c.Renderer.Workers)
	case c.Cache.MaxEntries <= 0 || c.Cache.MaxBytes <= 0 || c.Cache.Shards <= 0:
		return zerr.Wrap(ErrInvalidConfig, "cache bounds must be positive")
	case c.Controller.MaxInFlight <= 0 || c.Controller.ReorderWindow <= 0:
		return zerr.Wrap(ErrInvalidConfig, "controller bounds must be positive")
	case c.Controller.ExportRate < 0:
		return zerr.Wrap(ErrInvalidConfig, "export rate must not be negative")
	case c.History.Depth < 0:
		return zerr.Wrap(ErrInvalidConfig, "history depth must not be negative")
	}
	return nil
}
