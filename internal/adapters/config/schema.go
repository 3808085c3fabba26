package config

import (
	"strconv"
	"strings"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// File represents the structure of the delta.yaml configuration file.
type File struct {
	Output     OutputDTO     `yaml:"output"`
	Solver     SolverDTO     `yaml:"solver"`
	Renderer   RendererDTO   `yaml:"renderer"`
	Cache      CacheDTO      `yaml:"cache"`
	Controller ControllerDTO `yaml:"controller"`
	History    HistoryDTO    `yaml:"history"`
	Log        LogDTO        `yaml:"log"`
}

// OutputDTO describes the rendered media format.
type OutputDTO struct {
	Width      int       `yaml:"width"`
	Height     int       `yaml:"height"`
	FrameRate  FrameRate `yaml:"frameRate"`
	SampleRate int       `yaml:"sampleRate"`
	Channels   int       `yaml:"channels"`
}

// SolverDTO tunes the constraint solver. Tolerance is in seconds.
type SolverDTO struct {
	Tolerance float64 `yaml:"tolerance"`
}

// RendererDTO tunes the evaluation engine.
type RendererDTO struct {
	Workers int `yaml:"workers"`
}

// CacheDTO bounds the result cache.
type CacheDTO struct {
	MaxEntries int   `yaml:"maxEntries"`
	MaxBytes   int64 `yaml:"maxBytes"`
	Shards     int   `yaml:"shards"`
}

// ControllerDTO tunes the rendering controller.
type ControllerDTO struct {
	MaxInFlight   int     `yaml:"maxInFlight"`
	ExportRate    float64 `yaml:"exportRate"`
	ReorderWindow int     `yaml:"reorderWindow"`
}

// HistoryDTO bounds undo history.
type HistoryDTO struct {
	Depth int `yaml:"depth"`
}

// LogDTO selects log output.
type LogDTO struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FrameRate is written either as an integer ("30") or as a ratio ("30000/1001").
type FrameRate domain.FrameRate

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *FrameRate) UnmarshalYAML(value *yaml.Node) error {
	num, den, found := strings.Cut(strings.TrimSpace(value.Value), "/")
	n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
	if err != nil {
		return invalidRate(value)
	}
	d := int64(1)
	if found {
		if d, err = strconv.ParseInt(strings.TrimSpace(den), 10, 64); err != nil {
			return invalidRate(value)
		}
	}
	*r = FrameRate{Num: n, Den: d}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (r FrameRate) MarshalYAML() (any, error) {
	if r.Den == 1 {
		return r.Num, nil
	}
	return strconv.FormatInt(r.Num, 10) + "/" + strconv.FormatInt(r.Den, 10), nil
}

func invalidRate(value *yaml.Node) error {
	err := zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "frame rate must be an integer or a ratio"), "value", value.Value)
	return zerr.With(err, "line", value.Line)
}

// fromDomain converts cfg into its file representation.
func fromDomain(cfg domain.Config) File {
	return File{
		Output: OutputDTO{
			Width:      cfg.Output.Width,
			Height:     cfg.Output.Height,
			FrameRate:  FrameRate(cfg.Output.FrameRate),
			SampleRate: cfg.Output.SampleRate,
			Channels:   cfg.Output.Channels,
		},
		Solver:   SolverDTO{Tolerance: cfg.Solver.Tolerance.Seconds()},
		Renderer: RendererDTO{Workers: cfg.Renderer.Workers},
		Cache: CacheDTO{
			MaxEntries: cfg.Cache.MaxEntries,
			MaxBytes:   cfg.Cache.MaxBytes,
			Shards:     cfg.Cache.Shards,
		},
		Controller: ControllerDTO{
			MaxInFlight:   cfg.Controller.MaxInFlight,
			ExportRate:    cfg.Controller.ExportRate,
			ReorderWindow: cfg.Controller.ReorderWindow,
		},
		History: HistoryDTO{Depth: cfg.History.Depth},
		Log:     LogDTO{Level: cfg.Log.Level, Format: cfg.Log.Format},
	}
}

// toDomain converts the file representation into a domain.Config.
func (f File) toDomain() domain.Config {
	return domain.Config{
		Output: domain.OutputConfig{
			Width:      f.Output.Width,
			Height:     f.Output.Height,
			FrameRate:  domain.FrameRate(f.Output.FrameRate),
			SampleRate: f.Output.SampleRate,
			Channels:   f.Output.Channels,
		},
		Solver:   domain.SolverConfig{Tolerance: domain.Seconds(f.Solver.Tolerance)},
		Renderer: domain.RendererConfig{Workers: f.Renderer.Workers},
		Cache: domain.CacheConfig{
			MaxEntries: f.Cache.MaxEntries,
			MaxBytes:   f.Cache.MaxBytes,
			Shards:     f.Cache.Shards,
		},
		Controller: domain.ControllerConfig{
			MaxInFlight:   f.Controller.MaxInFlight,
			ExportRate:    f.Controller.ExportRate,
			ReorderWindow: f.Controller.ReorderWindow,
		},
		History: domain.HistoryConfig{Depth: f.History.Depth},
		Log:     domain.LogConfig{Level: f.Log.Level, Format: f.Log.Format},
	}
}
