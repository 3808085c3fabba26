// Package config loads the engine configuration from delta.yaml.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the nearest delta.yaml at or above dir. Keys missing from the
// file keep their defaults, and no file at all yields domain.DefaultConfig.
func (l *Loader) Load(dir string) (domain.Config, error) {
	path, ok := Find(dir)
	if !ok {
		return domain.DefaultConfig(), nil
	}
	return l.LoadFile(path)
}

// LoadFile reads the configuration at path.
func (l *Loader) LoadFile(path string) (domain.Config, error) {
	// #nosec G304 -- path is chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Config{}, zerr.With(readFailed(err), "path", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return domain.Config{}, zerr.With(err, "path", path)
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (domain.Config, error) {
	file := fromDomain(domain.DefaultConfig())

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		if errors.Is(err, domain.ErrInvalidConfig) {
			return domain.Config{}, err
		}
		return domain.Config{}, readFailed(err)
	}

	cfg := file.toDomain()
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// Marshal renders cfg as delta.yaml content.
func Marshal(cfg domain.Config) ([]byte, error) {
	return yaml.Marshal(fromDomain(cfg))
}

// Find returns the nearest delta.yaml at or above dir.
func Find(dir string) (string, bool) {
	current := dir
	for {
		path := filepath.Join(current, domain.ConfigFileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

func readFailed(err error) error {
	return zerr.With(zerr.Wrap(domain.ErrConfigRead, "cannot load "+domain.ConfigFileName), "cause", err.Error())
}
