package ports

import (
	"context"

	"go.trai.ch/delta/internal/core/domain"
)

// ConfigLoader defines the interface for loading the engine configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from the given directory.
	// A missing configuration file yields the defaults.
	Load(dir string) (domain.Config, error)
	// Watch calls apply with every valid revision of the file at path until
	// ctx is done.
	Watch(ctx context.Context, path string, apply func(domain.Config)) error
}
