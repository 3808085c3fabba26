package ports

import (
	"context"

	"go.trai.ch/delta/internal/core/domain"
)

// ComputeFunc produces the result for a cache miss.
type ComputeFunc func(ctx context.Context) (domain.Output, error)

// Cached is a held reference to a cached result. The output must not be
// modified; Release must be called once the holder is done with it.
type Cached interface {
	Key() domain.Fingerprint
	Output() domain.Output
	Release()
}

// ResultCache stores evaluation results by fingerprint.
//
//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type ResultCache interface {
	// GetOrCompute returns the result stored under key, computing it at most
	// once across concurrent callers on a miss. Failures are not stored.
	GetOrCompute(ctx context.Context, key domain.Fingerprint, compute ComputeFunc) (Cached, error)
}
