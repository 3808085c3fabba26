package config_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/delta/internal/core/domain"
)

func TestLoader_Watch(t *testing.T) {
	dir := t.TempDir()
	path := createFile(t, dir, domain.ConfigFileName, "cache:\n  maxEntries: 10\n")
	loader := newLoader(t)

	var (
		mu      sync.Mutex
		applied []domain.Config
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- loader.Watch(ctx, path, func(cfg domain.Config) {
			mu.Lock()
			defer mu.Unlock()
			applied = append(applied, cfg)
		})
	}()

	last := func() (domain.Config, bool) {
		mu.Lock()
		defer mu.Unlock()
		if len(applied) == 0 {
			return domain.Config{}, false
		}
		return applied[len(applied)-1], true
	}

	// The watcher may not be registered yet, so keep replacing the file until
	// a reload is observed.
	replace := func(content string) {
		tmp := filepath.Join(dir, "delta.yaml.tmp")
		require.NoError(t, os.WriteFile(tmp, []byte(content), 0o600))
		require.NoError(t, os.Rename(tmp, path))
	}
	require.Eventually(t, func() bool {
		replace("cache:\n  maxEntries: 20\n")
		cfg, ok := last()
		return ok && cfg.Cache.MaxEntries == 20
	}, 5*time.Second, 50*time.Millisecond)

	replace("renderer:\n  workers: 0\n")
	replace("cache:\n  maxEntries: 30\n")
	require.Eventually(t, func() bool {
		cfg, _ := last()
		return cfg.Cache.MaxEntries == 30
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	for _, cfg := range applied {
		assert.Positive(t, cfg.Renderer.Workers, "invalid revisions are never applied")
	}
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
