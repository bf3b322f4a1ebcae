// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"subforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.UploadDir = filepath.Join(base, "uploads")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &cfg
}

// WithWorkers overrides the task worker count and admission factor.
func WithWorkers(workers, factor int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Processing.Workers = workers
		cfg.Processing.MaxTasksFactor = factor
	}
}

// WithCorrection toggles the LLM correction stage.
func WithCorrection(enabled bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.LLM.CorrectionEnabled = enabled
	}
}
