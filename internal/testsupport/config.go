package testsupport

import (
	"path/filepath"
	"testing"

	"carddex/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ImageCacheDir = filepath.Join(base, "images")
	cfg.Vision.APIKey = "test"
	cfg.Grading.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithGradingEnabled turns on grading for the test config.
func WithGradingEnabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Grading.Enabled = true
	}
}

// WithTutorialDisabled turns off the capture tutorial for the test config.
func WithTutorialDisabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Capture.ShowTutorial = false
	}
}
