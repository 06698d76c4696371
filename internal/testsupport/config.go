package testsupport

import (
	"path/filepath"
	"testing"

	"texgallery/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.MediaRoot = filepath.Join(base, "media")
	cfgVal.Paths.OutputDir = filepath.Join(base, "exports")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Media.Prefetch = false
	cfgVal.Export.Timestamped = false
	cfgVal.Export.PlaceholderSize = 8
	cfgVal.API.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMediaRoot overrides the media root (a directory or base URL).
func WithMediaRoot(root string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.MediaRoot = root
	}
}

// WithCache enables the SQLite media cache.
func WithCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Media.CacheEnabled = true
	}
}

// WithTextureGroup appends a texture group definition.
func WithTextureGroup(group config.TextureGroup) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TextureGroups = append(b.cfg.TextureGroups, group)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
