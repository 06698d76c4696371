package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"texgallery/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("TEXGALLERY_MEDIA_ROOT", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantMedia := filepath.Join(tempHome, ".local", "share", "texgallery", "media")
	if cfg.Paths.MediaRoot != wantMedia {
		t.Fatalf("unexpected media root: got %q want %q", cfg.Paths.MediaRoot, wantMedia)
	}
	if cfg.API.Bind != "127.0.0.1:7788" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if cfg.Export.PlaceholderSize != 1024 {
		t.Fatalf("unexpected placeholder size: %d", cfg.Export.PlaceholderSize)
	}
	if cfg.Export.PlaceholderGrey != "#808080" {
		t.Fatalf("unexpected placeholder colour: %q", cfg.Export.PlaceholderGrey)
	}
	if cfg.RemoteMedia() {
		t.Fatal("expected local media root by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if _, err := os.Stat(cfg.Paths.MediaRoot); !os.IsNotExist(err) {
		t.Fatalf("media root must not be created, stat err=%v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "texgallery.toml")

	type group struct {
		Name               string   `toml:"name"`
		Modifiable         bool     `toml:"modifiable"`
		SupportsSaturation bool     `toml:"supports_saturation"`
		Files              []string `toml:"files"`
	}
	type payload struct {
		Paths struct {
			MediaRoot string `toml:"media_root"`
		} `toml:"paths"`
		Export struct {
			JPEGQuality int `toml:"jpeg_quality"`
		} `toml:"export"`
		TextureGroups []group `toml:"texture_groups"`
	}
	custom := payload{}
	custom.Paths.MediaRoot = "https://cdn.example.com/media/"
	custom.Export.JPEGQuality = 80
	custom.TextureGroups = []group{{Name: " cars ", Modifiable: true, Files: []string{" cars/body.png ", ""}}}

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if !cfg.RemoteMedia() {
		t.Fatal("expected remote media root")
	}
	if cfg.Paths.MediaRoot != "https://cdn.example.com/media" {
		t.Fatalf("unexpected media root: %q", cfg.Paths.MediaRoot)
	}
	if cfg.Export.JPEGQuality != 80 {
		t.Fatalf("unexpected jpeg quality: %d", cfg.Export.JPEGQuality)
	}
	tg, ok := cfg.TextureGroup("cars")
	if !ok {
		t.Fatal("expected cars group")
	}
	if len(tg.Files) != 1 || tg.Files[0] != "cars/body.png" {
		t.Fatalf("unexpected group files: %v", tg.Files)
	}
}

func TestMediaRootEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	media := t.TempDir()
	t.Setenv("TEXGALLERY_MEDIA_ROOT", media)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.MediaRoot != media {
		t.Fatalf("expected env media root, got %q", cfg.Paths.MediaRoot)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"jpeg quality", func(c *config.Config) { c.Export.JPEGQuality = 101 }, "jpeg_quality"},
		{"placeholder size", func(c *config.Config) { c.Export.PlaceholderSize = 0 }, "placeholder_size"},
		{"placeholder colour", func(c *config.Config) { c.Export.PlaceholderGrey = "grey" }, "placeholder_color"},
		{"no catalog", func(c *config.Config) {
			c.Catalog = config.Catalog{}
		}, "catalog"},
		{"product", func(c *config.Config) { c.ModPack.Product = "" }, "modpack.product"},
		{"duplicate group", func(c *config.Config) {
			c.TextureGroups = []config.TextureGroup{{Name: "a"}, {Name: "a"}}
		}, "duplicate"},
		{"bad group file", func(c *config.Config) {
			c.TextureGroups = []config.TextureGroup{{Name: "a", Files: []string{"body.png"}}}
		}, "folder/filename"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if len(cfg.ModPack.Folders) != 2 {
		t.Fatalf("expected sample modpack folders, got %v", cfg.ModPack.Folders)
	}
}
