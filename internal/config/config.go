package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	MediaRoot string `toml:"media_root"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	CacheDir  string `toml:"cache_dir"`
}

// Catalog names the three line-oriented asset lists, resolved relative to the
// media root.
type Catalog struct {
	JPGList   string `toml:"jpg_list"`
	PNGList   string `toml:"png_list"`
	AudioList string `toml:"audio_list"`
}

// Media contains configuration for fetching raw asset bytes.
type Media struct {
	FetchTimeout int  `toml:"fetch_timeout"`
	Prefetch     bool `toml:"prefetch"`
	CacheEnabled bool `toml:"cache_enabled"`
}

// Export contains configuration for the download-all archive and generated
// placeholder content.
type Export struct {
	ArchivePrefix   string `toml:"archive_prefix"`
	Timestamped     bool   `toml:"timestamped"`
	JPEGQuality     int    `toml:"jpeg_quality"`
	PlaceholderSize int    `toml:"placeholder_size"`
	PlaceholderGrey string `toml:"placeholder_color"`
}

// ModPack contains configuration for the custom pack layout consumed by the
// game client.
type ModPack struct {
	Product          string   `toml:"product"`
	Subsystem        string   `toml:"subsystem"`
	Folders          []string `toml:"folders"`
	ArchivePrefix    string   `toml:"archive_prefix"`
	IncludeUnchanged bool     `toml:"include_unchanged"`
}

// TextureGroup is a statically configured bundle of files that share one
// mod builder session. Files are written as "folder/filename".
type TextureGroup struct {
	Name               string   `toml:"name"`
	Modifiable         bool     `toml:"modifiable"`
	SupportsSaturation bool     `toml:"supports_saturation"`
	Files              []string `toml:"files"`
}

// API contains configuration for the HTTP API served to the browser UI.
type API struct {
	Bind           string   `toml:"bind"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for texgallery.
//
// Configuration sections by subsystem:
//   - Paths: media root, export output, logs, cache
//   - Catalog: asset list sources
//   - Media: fetch timeout, prefetch, on-disk fetch cache
//   - Export: download-all archive naming and generated placeholders
//   - ModPack: custom pack layout
//   - TextureGroups: mod builder groups
//   - API: browser-facing HTTP API
//   - Logging: log format and level
type Config struct {
	Paths         Paths          `toml:"paths"`
	Catalog       Catalog        `toml:"catalog"`
	Media         Media          `toml:"media"`
	Export        Export         `toml:"export"`
	ModPack       ModPack        `toml:"modpack"`
	TextureGroups []TextureGroup `toml:"texture_groups"`
	API           API            `toml:"api"`
	Logging       Logging        `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/texgallery/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("texgallery.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the CLI and daemon write into.
// The media root is never created; it is read-only input.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Media.CacheEnabled && strings.TrimSpace(c.Paths.CacheDir) != "" {
		if err := os.MkdirAll(c.Paths.CacheDir, 0o755); err != nil {
			return fmt.Errorf("create cache directory %q: %w", c.Paths.CacheDir, err)
		}
	}
	return nil
}

// RemoteMedia reports whether the media root is an http(s) base URL rather
// than a local directory.
func (c *Config) RemoteMedia() bool {
	return isRemote(c.Paths.MediaRoot)
}

// TextureGroup returns the configured group with the given name.
func (c *Config) TextureGroup(name string) (TextureGroup, bool) {
	name = strings.TrimSpace(name)
	for _, group := range c.TextureGroups {
		if group.Name == name {
			return group, true
		}
	}
	return TextureGroup{}, false
}

func isRemote(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
