package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateModPack(); err != nil {
		return err
	}
	if err := c.validateTextureGroups(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.JPGList == "" && c.Catalog.PNGList == "" && c.Catalog.AudioList == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/texgallery/config.toml"
		}
		return fmt.Errorf("catalog: at least one of jpg_list, png_list, audio_list must be set (edit %s, create with 'texgallery config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.JPEGQuality < 1 || c.Export.JPEGQuality > 100 {
		return errors.New("export.jpeg_quality must be between 1 and 100")
	}
	if c.Export.PlaceholderSize < 1 || c.Export.PlaceholderSize > MaxImageDimension {
		return fmt.Errorf("export.placeholder_size must be between 1 and %d", MaxImageDimension)
	}
	if !validHexColor(c.Export.PlaceholderGrey) {
		return fmt.Errorf("export.placeholder_color %q is not a #RRGGBB colour", c.Export.PlaceholderGrey)
	}
	return nil
}

func (c *Config) validateModPack() error {
	if c.ModPack.Product == "" {
		return errors.New("modpack.product must be set")
	}
	if c.ModPack.Subsystem == "" {
		return errors.New("modpack.subsystem must be set")
	}
	for _, folder := range c.ModPack.Folders {
		if strings.Contains(folder, "..") {
			return fmt.Errorf("modpack.folders: %q must not contain '..'", folder)
		}
	}
	return nil
}

func (c *Config) validateTextureGroups() error {
	seen := make(map[string]struct{}, len(c.TextureGroups))
	for i, group := range c.TextureGroups {
		if group.Name == "" {
			return fmt.Errorf("texture_groups[%d].name must be set", i)
		}
		if _, ok := seen[group.Name]; ok {
			return fmt.Errorf("texture_groups: duplicate group name %q", group.Name)
		}
		seen[group.Name] = struct{}{}
		for _, file := range group.Files {
			folder, filename, ok := strings.Cut(file, "/")
			if !ok || folder == "" || filename == "" || strings.Contains(filename, "/") {
				return fmt.Errorf("texture_groups %q: file %q must be written as folder/filename", group.Name, file)
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func validHexColor(value string) bool {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(value) != 6 {
		return false
	}
	_, err := hex.DecodeString(value)
	return err == nil
}
