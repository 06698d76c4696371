package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeMedia()
	c.normalizeExport()
	c.normalizeModPack()
	c.normalizeTextureGroups()
	c.normalizeAPI()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("TEXGALLERY_MEDIA_ROOT"); ok && strings.TrimSpace(value) != "" {
		c.Paths.MediaRoot = value
	}
	c.Paths.MediaRoot = strings.TrimSpace(c.Paths.MediaRoot)
	if c.Paths.MediaRoot == "" {
		c.Paths.MediaRoot = defaultMediaRoot
	}

	var err error
	if isRemote(c.Paths.MediaRoot) {
		c.Paths.MediaRoot = strings.TrimRight(c.Paths.MediaRoot, "/")
	} else if c.Paths.MediaRoot, err = expandPath(c.Paths.MediaRoot); err != nil {
		return fmt.Errorf("paths.media_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	c.Catalog.JPGList = strings.TrimSpace(c.Catalog.JPGList)
	c.Catalog.PNGList = strings.TrimSpace(c.Catalog.PNGList)
	c.Catalog.AudioList = strings.TrimSpace(c.Catalog.AudioList)
}

func (c *Config) normalizeMedia() {
	if c.Media.FetchTimeout <= 0 {
		c.Media.FetchTimeout = defaultFetchTimeout
	}
}

func (c *Config) normalizeExport() {
	c.Export.ArchivePrefix = strings.TrimSpace(c.Export.ArchivePrefix)
	if c.Export.ArchivePrefix == "" {
		c.Export.ArchivePrefix = defaultArchivePrefix
	}
	if c.Export.JPEGQuality == 0 {
		c.Export.JPEGQuality = defaultJPEGQuality
	}
	if c.Export.PlaceholderSize == 0 {
		c.Export.PlaceholderSize = defaultPlaceholderSize
	}
	c.Export.PlaceholderGrey = strings.TrimSpace(c.Export.PlaceholderGrey)
	if c.Export.PlaceholderGrey == "" {
		c.Export.PlaceholderGrey = defaultPlaceholderGrey
	}
}

func (c *Config) normalizeModPack() {
	c.ModPack.Product = strings.Trim(strings.TrimSpace(c.ModPack.Product), "/")
	c.ModPack.Subsystem = strings.Trim(strings.TrimSpace(c.ModPack.Subsystem), "/")
	c.ModPack.ArchivePrefix = strings.TrimSpace(c.ModPack.ArchivePrefix)
	if c.ModPack.ArchivePrefix == "" {
		c.ModPack.ArchivePrefix = defaultModPackPrefix
	}
	folders := make([]string, 0, len(c.ModPack.Folders))
	for _, folder := range c.ModPack.Folders {
		folder = strings.Trim(strings.TrimSpace(folder), "/")
		if folder != "" {
			folders = append(folders, folder)
		}
	}
	c.ModPack.Folders = folders
}

func (c *Config) normalizeTextureGroups() {
	for i := range c.TextureGroups {
		group := &c.TextureGroups[i]
		group.Name = strings.TrimSpace(group.Name)
		files := make([]string, 0, len(group.Files))
		for _, file := range group.Files {
			file = strings.Trim(strings.TrimSpace(file), "/")
			if file != "" {
				files = append(files, file)
			}
		}
		group.Files = files
	}
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	origins := make([]string, 0, len(c.API.AllowedOrigins))
	for _, origin := range c.API.AllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	c.API.AllowedOrigins = origins
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
