package modbuilder

import (
	"fmt"
	"path"
	"strings"

	"texgallery/internal/assets"
	"texgallery/internal/config"
	"texgallery/internal/raster"
	"texgallery/internal/services"
)

// File is one member of a texture group.
type File struct {
	Folder   string `json:"folder"`
	Filename string `json:"filename"`
}

// Type infers the media type from the filename extension.
func (f File) Type() assets.MediaType {
	switch strings.ToLower(path.Ext(f.Filename)) {
	case ".jpg", ".jpeg":
		return assets.TypeJPG
	default:
		return assets.TypePNG
	}
}

// asset builds a transient asset used only to fetch the file's original.
func (f File) asset() *assets.Asset {
	return &assets.Asset{Folder: f.Folder, Filename: f.Filename, Type: f.Type()}
}

// Group is a configured texture group.
type Group struct {
	Name               string `json:"name"`
	Modifiable         bool   `json:"modifiable"`
	SupportsSaturation bool   `json:"supportsSaturation"`
	Files              []File `json:"files"`
}

// Has reports whether filename belongs to the group.
func (g Group) Has(filename string) (File, bool) {
	for _, f := range g.Files {
		if f.Filename == filename {
			return f, true
		}
	}
	return File{}, false
}

// Groups converts configured texture groups, preserving configuration order.
func Groups(cfg *config.Config) ([]Group, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "modbuilder", "groups", "config is nil", nil)
	}
	out := make([]Group, 0, len(cfg.TextureGroups))
	for _, tg := range cfg.TextureGroups {
		g := Group{Name: tg.Name, Modifiable: tg.Modifiable, SupportsSaturation: tg.SupportsSaturation}
		for _, entry := range tg.Files {
			folder, filename, ok := strings.Cut(entry, "/")
			if !ok || folder == "" || filename == "" {
				return nil, services.Wrap(services.ErrConfiguration, "modbuilder", "groups",
					fmt.Sprintf("group %q file %q must be folder/filename", tg.Name, entry), nil)
			}
			g.Files = append(g.Files, File{Folder: folder, Filename: filename})
		}
		out = append(out, g)
	}
	return out, nil
}

// SettingsFromConfig derives mod pack settings from configuration.
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	grey, err := raster.ParseColor(cfg.Export.PlaceholderGrey)
	if err != nil {
		return Settings{}, services.Wrap(services.ErrConfiguration, "modbuilder", "settings", "export.placeholder_color", err)
	}
	return Settings{
		Product:          cfg.ModPack.Product,
		Subsystem:        cfg.ModPack.Subsystem,
		Folders:          cfg.ModPack.Folders,
		IncludeUnchanged: cfg.ModPack.IncludeUnchanged,
		JPEGQuality:      cfg.Export.JPEGQuality,
		PlaceholderSize:  cfg.Export.PlaceholderSize,
		PlaceholderColor: grey,
	}, nil
}
