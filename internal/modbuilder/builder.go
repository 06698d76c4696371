package modbuilder

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"texgallery/internal/archive"
	"texgallery/internal/assets"
	"texgallery/internal/logging"
	"texgallery/internal/raster"
	"texgallery/internal/services"
)

// Settings configures mod pack output.
type Settings struct {
	Product          string
	Subsystem        string
	Folders          []string
	IncludeUnchanged bool
	JPEGQuality      int
	PlaceholderSize  int
	PlaceholderColor color.NRGBA
}

// Builder holds texture groups and their modification records.
type Builder struct {
	groups   []Group
	byName   map[string]int
	records  map[key]Record
	settings Settings
	logger   *slog.Logger
}

// New builds a Builder over groups.
func New(groups []Group, settings Settings, logger *slog.Logger) *Builder {
	byName := make(map[string]int, len(groups))
	for i, g := range groups {
		byName[g.Name] = i
	}
	return &Builder{
		groups:   groups,
		byName:   byName,
		records:  make(map[key]Record),
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "modbuilder"),
	}
}

// Groups returns the configured groups.
func (b *Builder) Groups() []Group {
	out := make([]Group, len(b.groups))
	copy(out, b.groups)
	return out
}

// Group looks up a group by name.
func (b *Builder) Group(name string) (Group, bool) {
	i, ok := b.byName[name]
	if !ok {
		return Group{}, false
	}
	return b.groups[i], true
}

func (b *Builder) target(group, filename string) (Group, File, error) {
	g, ok := b.Group(group)
	if !ok {
		return Group{}, File{}, services.Wrap(services.ErrNotFound, "modbuilder", "lookup", fmt.Sprintf("group %q", group), nil)
	}
	f, ok := g.Has(filename)
	if !ok {
		return Group{}, File{}, services.Wrap(services.ErrNotFound, "modbuilder", "lookup",
			fmt.Sprintf("file %q not in group %q", filename, group), nil)
	}
	if !g.Modifiable {
		return Group{}, File{}, services.Wrap(services.ErrValidation, "modbuilder", "modify",
			fmt.Sprintf("group %q is not modifiable", group), nil)
	}
	return g, f, nil
}

func (b *Builder) set(group, filename string, rec Record) {
	b.records[key{group, filename}] = rec
	b.logger.Debug("group record set",
		logging.String(logging.FieldGroup, group),
		logging.String("file", filename),
		logging.String("kind", string(rec.Kind)),
	)
}

// SetColor records a colour overlay, replacing any other record.
func (b *Builder) SetColor(group, filename, hex string) error {
	if _, _, err := b.target(group, filename); err != nil {
		return err
	}
	if _, err := raster.ParseColor(hex); err != nil {
		return err
	}
	b.set(group, filename, Record{Kind: KindColor, Color: hex})
	return nil
}

// SetSaturation records a saturation percentage. The group must support
// saturation.
func (b *Builder) SetSaturation(group, filename string, percent float64) error {
	g, _, err := b.target(group, filename)
	if err != nil {
		return err
	}
	if !g.SupportsSaturation {
		return services.Wrap(services.ErrValidation, "modbuilder", "saturation",
			fmt.Sprintf("group %q does not support saturation", group), nil)
	}
	if percent < 0 || math.IsNaN(percent) || math.IsInf(percent, 0) {
		return services.Wrap(services.ErrValidation, "modbuilder", "saturation",
			fmt.Sprintf("percent %v must be >= 0", percent), nil)
	}
	b.set(group, filename, Record{Kind: KindSaturation, Saturation: percent})
	return nil
}

// SetDrawing records a symmetric drawing overlay.
func (b *Builder) SetDrawing(group, filename string, d raster.Drawing) error {
	if _, _, err := b.target(group, filename); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}
	b.set(group, filename, Record{Kind: KindDrawing, Drawing: &d})
	return nil
}

// SetPattern records a pattern image to tile over the texture.
func (b *Builder) SetPattern(group, filename string, pattern *assets.Content) error {
	if _, _, err := b.target(group, filename); err != nil {
		return err
	}
	if pattern == nil {
		return services.Wrap(services.ErrValidation, "modbuilder", "pattern", "pattern is empty", nil)
	}
	img, _, err := raster.Decode(pattern.Bytes())
	if err != nil {
		return services.Wrap(services.ErrValidation, "modbuilder", "pattern", "pattern is not an image", err)
	}
	b.set(group, filename, Record{Kind: KindPattern, Pattern: pattern, pattern: img})
	return nil
}

// SetGreyPlaceholder records the grey placeholder substitution.
func (b *Builder) SetGreyPlaceholder(group, filename string) error {
	if _, _, err := b.target(group, filename); err != nil {
		return err
	}
	b.set(group, filename, Record{Kind: KindGreyPlaceholder})
	return nil
}

// Clear removes any record for the file.
func (b *Builder) Clear(group, filename string) error {
	if _, ok := b.Group(group); !ok {
		return services.Wrap(services.ErrNotFound, "modbuilder", "clear", fmt.Sprintf("group %q", group), nil)
	}
	delete(b.records, key{group, filename})
	return nil
}

// Record returns the record for a group file.
func (b *Builder) Record(group, filename string) (Record, bool) {
	rec, ok := b.records[key{group, filename}]
	return rec, ok
}

// Records lists the group's recorded files in group order.
func (b *Builder) Records(group string) []FileRecord {
	g, ok := b.Group(group)
	if !ok {
		return nil
	}
	var out []FileRecord
	for _, f := range g.Files {
		if rec, ok := b.records[key{group, f.Filename}]; ok {
			out = append(out, FileRecord{File: f, Record: rec})
		}
	}
	return out
}

// Directories are the fixed top-level folders of the mod pack.
func (b *Builder) Directories() []string {
	return b.settings.Folders
}

// Entries plans the mod pack archive entries for a group. Files with a
// record get it applied to their fetched original; unchanged files are
// copied as-is when IncludeUnchanged is set.
func (b *Builder) Entries(group string, fetcher assets.Fetcher) ([]archive.Entry, error) {
	g, ok := b.Group(group)
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "modbuilder", "entries", fmt.Sprintf("group %q", group), nil)
	}
	entries := make([]archive.Entry, 0, len(g.Files))
	for _, f := range g.Files {
		rec, modified := b.records[key{group, f.Filename}]
		if !modified && !b.settings.IncludeUnchanged {
			continue
		}
		entry := archive.Entry{
			Path:  archive.ModPackPath(b.settings.Product, b.settings.Subsystem, f.Folder, f.Filename),
			Label: g.Name + "/" + f.Folder + "/" + f.Filename,
		}
		if modified {
			entry.Resolve = func(ctx context.Context) (*assets.Content, error) {
				return b.render(ctx, f, rec, fetcher)
			}
		} else {
			entry.Resolve = func(ctx context.Context) (*assets.Content, error) {
				return fetchOriginal(ctx, f, fetcher)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func fetchOriginal(ctx context.Context, f File, fetcher assets.Fetcher) (*assets.Content, error) {
	if fetcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "modbuilder", "fetch", "no fetcher configured", nil)
	}
	return fetcher.Fetch(ctx, f.asset())
}

// render applies rec to the file's original. Grey placeholders need no
// original; drawings fall back to a grey surface when the original is
// unavailable.
func (b *Builder) render(ctx context.Context, f File, rec Record, fetcher assets.Fetcher) (*assets.Content, error) {
	if rec.Kind == KindGreyPlaceholder {
		img, err := raster.Flat(b.settings.PlaceholderSize, b.settings.PlaceholderSize, b.settings.PlaceholderColor)
		if err != nil {
			return nil, err
		}
		return b.encode(img, "image/png")
	}

	var base *image.NRGBA
	original, err := fetchOriginal(ctx, f, fetcher)
	if err == nil {
		base, _, err = raster.Decode(original.Bytes())
	}
	if err != nil {
		if rec.Kind == KindDrawing && rec.Drawing != nil {
			img, drawErr := raster.PlaceholderDrawing(*rec.Drawing, b.settings.PlaceholderSize, b.settings.PlaceholderColor)
			if drawErr != nil {
				return nil, drawErr
			}
			return b.encode(img, "image/png")
		}
		return nil, err
	}

	var out *image.NRGBA
	switch rec.Kind {
	case KindColor:
		c, perr := raster.ParseColor(rec.Color)
		if perr != nil {
			return nil, perr
		}
		out = raster.Overlay(base, c)
	case KindSaturation:
		out, err = raster.Saturate(base, rec.Saturation, raster.Rec601)
	case KindDrawing:
		out, err = raster.RenderDrawing(base, *rec.Drawing)
	case KindPattern:
		out, err = raster.Tile(base, rec.pattern)
	default:
		err = services.Wrap(services.ErrValidation, "modbuilder", "render", fmt.Sprintf("unknown record kind %q", rec.Kind), nil)
	}
	if err != nil {
		return nil, err
	}
	return b.encode(out, raster.OutputMIME(f.Type().MIME(f.Filename)))
}

func (b *Builder) encode(img image.Image, mimeType string) (*assets.Content, error) {
	data, err := raster.Encode(img, mimeType, b.settings.JPEGQuality)
	if err != nil {
		return nil, err
	}
	return assets.NewContent(data, mimeType), nil
}
