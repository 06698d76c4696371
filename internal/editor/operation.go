package editor

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"texgallery/internal/assets"
	"texgallery/internal/raster"
	"texgallery/internal/services"
)

// Commit selects the state machine transition for a result.
type Commit int

const (
	CommitModify Commit = iota
	CommitReplace
	CommitRevert
)

func (c Commit) String() string {
	switch c {
	case CommitReplace:
		return "replace"
	case CommitRevert:
		return "revert"
	default:
		return "modify"
	}
}

// Input is the asset's current effective content, decoded.
type Input struct {
	Content *assets.Content
	Image   *image.NRGBA
}

// Result is what an operation produced for one asset. Image results are
// encoded by the coordinator in the asset's own format; Content results are
// committed as-is.
type Result struct {
	Commit  Commit
	Image   *image.NRGBA
	Content *assets.Content
}

// Operation is one edit kind.
type Operation interface {
	Name() string
	// ImageOnly operations silently skip audio assets.
	ImageOnly() bool
	// NeedsInput operations receive the resolved and decoded effective content.
	NeedsInput() bool
	// Prepare validates parameters before any asset is touched.
	Prepare(ctx context.Context) error
	Apply(ctx context.Context, a *assets.Asset, in Input) (Result, error)
}

// inputOptional is implemented by operations that can run without a base
// image when resolving or decoding it fails.
type inputOptional interface {
	InputOptional() bool
}

// Saturation scales colour saturation by Percent.
type Saturation struct {
	Percent float64
	Preset  raster.Preset
}

// NewSaturation returns a saturation edit using the editor's Rec709 weights.
func NewSaturation(percent float64) *Saturation {
	return &Saturation{Percent: percent, Preset: raster.Rec709}
}

func (s *Saturation) Name() string     { return "saturation" }
func (s *Saturation) ImageOnly() bool  { return true }
func (s *Saturation) NeedsInput() bool { return true }

func (s *Saturation) Prepare(context.Context) error {
	if s.Percent < 0 || math.IsNaN(s.Percent) || math.IsInf(s.Percent, 0) {
		return services.Wrap(services.ErrValidation, "editor", s.Name(), fmt.Sprintf("percent %v must be finite and >= 0", s.Percent), nil)
	}
	if s.Preset.Name == "" {
		s.Preset = raster.Rec709
	}
	return nil
}

func (s *Saturation) Apply(_ context.Context, _ *assets.Asset, in Input) (Result, error) {
	img, err := raster.Saturate(in.Image, s.Percent, s.Preset)
	if err != nil {
		return Result{}, err
	}
	return Result{Commit: CommitModify, Image: img}, nil
}

// Tint overlays a solid colour atop the image.
type Tint struct {
	Color string

	parsed color.NRGBA
}

func (t *Tint) Name() string     { return "tint" }
func (t *Tint) ImageOnly() bool  { return true }
func (t *Tint) NeedsInput() bool { return true }

func (t *Tint) Prepare(context.Context) error {
	c, err := raster.ParseColor(t.Color)
	if err != nil {
		return err
	}
	t.parsed = c
	return nil
}

func (t *Tint) Apply(_ context.Context, _ *assets.Asset, in Input) (Result, error) {
	return Result{Commit: CommitModify, Image: raster.Overlay(in.Image, t.parsed)}, nil
}

// Draw composites a symmetric drawing over the image. When the asset has no
// usable base image the drawing lands on a grey placeholder surface and the
// result replaces the asset's content.
type Draw struct {
	Drawing         raster.Drawing
	PlaceholderSize int
	Placeholder     color.NRGBA
}

func (d *Draw) Name() string        { return "draw" }
func (d *Draw) ImageOnly() bool     { return true }
func (d *Draw) NeedsInput() bool    { return true }
func (d *Draw) InputOptional() bool { return true }

func (d *Draw) Prepare(context.Context) error {
	return d.Drawing.Validate()
}

func (d *Draw) Apply(_ context.Context, _ *assets.Asset, in Input) (Result, error) {
	if in.Image == nil {
		img, err := raster.PlaceholderDrawing(d.Drawing, d.PlaceholderSize, d.Placeholder)
		if err != nil {
			return Result{}, err
		}
		return Result{Commit: CommitReplace, Image: img}, nil
	}
	img, err := raster.RenderDrawing(in.Image, d.Drawing)
	if err != nil {
		return Result{}, err
	}
	return Result{Commit: CommitModify, Image: img}, nil
}

// CreateNew replaces every target with one shared flat texture.
type CreateNew struct {
	Width  int
	Height int
	Color  string

	shared *assets.Content
}

func (c *CreateNew) Name() string     { return "create_new" }
func (c *CreateNew) ImageOnly() bool  { return true }
func (c *CreateNew) NeedsInput() bool { return false }

func (c *CreateNew) Prepare(context.Context) error {
	content, err := flatContent(c.Width, c.Height, c.Color)
	if err != nil {
		return err
	}
	c.shared = content
	return nil
}

func (c *CreateNew) Apply(context.Context, *assets.Asset, Input) (Result, error) {
	return Result{Commit: CommitReplace, Content: c.shared}, nil
}

// Shared returns the content computed by Prepare.
func (c *CreateNew) Shared() *assets.Content { return c.shared }

// GreyPlaceholder replaces every target with one shared grey square of the
// canonical placeholder size.
type GreyPlaceholder struct {
	Size  int
	Color string

	shared *assets.Content
}

func (g *GreyPlaceholder) Name() string     { return "grey_placeholder" }
func (g *GreyPlaceholder) ImageOnly() bool  { return true }
func (g *GreyPlaceholder) NeedsInput() bool { return false }

func (g *GreyPlaceholder) Prepare(context.Context) error {
	content, err := flatContent(g.Size, g.Size, g.Color)
	if err != nil {
		return err
	}
	g.shared = content
	return nil
}

func (g *GreyPlaceholder) Apply(context.Context, *assets.Asset, Input) (Result, error) {
	return Result{Commit: CommitReplace, Content: g.shared}, nil
}

// Revert discards any edit and returns the asset to its original content.
type Revert struct{}

func (Revert) Name() string                  { return "revert" }
func (Revert) ImageOnly() bool               { return false }
func (Revert) NeedsInput() bool              { return false }
func (Revert) Prepare(context.Context) error { return nil }

func (Revert) Apply(context.Context, *assets.Asset, Input) (Result, error) {
	return Result{Commit: CommitRevert}, nil
}

func flatContent(w, h int, hex string) (*assets.Content, error) {
	c, err := raster.ParseColor(hex)
	if err != nil {
		return nil, err
	}
	img, err := raster.Flat(w, h, c)
	if err != nil {
		return nil, err
	}
	data, err := raster.Encode(img, "image/png", 0)
	if err != nil {
		return nil, err
	}
	return assets.NewContent(data, "image/png"), nil
}
