package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"texgallery/internal/services"
)

// Pen is the stroke tip shape.
type Pen string

const (
	PenRound  Pen = "round"
	PenSquare Pen = "square"
)

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one freehand segment drawn on the canvas.
type Stroke struct {
	Points []Point `json:"points"`
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
	Pen    Pen     `json:"pen,omitempty"`
}

// Drawing is a set of strokes recorded on a square canvas of CanvasSize
// pixels. Strokes are replicated with 4-way symmetry when rendered.
type Drawing struct {
	CanvasSize int      `json:"canvasSize"`
	Strokes    []Stroke `json:"strokes"`
}

// Validate checks canvas size, stroke colours and widths.
func (d Drawing) Validate() error {
	if d.CanvasSize < 1 || d.CanvasSize > MaxDimension {
		return services.Wrap(services.ErrValidation, "raster", "drawing",
			fmt.Sprintf("canvas size %d outside 1..%d", d.CanvasSize, MaxDimension), nil)
	}
	if len(d.Strokes) == 0 {
		return services.Wrap(services.ErrValidation, "raster", "drawing", "drawing has no strokes", nil)
	}
	for i, s := range d.Strokes {
		if len(s.Points) == 0 {
			return services.Wrap(services.ErrValidation, "raster", "drawing", fmt.Sprintf("stroke %d has no points", i), nil)
		}
		if s.Width <= 0 || s.Width > float64(d.CanvasSize) || math.IsNaN(s.Width) {
			return services.Wrap(services.ErrValidation, "raster", "drawing", fmt.Sprintf("stroke %d width %v invalid", i, s.Width), nil)
		}
		if _, err := ParseColor(s.Color); err != nil {
			return err
		}
		switch s.Pen {
		case "", PenRound, PenSquare:
		default:
			return services.Wrap(services.ErrValidation, "raster", "drawing", fmt.Sprintf("stroke %d pen %q unknown", i, s.Pen), nil)
		}
	}
	return nil
}

// Mirrored returns the drawing with every stroke followed by its reflections
// across the vertical axis, the horizontal axis, and both.
func (d Drawing) Mirrored() Drawing {
	size := float64(d.CanvasSize)
	out := Drawing{CanvasSize: d.CanvasSize, Strokes: make([]Stroke, 0, len(d.Strokes)*4)}
	reflect := func(s Stroke, fx, fy bool) Stroke {
		pts := make([]Point, len(s.Points))
		for i, p := range s.Points {
			if fx {
				p.X = size - p.X
			}
			if fy {
				p.Y = size - p.Y
			}
			pts[i] = p
		}
		s.Points = pts
		return s
	}
	for _, s := range d.Strokes {
		out.Strokes = append(out.Strokes,
			reflect(s, false, false),
			reflect(s, true, false),
			reflect(s, false, true),
			reflect(s, true, true),
		)
	}
	return out
}

// Layer rasterizes the mirrored drawing onto a transparent w×h surface,
// scaling canvas coordinates to the surface.
func (d Drawing) Layer(w, h int) (*image.NRGBA, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := checkDimensions(w, h); err != nil {
		return nil, err
	}
	dc := gg.NewContext(w, h)
	dc.Scale(float64(w)/float64(d.CanvasSize), float64(h)/float64(d.CanvasSize))
	dc.SetLineJoin(gg.LineJoinRound)
	for _, s := range d.Mirrored().Strokes {
		c, _ := ParseColor(s.Color)
		dc.SetColor(c)
		dc.SetLineWidth(s.Width)
		if s.Pen == PenSquare {
			dc.SetLineCap(gg.LineCapSquare)
		} else {
			dc.SetLineCap(gg.LineCapRound)
		}
		if len(s.Points) == 1 {
			p := s.Points[0]
			if s.Pen == PenSquare {
				dc.DrawRectangle(p.X-s.Width/2, p.Y-s.Width/2, s.Width, s.Width)
			} else {
				dc.DrawCircle(p.X, p.Y, s.Width/2)
			}
			dc.Fill()
			continue
		}
		dc.MoveTo(s.Points[0].X, s.Points[0].Y)
		for _, p := range s.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.Stroke()
	}
	return toNRGBA(dc.Image()), nil
}

// RenderDrawing composites the drawing over base.
func RenderDrawing(base *image.NRGBA, d Drawing) (*image.NRGBA, error) {
	layer, err := d.Layer(base.Rect.Dx(), base.Rect.Dy())
	if err != nil {
		return nil, err
	}
	out := clone(base)
	draw.Draw(out, out.Bounds(), layer, image.Point{}, draw.Over)
	return out, nil
}

// PlaceholderDrawing renders the drawing over a size×size surface of grey,
// used when the asset has no decodable base image.
func PlaceholderDrawing(d Drawing, size int, grey color.NRGBA) (*image.NRGBA, error) {
	base, err := Flat(size, size, grey)
	if err != nil {
		return nil, err
	}
	return RenderDrawing(base, d)
}
