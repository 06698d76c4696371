package raster_test

import (
	"errors"
	"image/color"
	"testing"

	"texgallery/internal/raster"
	"texgallery/internal/services"
	"texgallery/internal/testsupport"
)

func TestMirroredProducesFourWaySymmetry(t *testing.T) {
	d := raster.Drawing{CanvasSize: 100, Strokes: []raster.Stroke{{
		Points: []raster.Point{{X: 10, Y: 20}, {X: 30, Y: 40}},
		Color:  "#ff0000",
		Width:  2,
	}}}
	m := d.Mirrored()
	if len(m.Strokes) != 4 {
		t.Fatalf("expected 4 strokes, got %d", len(m.Strokes))
	}
	want := [][2]raster.Point{
		{{X: 10, Y: 20}, {X: 30, Y: 40}},
		{{X: 90, Y: 20}, {X: 70, Y: 40}},
		{{X: 10, Y: 80}, {X: 30, Y: 60}},
		{{X: 90, Y: 80}, {X: 70, Y: 60}},
	}
	for i, s := range m.Strokes {
		if s.Points[0] != want[i][0] || s.Points[1] != want[i][1] {
			t.Fatalf("stroke %d = %+v, want %+v", i, s.Points, want[i])
		}
	}
	if d.Strokes[0].Points[0] != (raster.Point{X: 10, Y: 20}) {
		t.Fatal("Mirrored must not mutate the source drawing")
	}
}

func TestRenderDrawingPaintsAllQuadrants(t *testing.T) {
	base := testsupport.SolidImage(64, 64, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	d := raster.Drawing{CanvasSize: 64, Strokes: []raster.Stroke{{
		Points: []raster.Point{{X: 8, Y: 8}},
		Color:  "#000000",
		Width:  6,
	}}}
	out, err := raster.RenderDrawing(base, d)
	if err != nil {
		t.Fatalf("RenderDrawing: %v", err)
	}
	for _, p := range [][2]int{{8, 8}, {56, 8}, {8, 56}, {56, 56}} {
		if got := out.NRGBAAt(p[0], p[1]); got.R > 64 {
			t.Fatalf("expected dark pixel at %v, got %+v", p, got)
		}
	}
	if got := out.NRGBAAt(32, 32); got.R != 255 {
		t.Fatalf("centre should be untouched, got %+v", got)
	}
	if base.NRGBAAt(8, 8).R != 255 {
		t.Fatal("base must not be mutated")
	}
}

func TestPlaceholderDrawingUsesGreySurface(t *testing.T) {
	grey := color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	d := raster.Drawing{CanvasSize: 10, Strokes: []raster.Stroke{{
		Points: []raster.Point{{X: 1, Y: 1}}, Color: "#fff", Width: 1, Pen: raster.PenSquare,
	}}}
	out, err := raster.PlaceholderDrawing(d, 20, grey)
	if err != nil {
		t.Fatalf("PlaceholderDrawing: %v", err)
	}
	if out.Rect.Dx() != 20 {
		t.Fatalf("unexpected size %v", out.Rect)
	}
	if got := out.NRGBAAt(10, 10); got != grey {
		t.Fatalf("centre should stay grey, got %+v", got)
	}
}

func TestDrawingValidate(t *testing.T) {
	valid := raster.Stroke{Points: []raster.Point{{X: 1, Y: 1}}, Color: "#000", Width: 1}
	cases := []raster.Drawing{
		{CanvasSize: 0, Strokes: []raster.Stroke{valid}},
		{CanvasSize: 10},
		{CanvasSize: 10, Strokes: []raster.Stroke{{Color: "#000", Width: 1}}},
		{CanvasSize: 10, Strokes: []raster.Stroke{{Points: valid.Points, Color: "nope", Width: 1}}},
		{CanvasSize: 10, Strokes: []raster.Stroke{{Points: valid.Points, Color: "#000", Width: 0}}},
		{CanvasSize: 10, Strokes: []raster.Stroke{{Points: valid.Points, Color: "#000", Width: 1, Pen: "star"}}},
	}
	for i, d := range cases {
		if err := d.Validate(); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("case %d: expected validation failure, got %v", i, err)
		}
	}
}
