package editor_test

import (
	"context"
	"errors"
	"image/color"
	"math"
	"testing"

	"texgallery/internal/assets"
	"texgallery/internal/editor"
	"texgallery/internal/raster"
	"texgallery/internal/services"
	"texgallery/internal/testsupport"
)

type stubFetcher struct {
	data map[string][]byte
}

func (f *stubFetcher) Fetch(_ context.Context, a *assets.Asset) (*assets.Content, error) {
	data, ok := f.data[a.ID()]
	if !ok {
		return nil, services.Wrap(services.ErrFetch, "stub", "fetch", a.ID(), errors.New("unreachable"))
	}
	return assets.NewContent(data, a.Type.MIME(a.Filename)), nil
}

var settings = editor.Settings{JPEGQuality: 90, PlaceholderSize: 4, PlaceholderColor: "#808080"}

func newFixture(t *testing.T) (*assets.Registry, *stubFetcher) {
	t.Helper()
	red := testsupport.PNG(t, 4, 4, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	reg := assets.Load(nil,
		assets.List{Type: assets.TypeJPG, Entries: []assets.CatalogEntry{{Folder: "cars", Filename: "paint.jpg"}}},
		assets.List{Type: assets.TypePNG, Entries: []assets.CatalogEntry{
			{Folder: "cars", Filename: "a.png"},
			{Folder: "cars", Filename: "b.png"},
			{Folder: "cars", Filename: "broken.png"},
		}},
		assets.List{Type: assets.TypeAudio, Entries: []assets.CatalogEntry{{Folder: "sfx", Filename: "horn.ogg"}}},
	)
	fetcher := &stubFetcher{data: map[string][]byte{
		"jpg/cars/paint.jpg": testsupport.JPEG(t, 4, 4, color.NRGBA{R: 30, G: 160, B: 30, A: 255}),
		"png/cars/a.png":     red,
		"png/cars/b.png":     red,
		"audio/sfx/horn.ogg": []byte("ogg"),
	}}
	return reg, fetcher
}

func lookup(t *testing.T, reg *assets.Registry, id string) *assets.Asset {
	t.Helper()
	a, ok := reg.LookupID(id)
	if !ok {
		t.Fatalf("asset %s missing", id)
	}
	return a
}

func TestBulkIsolatesFetchFailure(t *testing.T) {
	reg, fetcher := newFixture(t)
	coord := editor.NewCoordinator(reg, fetcher, settings, nil)
	var events []editor.Progress
	coord.SetProgressHandler(func(p editor.Progress) { events = append(events, p) })

	set := []*assets.Asset{
		lookup(t, reg, "png/cars/a.png"),
		lookup(t, reg, "png/cars/broken.png"),
		lookup(t, reg, "png/cars/b.png"),
	}
	report, err := coord.ApplyToSet(context.Background(), set, editor.NewSaturation(0))
	if err != nil {
		t.Fatalf("ApplyToSet: %v", err)
	}
	if report.Total != 3 || report.Applied != 2 || report.Failed != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	failures := report.Failures()
	if len(failures) != 1 || failures[0].AssetID != "png/cars/broken.png" || !errors.Is(failures[0].Err, services.ErrFetch) {
		t.Fatalf("unexpected failures %+v", failures)
	}
	if !set[0].IsModified() || !set[2].IsModified() || set[1].IsModified() {
		t.Fatal("unexpected modification flags")
	}
	if set[1].FetchErr() == nil {
		t.Fatal("failed asset should carry fetch error flag")
	}

	if len(events) != 3 || events[2].Processed != 3 || events[2].Total != 3 || events[1].Label != "broken.png" {
		t.Fatalf("unexpected progress %+v", events)
	}

	img, _, err := raster.Decode(set[0].Modified().Bytes())
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	px := img.NRGBAAt(0, 0)
	if px.R != px.G || px.G != px.B {
		t.Fatalf("expected greyscale result, got %+v", px)
	}
}

func TestCreateNewSharesOneHandle(t *testing.T) {
	reg, fetcher := newFixture(t)
	coord := editor.NewCoordinator(reg, fetcher, settings, nil)
	a := lookup(t, reg, "png/cars/a.png")
	b := lookup(t, reg, "png/cars/b.png")
	horn := lookup(t, reg, "audio/sfx/horn.ogg")

	op := &editor.CreateNew{Width: 2, Height: 2, Color: "#00ff00"}
	report, err := coord.ApplyToSet(context.Background(), []*assets.Asset{a, horn, b}, op)
	if err != nil {
		t.Fatalf("ApplyToSet: %v", err)
	}
	if report.Excluded != 1 || report.Applied != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if horn.IsNew() {
		t.Fatal("audio must be excluded from image operations")
	}
	if a.Replacement() != op.Shared() || b.Replacement() != op.Shared() {
		t.Fatal("every target should reference the shared content")
	}
	tracker := reg.Machine().Tracker()
	if tracker.Refs(op.Shared()) != 2 {
		t.Fatalf("expected 2 refs, got %d", tracker.Refs(op.Shared()))
	}

	if _, err := coord.ApplyOne(context.Background(), a, &editor.Tint{Color: "#ff0000"}); err != nil {
		t.Fatalf("ApplyOne: %v", err)
	}
	if b.Replacement() != op.Shared() || !b.IsNew() {
		t.Fatal("editing one asset must not affect the other")
	}
	if !a.IsModified() || a.IsNew() {
		t.Fatal("tinting a replaced asset should move it to modified")
	}
	if tracker.Refs(op.Shared()) != 1 {
		t.Fatalf("expected 1 ref after edit, got %d", tracker.Refs(op.Shared()))
	}
}

func TestValidationAbortsBeforeCommit(t *testing.T) {
	reg, fetcher := newFixture(t)
	coord := editor.NewCoordinator(reg, fetcher, settings, nil)
	a := lookup(t, reg, "png/cars/a.png")
	coord.EnterMultiSelect()
	reg.SetSelected(a, true)

	cases := []editor.Operation{
		editor.NewSaturation(-1),
		editor.NewSaturation(math.NaN()),
		editor.NewSaturation(math.Inf(1)),
		&editor.Tint{Color: "#nothex"},
		&editor.CreateNew{Width: 0, Height: 4, Color: "#fff"},
		&editor.CreateNew{Width: raster.MaxDimension + 1, Height: 4, Color: "#fff"},
		&editor.Draw{Drawing: raster.Drawing{CanvasSize: 10}},
	}
	for _, op := range cases {
		if _, err := coord.ApplyToSelection(context.Background(), op); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%s: expected validation failure, got %v", op.Name(), err)
		}
	}
	if a.IsModified() || a.IsNew() || a.Original() != nil {
		t.Fatal("nothing may be fetched or committed on validation failure")
	}
	if !coord.MultiSelect() || len(reg.Selection()) != 1 {
		t.Fatal("selection should survive a rejected run")
	}
}

func TestApplyToSelectionExitsMultiSelect(t *testing.T) {
	reg, fetcher := newFixture(t)
	coord := editor.NewCoordinator(reg, fetcher, settings, nil)
	coord.EnterMultiSelect()
	for _, id := range []string{"png/cars/a.png", "jpg/cars/paint.jpg", "audio/sfx/horn.ogg"} {
		reg.SetSelected(lookup(t, reg, id), true)
	}

	report, err := coord.ApplyToSelection(context.Background(), &editor.GreyPlaceholder{Size: 4, Color: "#808080"})
	if err != nil {
		t.Fatalf("ApplyToSelection: %v", err)
	}
	if report.Applied != 2 || report.Excluded != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if coord.MultiSelect() || len(reg.Selection()) != 0 {
		t.Fatal("bulk run should exit multi-select and clear the selection")
	}
}

func TestJPEGAssetsStayJPEG(t *testing.T) {
	reg, fetcher := newFixture(t)
	coord := editor.NewCoordinator(reg, fetcher, settings, nil)
	paint := lookup(t, reg, "jpg/cars/paint.jpg")

	if _, err := coord.ApplyOne(context.Background(), paint, editor.NewSaturation(150)); err != nil {
		t.Fatalf("ApplyOne: %v", err)
	}
	if paint.Modified().MIME() != "image/jpeg" {
		t.Fatalf("expected jpeg output, got %s", paint.Modified().MIME())
	}
	if _, format, err := raster.Decode(paint.Modified().Bytes()); err != nil || format != "jpeg" {
		t.Fatalf("decode: format=%s err=%v", format, err)
	}
}

func TestDecodeFailureIsIsolated(t *testing.T) {
	reg, fetcher := newFixture(t)
	fetcher.data["png/cars/broken.png"] = []byte("garbage")
	coord := editor.NewCoordinator(reg, fetcher, settings, nil)

	_, err := coord.ApplyOne(context.Background(), lookup(t, reg, "png/cars/broken.png"), &editor.Tint{Color: "#fff"})
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected decode failure, got %v", err)
	}
}

func TestDrawFallsBackToPlaceholderSurface(t *testing.T) {
	reg, fetcher := newFixture(t)
	coord := editor.NewCoordinator(reg, fetcher, settings, nil)
	broken := lookup(t, reg, "png/cars/broken.png")
	a := lookup(t, reg, "png/cars/a.png")

	op, err := editor.NewOperation(editor.Request{
		Operation: "draw",
		Drawing: &raster.Drawing{CanvasSize: 4, Strokes: []raster.Stroke{{
			Points: []raster.Point{{X: 0, Y: 0}}, Color: "#000", Width: 1,
		}}},
	}, settings)
	if err != nil {
		t.Fatalf("NewOperation: %v", err)
	}
	report, err := coord.ApplyToSet(context.Background(), []*assets.Asset{broken, a}, op)
	if err != nil {
		t.Fatalf("ApplyToSet: %v", err)
	}
	if report.Applied != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if !broken.IsNew() {
		t.Fatal("drawing without a base should replace content")
	}
	if !a.IsModified() {
		t.Fatal("drawing over a base should modify content")
	}
}

func TestRevertClearsEdits(t *testing.T) {
	reg, fetcher := newFixture(t)
	coord := editor.NewCoordinator(reg, fetcher, settings, nil)
	a := lookup(t, reg, "png/cars/a.png")
	if _, err := coord.ApplyOne(context.Background(), a, &editor.GreyPlaceholder{Size: 2, Color: "#808080"}); err != nil {
		t.Fatal(err)
	}
	if _, err := coord.ApplyOne(context.Background(), a, editor.Revert{}); err != nil {
		t.Fatal(err)
	}
	if a.IsNew() || a.IsModified() || a.Replacement() != nil {
		t.Fatal("revert should clear edits")
	}
	if reg.Machine().Tracker().Live() != 0 {
		t.Fatalf("expected no live handles, got %d", reg.Machine().Tracker().Live())
	}
}

func TestApplyOneRejectsAudio(t *testing.T) {
	reg, fetcher := newFixture(t)
	coord := editor.NewCoordinator(reg, fetcher, settings, nil)
	_, err := coord.ApplyOne(context.Background(), lookup(t, reg, "audio/sfx/horn.ogg"), editor.NewSaturation(50))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}
