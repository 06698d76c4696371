package session_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"texgallery/internal/assets"
	"texgallery/internal/services"
	"texgallery/internal/session"
)

func newRegistry() *assets.Registry {
	return assets.Load(nil,
		assets.List{Type: assets.TypeJPG, Entries: []assets.CatalogEntry{{Folder: "cars", Filename: "paint.jpg"}}},
		assets.List{Type: assets.TypePNG, Entries: []assets.CatalogEntry{
			{Folder: "cars", Filename: "body.png"},
			{Folder: "ui", Filename: "logo.png"},
			{Folder: "ui", Filename: "frame.png"},
		}},
	)
}

func mustLookup(t *testing.T, reg *assets.Registry, kind assets.MediaType, folder, filename string) *assets.Asset {
	t.Helper()
	a, ok := reg.LookupType(kind, folder, filename)
	if !ok {
		t.Fatalf("asset %s/%s missing", folder, filename)
	}
	return a
}

func TestRoundTripRestoresState(t *testing.T) {
	src := newRegistry()
	m := src.Machine()
	body := mustLookup(t, src, assets.TypePNG, "cars", "body.png")
	paint := mustLookup(t, src, assets.TypeJPG, "cars", "paint.jpg")
	logo := mustLookup(t, src, assets.TypePNG, "ui", "logo.png")

	m.SetOriginal(body, assets.NewContent([]byte("orig"), "image/png"))
	if err := m.ApplyModification(body, assets.NewContent([]byte("edited"), "image/png")); err != nil {
		t.Fatal(err)
	}
	grey := assets.NewContent([]byte("grey"), "image/png")
	if err := m.ApplyReplacement(paint, grey); err != nil {
		t.Fatal(err)
	}
	if err := m.ApplyReplacement(logo, grey); err != nil {
		t.Fatal(err)
	}

	doc := session.Serialize(src)
	if len(doc) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(doc))
	}
	if doc[0].Filename != "paint.jpg" || doc[1].Filename != "body.png" || doc[2].Filename != "logo.png" {
		t.Fatalf("entries not in registry order: %+v", doc)
	}
	if doc[1].ModifiedContentBase64 == "" || doc[1].NewContentBase64 != "" || !doc[1].IsModified {
		t.Fatalf("unexpected modified entry %+v", doc[1])
	}
	if doc[0].NewContentBase64 == "" || doc[0].MIMEType != "image/png" {
		t.Fatalf("unexpected replaced entry %+v", doc[0])
	}

	var buf bytes.Buffer
	if err := session.Encode(&buf, doc); err != nil {
		t.Fatal(err)
	}
	decoded, err := session.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}

	dst := newRegistry()
	report := session.Apply(decoded, dst, nil)
	if report.Applied != 3 || len(report.Warnings) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}

	restoredBody := mustLookup(t, dst, assets.TypePNG, "cars", "body.png")
	if !restoredBody.IsModified() || string(restoredBody.Modified().Bytes()) != "edited" {
		t.Fatalf("body not restored: state=%s", restoredBody.State())
	}
	restoredPaint := mustLookup(t, dst, assets.TypeJPG, "cars", "paint.jpg")
	restoredLogo := mustLookup(t, dst, assets.TypePNG, "ui", "logo.png")
	if !restoredPaint.IsNew() || restoredPaint.Replacement() != restoredLogo.Replacement() {
		t.Fatal("identical payloads should share one handle after restore")
	}
	if got := dst.Machine().Tracker().Refs(restoredLogo.Replacement()); got != 2 {
		t.Fatalf("expected shared handle refs 2, got %d", got)
	}
	if mustLookup(t, dst, assets.TypePNG, "ui", "frame.png").State() != assets.StatePristine {
		t.Fatal("untouched asset should stay pristine")
	}
}

func TestSerializeSkipsUnmodified(t *testing.T) {
	reg := newRegistry()
	a := mustLookup(t, reg, assets.TypePNG, "cars", "body.png")
	reg.Machine().SetOriginal(a, assets.NewContent([]byte("orig"), "image/png"))
	doc := session.Serialize(reg)
	if len(doc) != 0 {
		t.Fatalf("expected empty document, got %+v", doc)
	}
	var buf bytes.Buffer
	if err := session.Encode(&buf, doc); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", buf.String())
	}
}

func TestApplyMatchingAndWarnings(t *testing.T) {
	doc := session.Document{
		// id wins even when the other fields are stale
		{ID: "png/ui/logo.png", Folder: "old", Filename: "old.png", IsNew: true, NewContentBase64: "eA=="},
		// no type: matched by folder+filename
		{Folder: "cars", Filename: "paint.jpg", IsModified: true, ModifiedContentBase64: "eQ=="},
		{Folder: "nowhere", Filename: "ghost.png", Type: "png", IsModified: true, ModifiedContentBase64: "eQ=="},
		{Folder: "cars", Filename: "body.png", Type: "PNG", IsModified: true, ModifiedContentBase64: "!!!"},
		{Folder: "ui", Filename: "frame.png", Type: "png", IsModified: true},
	}
	reg := newRegistry()
	report := session.Apply(doc, reg, nil)
	if report.Applied != 2 {
		t.Fatalf("expected 2 applied, got %d", report.Applied)
	}
	if len(report.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %+v", report.Warnings)
	}
	if !errors.Is(report.Warnings[0].Err, services.ErrIdentityMismatch) || report.Warnings[0].Index != 2 {
		t.Fatalf("expected identity mismatch for ghost, got %+v", report.Warnings[0])
	}
	for _, w := range report.Warnings[1:] {
		if !errors.Is(w.Err, services.ErrValidation) {
			t.Fatalf("expected validation warning, got %v", w)
		}
	}

	logo := mustLookup(t, reg, assets.TypePNG, "ui", "logo.png")
	if !logo.IsNew() || string(logo.Replacement().Bytes()) != "x" {
		t.Fatalf("logo not replaced: %s", logo.State())
	}
	paint := mustLookup(t, reg, assets.TypeJPG, "cars", "paint.jpg")
	if !paint.IsModified() || paint.Modified().MIME() != "image/jpeg" {
		t.Fatal("paint should be modified with the type's default MIME")
	}
	if mustLookup(t, reg, assets.TypePNG, "cars", "body.png").IsModified() {
		t.Fatal("invalid base64 must not modify the asset")
	}
	if reg.Len() != 4 {
		t.Fatal("apply must never add assets")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := session.Decode(strings.NewReader("{not json")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := session.Decode(strings.NewReader("[] []")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected trailing data error, got %v", err)
	}
	doc, err := session.Decode(strings.NewReader("null"))
	if err != nil || doc == nil || len(doc) != 0 {
		t.Fatalf("null should decode to an empty document, got %v %v", doc, err)
	}
}
