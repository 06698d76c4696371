package assets_test

import (
	"strings"
	"testing"

	"texgallery/internal/assets"
)

func TestParseCatalog(t *testing.T) {
	input := "cars body.jpg\n\n   \nweapons  rifle.jpg extra tokens here\nlonely\n\ttrees\tbark.jpg\n"
	cat, err := assets.ParseCatalog(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	want := []assets.CatalogEntry{
		{Folder: "cars", Filename: "body.jpg"},
		{Folder: "weapons", Filename: "rifle.jpg"},
		{Folder: "trees", Filename: "bark.jpg"},
	}
	if len(cat.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), cat.Entries)
	}
	for i := range want {
		if cat.Entries[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, cat.Entries[i], want[i])
		}
	}
	if len(cat.Malformed) != 1 || cat.Malformed[0] != 5 {
		t.Fatalf("expected line 5 malformed, got %v", cat.Malformed)
	}
}

func TestParseCatalogEmpty(t *testing.T) {
	cat, err := assets.ParseCatalog(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if len(cat.Entries) != 0 || len(cat.Malformed) != 0 {
		t.Fatalf("expected empty catalog, got %+v", cat)
	}
}

func TestParseMediaType(t *testing.T) {
	cases := map[string]assets.MediaType{
		"jpg":   assets.TypeJPG,
		"JPEG":  assets.TypeJPG,
		" png ": assets.TypePNG,
		"Audio": assets.TypeAudio,
	}
	for input, want := range cases {
		got, err := assets.ParseMediaType(input)
		if err != nil {
			t.Fatalf("ParseMediaType(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseMediaType(%q) = %v, want %v", input, got, want)
		}
	}
	if _, err := assets.ParseMediaType("video"); err == nil {
		t.Fatal("expected error for unknown type")
	}
	if assets.TypeAudio.Dir() != "audio" || assets.TypeJPG.Dir() != "jpg" {
		t.Fatalf("unexpected dirs: %q %q", assets.TypeAudio.Dir(), assets.TypeJPG.Dir())
	}
}
