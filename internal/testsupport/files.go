package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"texgallery/internal/assets"
	"texgallery/internal/config"
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteCatalog writes the list file for kind under the media root, one line
// per record.
func WriteCatalog(t testing.TB, cfg *config.Config, kind assets.MediaType, lines ...string) {
	t.Helper()

	var name string
	switch kind {
	case assets.TypeJPG:
		name = cfg.Catalog.JPGList
	case assets.TypePNG:
		name = cfg.Catalog.PNGList
	default:
		name = cfg.Catalog.AudioList
	}
	WriteFile(t, filepath.Join(cfg.Paths.MediaRoot, name), []byte(strings.Join(lines, "\n")+"\n"))
}

// WriteMedia writes an asset's raw bytes at its declared media path.
func WriteMedia(t testing.TB, cfg *config.Config, kind assets.MediaType, filename string, data []byte) {
	t.Helper()
	WriteFile(t, filepath.Join(cfg.Paths.MediaRoot, kind.Dir(), filename), data)
}

// SolidImage returns a w×h image filled with c.
func SolidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// PNG encodes a solid image as PNG bytes.
func PNG(t testing.TB, w, h int, c color.NRGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, SolidImage(w, h, c)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// JPEG encodes a solid image as JPEG bytes.
func JPEG(t testing.TB, w, h int, c color.NRGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, SolidImage(w, h, c), &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}
