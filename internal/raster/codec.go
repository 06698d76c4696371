package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	_ "image/gif"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"texgallery/internal/services"
)

const (
	// MaxDimension bounds decoded and generated image sides.
	MaxDimension = 8192
	// DefaultJPEGQuality is used when callers pass a quality outside 1..100.
	DefaultJPEGQuality = 92
)

// Decode interprets data as an image and returns an NRGBA copy of it along
// with the detected format name.
func Decode(data []byte) (*image.NRGBA, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", services.Wrap(services.ErrDecode, "raster", "decode", "unrecognized image data", err)
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, format, services.Wrap(services.ErrDecode, "raster", "decode",
			fmt.Sprintf("image %dx%d exceeds %d", cfg.Width, cfg.Height, MaxDimension), nil)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, services.Wrap(services.ErrDecode, "raster", "decode", format, err)
	}
	return toNRGBA(img), format, nil
}

// Encode serializes img as JPEG when mimeType is image/jpeg and as PNG
// otherwise.
func Encode(img image.Image, mimeType string, jpegQuality int) ([]byte, error) {
	if img == nil {
		return nil, services.Wrap(services.ErrEncode, "raster", "encode", "image is nil", nil)
	}
	var buf bytes.Buffer
	switch mimeType {
	case "image/jpeg", "image/jpg":
		if jpegQuality < 1 || jpegQuality > 100 {
			jpegQuality = DefaultJPEGQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, services.Wrap(services.ErrEncode, "raster", "encode", "jpeg", err)
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, services.Wrap(services.ErrEncode, "raster", "encode", "png", err)
		}
	}
	return buf.Bytes(), nil
}

// OutputMIME is the encoding Encode will use for an asset whose declared MIME
// type is mimeType.
func OutputMIME(mimeType string) string {
	if mimeType == "image/jpeg" || mimeType == "image/jpg" {
		return "image/jpeg"
	}
	return "image/png"
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return clone(n)
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Resize scales img to w×h with Catmull-Rom resampling.
func Resize(img image.Image, w, h int) (*image.NRGBA, error) {
	if err := checkDimensions(w, h); err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}

func checkDimensions(w, h int) error {
	if w < 1 || h < 1 || w > MaxDimension || h > MaxDimension {
		return services.Wrap(services.ErrValidation, "raster", "dimensions",
			fmt.Sprintf("%dx%d outside 1..%d", w, h, MaxDimension), nil)
	}
	return nil
}
