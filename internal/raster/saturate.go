package raster

import (
	"fmt"
	"image"
	"math"

	"texgallery/internal/services"
)

// Preset is a set of luminance weights.
type Preset struct {
	Name    string
	R, G, B float64
}

var (
	// Rec709 weights, used by the interactive and bulk editor.
	Rec709 = Preset{Name: "rec709", R: 0.2126, G: 0.7152, B: 0.0722}
	// Rec601 weights, used by the mod builder.
	Rec601 = Preset{Name: "rec601", R: 0.299, G: 0.587, B: 0.114}
)

// Luminance returns the weighted luminance of an 8-bit pixel.
func (p Preset) Luminance(r, g, b uint8) float64 {
	return p.R*float64(r) + p.G*float64(g) + p.B*float64(b)
}

// Saturate scales each channel's distance from luminance by percent/100.
// 100 is the identity, 0 is full desaturation, and values above 100
// amplify colour. Alpha is untouched.
func Saturate(img *image.NRGBA, percent float64, preset Preset) (*image.NRGBA, error) {
	if percent < 0 || math.IsNaN(percent) || math.IsInf(percent, 0) {
		return nil, services.Wrap(services.ErrValidation, "raster", "saturate",
			fmt.Sprintf("percent %v must be >= 0", percent), nil)
	}
	out := clone(img)
	factor := percent / 100
	pix := out.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b := pix[i], pix[i+1], pix[i+2]
		l := preset.Luminance(r, g, b)
		pix[i] = clamp8(l + (float64(r)-l)*factor)
		pix[i+1] = clamp8(l + (float64(g)-l)*factor)
		pix[i+2] = clamp8(l + (float64(b)-l)*factor)
	}
	return out, nil
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(math.Round(v))
	}
}

func clone(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()))
	for y := 0; y < out.Rect.Dy(); y++ {
		src := img.Pix[img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y):]
		copy(out.Pix[y*out.Stride:(y+1)*out.Stride], src[:out.Stride])
	}
	return out
}
