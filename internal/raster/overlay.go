package raster

import (
	"image"
	"image/color"

	"texgallery/internal/services"
)

// Overlay tints img with c using an atop composite: each pixel's colour moves
// toward c by c's alpha while the pixel's own alpha is kept, so transparent
// regions stay transparent.
func Overlay(img *image.NRGBA, c color.NRGBA) *image.NRGBA {
	out := clone(img)
	a := float64(c.A) / 255
	pix := out.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = blend(pix[i], c.R, a)
		pix[i+1] = blend(pix[i+1], c.G, a)
		pix[i+2] = blend(pix[i+2], c.B, a)
	}
	return out
}

// Tile repeats pattern across img atop, keeping img's alpha.
func Tile(img, pattern *image.NRGBA) (*image.NRGBA, error) {
	if pattern == nil || pattern.Rect.Empty() {
		return nil, services.Wrap(services.ErrValidation, "raster", "tile", "pattern is empty", nil)
	}
	out := clone(img)
	pw, ph := pattern.Rect.Dx(), pattern.Rect.Dy()
	for y := 0; y < out.Rect.Dy(); y++ {
		for x := 0; x < out.Rect.Dx(); x++ {
			p := pattern.NRGBAAt(pattern.Rect.Min.X+x%pw, pattern.Rect.Min.Y+y%ph)
			if p.A == 0 {
				continue
			}
			a := float64(p.A) / 255
			i := out.PixOffset(x, y)
			out.Pix[i] = blend(out.Pix[i], p.R, a)
			out.Pix[i+1] = blend(out.Pix[i+1], p.G, a)
			out.Pix[i+2] = blend(out.Pix[i+2], p.B, a)
		}
	}
	return out, nil
}

func blend(dst, src uint8, a float64) uint8 {
	return clamp8(float64(dst) + (float64(src)-float64(dst))*a)
}

// Flat generates a solid w×h image. Sides must be within 1..MaxDimension.
func Flat(w, h int, c color.NRGBA) (*image.NRGBA, error) {
	if err := checkDimensions(w, h); err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	row := img.Pix[:img.Stride]
	for i := 0; i < len(row); i += 4 {
		row[0+i], row[1+i], row[2+i], row[3+i] = c.R, c.G, c.B, c.A
	}
	for y := 1; y < h; y++ {
		copy(img.Pix[y*img.Stride:(y+1)*img.Stride], row)
	}
	return img, nil
}
