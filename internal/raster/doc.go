// Package raster holds the pixel transforms behind every texture edit.
//
// All functions are pure: they take decoded images plus parameters and return
// a new image, never mutating their input. Decode and Encode convert between
// asset bytes and *image.NRGBA, tagging failures with services.ErrDecode and
// services.ErrEncode so batch callers can skip the affected asset.
//
// Saturation comes in two luminance presets. Rec709 is used by the
// interactive and bulk editor; Rec601 by the mod builder. Strokes are
// rasterized with github.com/fogleman/gg and composited over the base image.
package raster
