package modbuilder

import (
	"image"

	"texgallery/internal/assets"
	"texgallery/internal/raster"
)

// Kind names the single modification a record holds.
type Kind string

const (
	KindColor           Kind = "color"
	KindSaturation      Kind = "saturation"
	KindDrawing         Kind = "drawing"
	KindPattern         Kind = "pattern"
	KindGreyPlaceholder Kind = "grey_placeholder"
)

// Record is the modification attached to one group file. Only the field
// matching Kind is meaningful.
type Record struct {
	Kind       Kind            `json:"kind"`
	Color      string          `json:"color,omitempty"`
	Saturation float64         `json:"saturation,omitempty"`
	Drawing    *raster.Drawing `json:"drawing,omitempty"`
	Pattern    *assets.Content `json:"-"`

	pattern *image.NRGBA
}

// FileRecord pairs a group file with its record.
type FileRecord struct {
	File   File   `json:"file"`
	Record Record `json:"record"`
}

type key struct {
	group    string
	filename string
}
