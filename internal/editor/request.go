package editor

import (
	"fmt"
	"image/color"
	"strings"

	"texgallery/internal/raster"
	"texgallery/internal/services"
)

// Request is the wire form of an edit, shared by the HTTP API and the CLI.
type Request struct {
	Operation string          `json:"operation"`
	Percent   *float64        `json:"percent,omitempty"`
	Color     string          `json:"color,omitempty"`
	Width     int             `json:"width,omitempty"`
	Height    int             `json:"height,omitempty"`
	Drawing   *raster.Drawing `json:"drawing,omitempty"`
}

// NewOperation builds the operation described by req. Missing placeholder
// parameters fall back to settings.
func NewOperation(req Request, settings Settings) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(req.Operation)) {
	case "saturation":
		if req.Percent == nil {
			return nil, missing(req.Operation, "percent")
		}
		return NewSaturation(*req.Percent), nil
	case "tint", "color":
		if req.Color == "" {
			return nil, missing(req.Operation, "color")
		}
		return &Tint{Color: req.Color}, nil
	case "draw", "drawing":
		if req.Drawing == nil {
			return nil, missing(req.Operation, "drawing")
		}
		grey, err := placeholderColor(settings)
		if err != nil {
			return nil, err
		}
		return &Draw{Drawing: *req.Drawing, PlaceholderSize: settings.PlaceholderSize, Placeholder: grey}, nil
	case "create_new", "new":
		op := &CreateNew{Width: req.Width, Height: req.Height, Color: req.Color}
		if op.Width == 0 {
			op.Width = settings.PlaceholderSize
		}
		if op.Height == 0 {
			op.Height = op.Width
		}
		if op.Color == "" {
			op.Color = settings.PlaceholderColor
		}
		return op, nil
	case "grey_placeholder", "grey", "placeholder":
		return &GreyPlaceholder{Size: settings.PlaceholderSize, Color: settings.PlaceholderColor}, nil
	case "revert", "reset":
		return Revert{}, nil
	default:
		return nil, services.Wrap(services.ErrValidation, "editor", "build operation",
			fmt.Sprintf("unknown operation %q", req.Operation), nil)
	}
}

func missing(op, field string) error {
	return services.Wrap(services.ErrValidation, "editor", "build operation",
		fmt.Sprintf("%s requires %s", op, field), nil)
}

func placeholderColor(settings Settings) (color.NRGBA, error) {
	if settings.PlaceholderColor == "" {
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}, nil
	}
	return raster.ParseColor(settings.PlaceholderColor)
}
