package modbuilder

import (
	"encoding/base64"
	"fmt"
	"strings"

	"texgallery/internal/assets"
	"texgallery/internal/raster"
	"texgallery/internal/services"
)

// Request is the wire form of a group record change.
type Request struct {
	Kind       string          `json:"kind"`
	Color      string          `json:"color,omitempty"`
	Saturation *float64        `json:"saturation,omitempty"`
	Drawing    *raster.Drawing `json:"drawing,omitempty"`
	// Pattern is base64 image data with an optional data-URL prefix.
	Pattern string `json:"pattern,omitempty"`
}

// Apply routes req to the matching setter.
func (b *Builder) Apply(group, filename string, req Request) error {
	switch Kind(strings.ToLower(strings.TrimSpace(req.Kind))) {
	case KindColor:
		return b.SetColor(group, filename, req.Color)
	case KindSaturation:
		if req.Saturation == nil {
			return invalidRequest(req.Kind, "saturation")
		}
		return b.SetSaturation(group, filename, *req.Saturation)
	case KindDrawing:
		if req.Drawing == nil {
			return invalidRequest(req.Kind, "drawing")
		}
		return b.SetDrawing(group, filename, *req.Drawing)
	case KindPattern:
		content, err := decodePattern(req.Pattern)
		if err != nil {
			return err
		}
		return b.SetPattern(group, filename, content)
	case KindGreyPlaceholder, "grey", "placeholder":
		return b.SetGreyPlaceholder(group, filename)
	default:
		return services.Wrap(services.ErrValidation, "modbuilder", "request",
			fmt.Sprintf("unknown record kind %q", req.Kind), nil)
	}
}

func invalidRequest(kind, field string) error {
	return services.Wrap(services.ErrValidation, "modbuilder", "request",
		fmt.Sprintf("%s requires %s", kind, field), nil)
}

// decodePattern accepts raw base64 or a "data:<mime>;base64," URL.
func decodePattern(value string) (*assets.Content, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, invalidRequest(string(KindPattern), "pattern")
	}
	mimeType := "image/png"
	if rest, ok := strings.CutPrefix(value, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return nil, services.Wrap(services.ErrValidation, "modbuilder", "pattern", "pattern must be a base64 data URL", nil)
		}
		if m := strings.TrimSuffix(header, ";base64"); m != "" {
			mimeType = m
		}
		value = payload
	}
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "modbuilder", "pattern", "invalid base64", err)
	}
	return assets.NewContent(data, mimeType), nil
}
