package raster

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"

	"texgallery/internal/services"
)

// ParseColor accepts "#RGB", "#RRGGBB" or "#RRGGBBAA" (the leading '#' is
// optional). Alpha defaults to opaque.
func ParseColor(value string) (color.NRGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, invalidColor(value, nil)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return color.NRGBA{}, invalidColor(value, err)
	}
	c := color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: 0xff}
	if len(raw) == 4 {
		c.A = raw[3]
	}
	return c, nil
}

func invalidColor(value string, err error) error {
	return services.Wrap(services.ErrValidation, "raster", "parse color", fmt.Sprintf("invalid colour %q", value), err)
}

// FormatColor renders c as "#RRGGBB", or "#RRGGBBAA" when not opaque.
func FormatColor(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
