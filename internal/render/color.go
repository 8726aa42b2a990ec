package render

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
)

// Color is a 24-bit RGB color parsed from a tenant's "#rrggbb" config value.
type Color struct {
	R, G, B uint8
}

// ParseHex parses a color of the form "#rrggbb" (case-insensitive, leading
// '#' optional). Anything else is rejected so a typo in tenant config fails
// the render instead of silently shifting the brand palette.
func ParseHex(s string) (Color, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(digits) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}

	b, err := hex.DecodeString(digits)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: b[0], G: b[1], B: b[2]}, nil
}

// Hex returns the canonical lowercase "#rrggbb" form.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA returns the color as an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
