package render

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// LoadFace parses raw TrueType bytes into a font.Face at the given size.
// Corrupt or empty font data is a hard failure; there is deliberately no
// default-font fallback, as that would silently change tenant branding.
func LoadFace(fontBytes []byte, size float64) (font.Face, error) {
	if len(fontBytes) == 0 {
		return nil, fmt.Errorf("empty font data")
	}
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", size)
	}

	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	return truetype.NewFace(parsed, &truetype.Options{Size: size}), nil
}
