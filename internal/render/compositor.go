// Package render turns a news item plus a tenant's design configuration into
// a branded 1080x1080 JPEG. Composition is deterministic and side-effect
// free: every binary resource (photo, logo, fonts) is resolved by the caller
// and passed in as bytes, so this package never touches the network.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"brandpost/autoposter/internal/models"
)

// Canvas geometry. Matches the layout the dashboard previews, so changing
// any of these changes every tenant's output.
const (
	CanvasSize = 1080

	photoWidth  = 980
	photoHeight = 551
	photoTop    = 50

	panelLeft   = 50.0
	panelTop    = 620.0
	panelWidth  = 980.0
	panelHeight = 410.0

	logoMaxSize = 220

	titleWrapWidth = 900.0
	titleStartY    = 800.0
	titleMaxBottom = 950.0
	titleLineGap   = 10.0

	footerBaselineY = 980.0

	bannerHeight = 64.0
	bannerGap    = 16.0

	jpegQuality = 95

	// Title auto-shrink floor relative to the configured size. Below this
	// the remaining lines are dropped with an ellipsis instead.
	minTitleScale = 0.5
)

// Resources carries the pre-resolved binary inputs for one composition.
type Resources struct {
	Photo      image.Image
	Logo       image.Image
	TitleFont  []byte
	FooterFont []byte
}

// Compositor renders news items into branded post images.
type Compositor struct{}

// NewCompositor returns a ready Compositor.
func NewCompositor() *Compositor {
	return &Compositor{}
}

// Compose renders the item onto a 1080x1080 canvas and returns the encoded
// JPEG. Invalid colors, unusable fonts, or missing resources fail the render.
func (c *Compositor) Compose(item models.NewsItem, cfg *models.RenderConfig, res Resources) ([]byte, error) {
	if res.Photo == nil {
		return nil, fmt.Errorf("missing photo for %s", item.SourceLink)
	}
	if res.Logo == nil {
		return nil, fmt.Errorf("missing logo for %s", item.SourceLink)
	}

	pal, err := parsePalette(cfg)
	if err != nil {
		return nil, err
	}

	footerFace, err := LoadFace(res.FooterFont, cfg.FooterFontSize)
	if err != nil {
		return nil, fmt.Errorf("footer font unusable: %w", err)
	}

	dc := gg.NewContext(CanvasSize, CanvasSize)
	dc.SetColor(pal.background.RGBA())
	dc.Clear()

	// Category banner shifts the photo down; the highlight panel stays in
	// its fixed lower band and overlays whatever it covers.
	offset := 0.0
	if item.Category != "" {
		if err := c.drawBanner(dc, item.Category, cfg, pal, res.TitleFont); err != nil {
			return nil, err
		}
		offset = bannerHeight + bannerGap
	}

	c.drawPhoto(dc, res.Photo, cfg.BorderWidth, pal, offset)

	dc.SetColor(pal.highlight.RGBA())
	dc.DrawRoundedRectangle(panelLeft, panelTop, panelWidth, panelHeight, float64(cfg.CornerRadius))
	dc.Fill()

	c.drawLogo(dc, res.Logo)

	if err := c.drawTitle(dc, item.Title, cfg, pal, res.TitleFont); err != nil {
		return nil, err
	}

	dc.SetFontFace(footerFace)
	dc.SetColor(pal.title.RGBA())
	dc.DrawStringAnchored(cfg.FooterText, CanvasSize/2, footerBaselineY, 0.5, 0)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dc.Image(), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

type palette struct {
	background Color
	title      Color
	highlight  Color
	border     Color
	category   Color
}

func parsePalette(cfg *models.RenderConfig) (palette, error) {
	var p palette
	var err error

	fields := []struct {
		name  string
		value string
		dst   *Color
	}{
		{"background_color", cfg.BackgroundColor, &p.background},
		{"title_color", cfg.TitleColor, &p.title},
		{"highlight_color", cfg.HighlightColor, &p.highlight},
		{"border_color", cfg.BorderColor, &p.border},
		{"category_color", cfg.CategoryColor, &p.category},
	}
	for _, f := range fields {
		if *f.dst, err = ParseHex(f.value); err != nil {
			return palette{}, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return p, nil
}

func (c *Compositor) drawBanner(dc *gg.Context, category string, cfg *models.RenderConfig, p palette, titleFont []byte) error {
	dc.SetColor(p.category.RGBA())
	dc.DrawRectangle(0, 0, CanvasSize, bannerHeight)
	dc.Fill()

	face, err := LoadFace(titleFont, cfg.TitleFontSize*0.6)
	if err != nil {
		return fmt.Errorf("banner font unusable: %w", err)
	}
	dc.SetFontFace(face)
	dc.SetColor(p.title.RGBA())
	dc.DrawStringAnchored(strings.ToUpper(category), CanvasSize/2, bannerHeight/2, 0.5, 0.5)
	return nil
}

func (c *Compositor) drawPhoto(dc *gg.Context, photo image.Image, borderWidth int, p palette, offset float64) {
	resized := imaging.Resize(photo, photoWidth, photoHeight, imaging.Lanczos)
	x := (CanvasSize - photoWidth) / 2
	y := photoTop + int(offset)

	if borderWidth > 0 {
		bw := float64(borderWidth)
		dc.SetColor(p.border.RGBA())
		dc.DrawRectangle(float64(x)-bw, float64(y)-bw, photoWidth+2*bw, photoHeight+2*bw)
		dc.Fill()
	}

	dc.DrawImage(resized, x, y)
}

// drawLogo scales the logo into its bounding box and centers it straddling
// the panel's top edge. DrawImage composites with the logo's own alpha, so
// transparent logos blend cleanly.
func (c *Compositor) drawLogo(dc *gg.Context, logo image.Image) {
	thumb := imaging.Fit(logo, logoMaxSize, logoMaxSize, imaging.Lanczos)
	w := thumb.Bounds().Dx()
	h := thumb.Bounds().Dy()
	dc.DrawImage(thumb, (CanvasSize-w)/2, int(panelTop)-h/2)
}

// drawTitle wraps the upper-cased title into the panel. If the wrapped block
// does not fit above the footer, the font shrinks in 10% steps down to a
// floor; if it still overflows, trailing lines are dropped behind an
// ellipsis. The panel is never overflowed.
func (c *Compositor) drawTitle(dc *gg.Context, title string, cfg *models.RenderConfig, p palette, titleFont []byte) error {
	text := strings.ToUpper(title)
	size := cfg.TitleFontSize

	var lines []string
	var lineHeight float64

	for {
		sized, err := LoadFace(titleFont, size)
		if err != nil {
			return fmt.Errorf("title font unusable: %w", err)
		}
		dc.SetFontFace(sized)
		lineHeight = dc.FontHeight()

		lines = Wrap(text, titleWrapWidth, func(s string) float64 {
			w, _ := dc.MeasureString(s)
			return w
		})

		if titleBlockBottom(len(lines), lineHeight) <= titleMaxBottom {
			break
		}
		if size <= cfg.TitleFontSize*minTitleScale {
			lines = truncateLines(lines, lineHeight)
			break
		}
		size *= 0.9
	}

	dc.SetColor(p.title.RGBA())
	y := titleStartY
	for _, line := range lines {
		dc.DrawStringAnchored(line, CanvasSize/2, y, 0.5, 0.5)
		y += lineHeight + titleLineGap
	}
	return nil
}

// titleBlockBottom returns the bottom edge of an n-line title block.
func titleBlockBottom(n int, lineHeight float64) float64 {
	if n == 0 {
		return titleStartY
	}
	lastCenter := titleStartY + float64(n-1)*(lineHeight+titleLineGap)
	return lastCenter + lineHeight/2
}

// truncateLines drops lines that would cross into the footer region and
// marks the cut with an ellipsis.
func truncateLines(lines []string, lineHeight float64) []string {
	keep := len(lines)
	for keep > 1 && titleBlockBottom(keep, lineHeight) > titleMaxBottom {
		keep--
	}
	if keep >= len(lines) {
		return lines
	}
	out := append([]string(nil), lines[:keep]...)
	out[keep-1] = out[keep-1] + "…"
	return out
}
