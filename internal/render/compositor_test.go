package render

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"brandpost/autoposter/internal/models"
)

func testConfig() *models.RenderConfig {
	cfg := models.DefaultRenderConfig()
	cfg.Name = "Test Brand"
	cfg.BackgroundColor = "#ffffff"
	cfg.TitleColor = "#000000"
	cfg.HighlightColor = "#d90429"
	cfg.BorderColor = "#000000"
	cfg.CategoryColor = "#0055aa"
	return cfg
}

func solidImage(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func testResources() Resources {
	return Resources{
		Photo:      solidImage(640, 360, color.RGBA{R: 0, G: 200, B: 0, A: 255}),
		Logo:       solidImage(100, 100, color.RGBA{R: 0, G: 0, B: 255, A: 255}),
		TitleFont:  goregular.TTF,
		FooterFont: goregular.TTF,
	}
}

func testItem() models.NewsItem {
	return models.NewsItem{
		SourceLink: "https://example.com/story",
		Title:      "Local council approves the new riverside park",
		Summary:    "The park opens next spring.",
		ImageURL:   "https://example.com/photo.jpg",
	}
}

func decodeOutput(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a decodable JPEG: %v", err)
	}
	return img
}

// near reports whether two channel values are within JPEG compression noise.
func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d > -30 && d < 30
}

func pixelRGB(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestComposeCanvasSize(t *testing.T) {
	c := NewCompositor()

	data, err := c.Compose(testItem(), testConfig(), testResources())
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	img := decodeOutput(t, data)
	bounds := img.Bounds()
	if bounds.Dx() != CanvasSize || bounds.Dy() != CanvasSize {
		t.Errorf("output is %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), CanvasSize, CanvasSize)
	}
}

func TestComposePlacesPhotoAndPanel(t *testing.T) {
	c := NewCompositor()

	data, err := c.Compose(testItem(), testConfig(), testResources())
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	img := decodeOutput(t, data)

	// Middle of the photo region: the solid green source should dominate.
	r, g, b := pixelRGB(img, 540, 300)
	if !near(r, 0) || !near(g, 200) || !near(b, 0) {
		t.Errorf("photo region pixel = (%d,%d,%d), want close to (0,200,0)", r, g, b)
	}

	// Inside the highlight panel, above the title block and away from the logo.
	r, g, b = pixelRGB(img, 120, 700)
	if !near(r, 0xd9) || !near(g, 0x04) || !near(b, 0x29) {
		t.Errorf("panel region pixel = (%d,%d,%d), want close to (217,4,41)", r, g, b)
	}

	// A background corner outside every element.
	r, g, b = pixelRGB(img, 10, 1070)
	if !near(r, 255) || !near(g, 255) || !near(b, 255) {
		t.Errorf("background pixel = (%d,%d,%d), want close to white", r, g, b)
	}
}

func TestComposeCategoryBanner(t *testing.T) {
	c := NewCompositor()

	item := testItem()
	item.Category = "Sports"

	data, err := c.Compose(item, testConfig(), testResources())
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	img := decodeOutput(t, data)

	// Banner strip carries the category color edge to edge.
	r, g, b := pixelRGB(img, 20, 30)
	if !near(r, 0x00) || !near(g, 0x55) || !near(b, 0xaa) {
		t.Errorf("banner pixel = (%d,%d,%d), want close to (0,85,170)", r, g, b)
	}

	// The photo shifts down with the banner; its old top row is now background
	// until the shifted photo begins.
	r, g, b = pixelRGB(img, 540, 70)
	if !near(r, 255) || !near(g, 255) || !near(b, 255) {
		t.Errorf("gap below banner = (%d,%d,%d), want close to white", r, g, b)
	}
}

func TestComposeDeterministic(t *testing.T) {
	c := NewCompositor()
	item := testItem()
	cfg := testConfig()

	first, err := c.Compose(item, cfg, testResources())
	if err != nil {
		t.Fatalf("first Compose failed: %v", err)
	}
	second, err := c.Compose(item, cfg, testResources())
	if err != nil {
		t.Fatalf("second Compose failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("identical inputs produced different output bytes")
	}
}

func TestComposeLongTitleStaysInPanel(t *testing.T) {
	c := NewCompositor()

	item := testItem()
	item.Title = "An exceptionally long headline that keeps going and going with many " +
		"additional words to force the layout to wrap across far more lines than fit " +
		"in the panel so the shrink and truncation path has to engage"

	data, err := c.Compose(item, testConfig(), testResources())
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	img := decodeOutput(t, data)

	// Nothing may be drawn over the footer band except the footer text itself;
	// check a point left of the centered footer string.
	r, g, b := pixelRGB(img, 120, 1005)
	if !near(r, 0xd9) || !near(g, 0x04) || !near(b, 0x29) {
		t.Errorf("below-title panel pixel = (%d,%d,%d), want untouched highlight color", r, g, b)
	}
}

func TestComposeMissingResources(t *testing.T) {
	c := NewCompositor()
	item := testItem()
	cfg := testConfig()

	res := testResources()
	res.Photo = nil
	if _, err := c.Compose(item, cfg, res); err == nil {
		t.Error("expected error for missing photo")
	}

	res = testResources()
	res.Logo = nil
	if _, err := c.Compose(item, cfg, res); err == nil {
		t.Error("expected error for missing logo")
	}

	res = testResources()
	res.TitleFont = []byte("not a font")
	if _, err := c.Compose(item, cfg, res); err == nil {
		t.Error("expected error for unusable title font")
	}
}

func TestComposeInvalidColor(t *testing.T) {
	c := NewCompositor()
	cfg := testConfig()
	cfg.HighlightColor = "red"

	if _, err := c.Compose(testItem(), cfg, testResources()); err == nil {
		t.Error("expected error for invalid highlight color")
	}
}
