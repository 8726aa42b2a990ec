package render

import "testing"

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Color
		wantErr bool
	}{
		{"lowercase with hash", "#d90429", Color{R: 0xd9, G: 0x04, B: 0x29}, false},
		{"uppercase with hash", "#D90429", Color{R: 0xd9, G: 0x04, B: 0x29}, false},
		{"mixed case without hash", "FfFfFf", Color{R: 0xff, G: 0xff, B: 0xff}, false},
		{"black", "#000000", Color{}, false},
		{"surrounding whitespace", "  #102030 ", Color{R: 0x10, G: 0x20, B: 0x30}, false},
		{"too short", "#fff", Color{}, true},
		{"too long", "#d904290", Color{}, true},
		{"non-hex digits", "#zzzzzz", Color{}, true},
		{"interior whitespace", "d9 429", Color{}, true},
		{"interior whitespace with hash", "#d9 429", Color{}, true},
		{"sign character", "+d0429", Color{}, true},
		{"empty", "", Color{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseHex(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHex(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHexCanonicalForm(t *testing.T) {
	// Round-tripping any accepted spelling yields lowercase "#rrggbb".
	for _, input := range []string{"#D90429", "d90429", " #d90429"} {
		c, err := ParseHex(input)
		if err != nil {
			t.Fatalf("ParseHex(%q) error: %v", input, err)
		}
		if got := c.Hex(); got != "#d90429" {
			t.Errorf("ParseHex(%q).Hex() = %q, want %q", input, got, "#d90429")
		}
	}
}

func TestRGBAIsOpaque(t *testing.T) {
	c := Color{R: 1, G: 2, B: 3}
	rgba := c.RGBA()
	if rgba.A != 0xff {
		t.Errorf("RGBA alpha = %d, want 255", rgba.A)
	}
	if rgba.R != 1 || rgba.G != 2 || rgba.B != 3 {
		t.Errorf("RGBA = %v, want {1 2 3 255}", rgba)
	}
}
