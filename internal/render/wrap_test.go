package render

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// runeWidth measures every rune as 10px, which makes expected widths easy to
// reason about in tests.
func runeWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * 10
}

func TestWrapBasic(t *testing.T) {
	lines := Wrap("mayor opens new bridge downtown", 140, runeWidth)

	want := []string{"mayor opens", "new bridge", "downtown"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %q, want %d", len(lines), lines, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWrapSingleShortLine(t *testing.T) {
	lines := Wrap("hello world", 1000, runeWidth)
	if len(lines) != 1 || lines[0] != "hello world" {
		t.Fatalf("got %q, want one line %q", lines, "hello world")
	}
}

func TestWrapEmptyText(t *testing.T) {
	if lines := Wrap("", 100, runeWidth); len(lines) != 0 {
		t.Fatalf("got %q, want no lines", lines)
	}
	if lines := Wrap("   \t ", 100, runeWidth); len(lines) != 0 {
		t.Fatalf("whitespace-only input produced %q", lines)
	}
}

func TestWrapNeverExceedsWidth(t *testing.T) {
	inputs := []string{
		"short words fit fine on one line",
		"antidisestablishmentarianism is a deliberately oversized word",
		strings.Repeat("x", 200),
		"mix of normal and " + strings.Repeat("y", 80) + " oversized tokens",
	}

	for _, text := range inputs {
		for _, maxWidth := range []float64{50, 105, 333} {
			for _, line := range Wrap(text, maxWidth, runeWidth) {
				if w := runeWidth(line); w > maxWidth {
					t.Errorf("line %q measures %.0f, exceeds max %.0f", line, w, maxWidth)
				}
			}
		}
	}
}

func TestWrapSplitsOversizedWord(t *testing.T) {
	// 25 runes at 10px each cannot fit in 100px; expect character-level
	// splits with no content lost.
	word := strings.Repeat("a", 25)
	lines := Wrap(word, 100, runeWidth)

	if len(lines) != 3 {
		t.Fatalf("got %d lines %q, want 3", len(lines), lines)
	}
	if joined := strings.Join(lines, ""); joined != word {
		t.Errorf("rejoined %q, want original word preserved", joined)
	}
}

func TestWrapOversizedWordMidText(t *testing.T) {
	lines := Wrap("ok "+strings.Repeat("b", 15)+" done", 100, runeWidth)

	var rejoined []string
	for _, line := range lines {
		if w := runeWidth(line); w > 100 {
			t.Errorf("line %q measures %.0f, exceeds max 100", line, w)
		}
		rejoined = append(rejoined, line)
	}

	all := strings.Join(rejoined, "")
	for _, frag := range []string{"ok", "done", "bbbbb"} {
		if !strings.Contains(strings.ReplaceAll(all, " ", ""), frag) {
			t.Errorf("output %q lost fragment %q", lines, frag)
		}
	}
}
