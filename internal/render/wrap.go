package render

import "strings"

// MeasureFunc returns the rendered width of a string in pixels for the
// font the caller is laying out with.
type MeasureFunc func(string) float64

// Wrap greedily breaks text into lines no wider than maxWidth. Words are
// added to the current line while the measured width still fits; a word that
// cannot fit on a line by itself is split at character boundaries, so no
// produced line ever exceeds maxWidth.
func Wrap(text string, maxWidth float64, measure MeasureFunc) []string {
	var lines []string
	var current string

	for _, word := range strings.Fields(text) {
		for _, piece := range splitWord(word, maxWidth, measure) {
			candidate := piece
			if current != "" {
				candidate = current + " " + piece
			}
			if measure(candidate) <= maxWidth {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
			}
			current = piece
		}
	}

	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// splitWord breaks a single oversized word into maximal fitting pieces.
func splitWord(word string, maxWidth float64, measure MeasureFunc) []string {
	if measure(word) <= maxWidth {
		return []string{word}
	}

	var pieces []string
	runes := []rune(word)
	start := 0
	for start < len(runes) {
		end := start + 1
		for end < len(runes) && measure(string(runes[start:end+1])) <= maxWidth {
			end++
		}
		pieces = append(pieces, string(runes[start:end]))
		start = end
	}
	return pieces
}
