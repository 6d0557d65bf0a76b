package layout

import (
	"strings"
)

// Wrap breaks text into lines no wider than maxWidth when set in f at size.
// Words are separated by spaces and a line is broken before the first word
// that does not fit. A single word wider than maxWidth is split between runes,
// so the only way a line can exceed maxWidth is a single glyph that is itself
// wider. Without a positive maxWidth every word gets its own line.
func Wrap(text string, f Font, size, maxWidth float64) []string {
	if maxWidth <= 0 {
		return strings.Fields(text)
	}

	var lines []string
	line := ""

	for _, word := range strings.Fields(text) {
		for word != "" && f.Width(word, size) > maxWidth {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			head, tail := splitWord(word, f, size, maxWidth)
			lines = append(lines, head)
			word = tail
		}
		if word == "" {
			continue
		}

		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if f.Width(candidate, size) <= maxWidth {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// splitWord returns the longest rune prefix of word that fits in maxWidth and
// the remainder. The prefix holds at least one rune unless word is empty.
func splitWord(word string, f Font, size, maxWidth float64) (string, string) {
	runes := []rune(word)
	if len(runes) == 0 || maxWidth <= 0 {
		return word, ""
	}
	n := 1
	for n < len(runes) && f.Width(string(runes[:n+1]), size) <= maxWidth {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
