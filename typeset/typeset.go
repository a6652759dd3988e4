// Package typeset prepares journal text for placement: sanitization to the
// printable Latin subset the builtin faces cover, word wrapping against a
// column budget, and the approximate width model used for centering.
package typeset

import "strings"

// GlyphWidthFactor is the assumed average glyph advance as a fraction of the
// font size. It is a heuristic for the Latin subset of the builtin faces,
// not a font metric; centering and column budgets are calibrated against it.
const GlyphWidthFactor = 0.52

// EstimateWidth approximates the rendered width of text at the given font
// size. Callers use it for centering only, never for wrap decisions.
func EstimateWidth(text string, fontSize float64) float64 {
	return float64(len(text)) * fontSize * GlyphWidthFactor
}

// Wrap splits text into lines of at most maxCols characters. Explicit
// newlines are hard breaks and are never merged. Within a paragraph words
// are packed greedily; a single word longer than the budget is placed on a
// line of its own, unsplit.
func Wrap(text string, maxCols int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(para, maxCols)...)
	}
	return lines
}

func wrapParagraph(para string, maxCols int) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= maxCols {
			current += " " + word
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	return append(lines, current)
}

// WrapHard wraps like Wrap but force-splits oversized words at the column
// boundary. Only the plain profile uses it.
func WrapHard(text string, maxCols int) []string {
	if maxCols < 1 {
		maxCols = 1
	}
	var out []string
	for _, line := range Wrap(text, maxCols) {
		for len(line) > maxCols {
			out = append(out, line[:maxCols])
			line = line[maxCols:]
		}
		out = append(out, line)
	}
	return out
}
