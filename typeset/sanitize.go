package typeset

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// folder maps typographic punctuation onto its ASCII equivalent before the
// printable strip. Characters it does not cover either decompose to a base
// letter or disappear.
var folder = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\t", " ",
	" ", " ",
	"‘", "'",
	"’", "'",
	"‛", "'",
	"“", `"`,
	"”", `"`,
	"‟", `"`,
	"«", `"`,
	"»", `"`,
	"‐", "-",
	"‑", "-",
	"‒", "-",
	"–", "-",
	"—", "-",
	"―", "-",
	"…", "...",
)

// markStripper decomposes and removes combining marks so accented Latin
// letters survive the ASCII strip as their base letters.
var markStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Sanitize reduces s to the printable low-ASCII range the builtin faces can
// render. Typographic quotes, dashes and ellipses fold to ASCII, accented
// Latin letters lose their marks, and every remaining rune outside
// 0x20..0x7E (newline excepted) is dropped. Emoji and non-Latin scripts do
// not survive.
func Sanitize(s string) string {
	s = folder.Replace(s)
	if folded, _, err := transform.String(markStripper, s); err == nil {
		s = folded
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == '\n' || (r >= 0x20 && r <= 0x7e) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// EscapeText escapes the literal-string delimiters of the output format.
// It expects sanitized input; the backslashes it inserts are final.
func EscapeText(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			sb.WriteString(`\\`)
		case '(':
			sb.WriteString(`\(`)
		case ')':
			sb.WriteString(`\)`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
