package layout

import (
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// substitute is written for runes WinAnsiEncoding cannot represent.
const substitute = '?'

// EncodeWinAnsi converts text to the single-byte WinAnsiEncoding used by the
// standard Type 1 fonts. Text is NFC-normalised first so that decomposed
// accents map onto their precomposed code points; invisible characters are
// dropped, other whitespace becomes a plain space and anything else without a
// WinAnsi code point becomes '?'.
func EncodeWinAnsi(text string) []byte {
	text = norm.NFC.String(text)
	out := make([]byte, 0, len(text))
	for _, r := range text {
		switch {
		case r == '\u00AD', r == '\u200B', r == '\u200C', r == '\u200D', r == '\uFEFF':
			continue
		case r != ' ' && unicode.IsSpace(r):
			out = append(out, ' ')
			continue
		case r < 0x20:
			continue
		}
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		out = append(out, substitute)
	}
	return out
}

// escapeString renders encoded bytes as the body of a PDF literal string.
func escapeString(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) + 8)
	for _, c := range b {
		switch {
		case c == '\\' || c == '(' || c == ')':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c < 0x20 || c >= 0x7f:
			sb.WriteByte('\\')
			sb.WriteByte('0' + c>>6)
			sb.WriteByte('0' + (c>>3)&7)
			sb.WriteByte('0' + c&7)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
