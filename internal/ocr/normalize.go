package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reHSpace     = regexp.MustCompile(`[ \t\f\v\p{Zs}]+`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// noise strips check/bullet glyphs that OCR produces around answer markers
// and list items, and rewrites typographic quotes to ASCII.
var noise = strings.NewReplacer(
	"¥", "", "￥", "",
	"►", "", "•", "", "▪", "", "■", "", "●", "", "◦", "",
	"✓", "", "✔", "", "✗", "", "✘", "",
	"\uf0b7", "", "\uf0a7", "", "\uf0d8", "", // symbol-font bullets
	"‘", "'", "’", "'", "‚", "'", "‛", "'", "′", "'",
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`, "″", `"`,
)

// Normalize cleans raw OCR text: NFKC folding, noise glyph removal, quote
// straightening, and whitespace collapsing. Line breaks are kept (the
// segmenter is line oriented); horizontal whitespace runs become one space,
// lines are trimmed, and more than one blank line collapses to one.
//
// Normalize is idempotent.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFKC.String(s)
	s = noise.Replace(s)
	// removing glyphs can leave a base letter next to a combining mark
	s = norm.NFKC.String(s)
	s = reCRLF.ReplaceAllString(s, "\n")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(reHSpace.ReplaceAllString(lines[i], " "))
	}
	s = strings.Join(lines, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// NormalizeLine is Normalize for a single line: every whitespace run,
// newlines included, becomes one space.
func NormalizeLine(s string) string {
	return strings.Join(strings.Fields(Normalize(s)), " ")
}
