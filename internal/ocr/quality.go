package ocr

import (
	"regexp"
	"unicode"
)

var (
	reHeadingLike = regexp.MustCompile(`(?mi)^\s*(?:Q\s*)?\d{1,4}[\).:\s-]`)
	reOptionLike  = regexp.MustCompile(`(?mi)^\s*\(?[A-D][\).:]`)
	reMarkerLike  = regexp.MustCompile(`(?i)correct\s*ans`)
)

// textQuality is a naive 0..1 score of how much decoded text looks like an
// exam paper: mostly letters, with question headings and option labels.
func textQuality(txt string) float32 {
	var letters, printable int
	for _, r := range txt {
		if unicode.IsSpace(r) {
			continue
		}
		printable++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			letters++
		}
	}
	if printable < 20 {
		return 0
	}
	score := float32(0.4) * float32(letters) / float32(printable)
	if reHeadingLike.MatchString(txt) {
		score += 0.25
	}
	if reOptionLike.MatchString(txt) {
		score += 0.2
	}
	if reMarkerLike.MatchString(txt) {
		score += 0.15
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
