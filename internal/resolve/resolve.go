// Package resolve determines the correct option letter for a question.
package resolve

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/exam-extractor/constants"
	"github.com/joseph-ayodele/exam-extractor/internal/entity"
)

const (
	// AcceptThreshold is the fuzzy score a match must exceed to be accepted.
	AcceptThreshold = 0.7
	// MaxConfidence is reported for an explicit single-letter marker.
	MaxConfidence = 1.0
)

var (
	// reMarker tolerates OCR damage: "C0RRECT ANSWER", "CORRECTANSWER",
	// "Correct Anwser is", "v CORRECT ANSWER" (a ticked box read as v).
	reMarker = regexp.MustCompile(`(?i)(?:^|[^a-z])c[o0]rrect\s*ans?w[e3]r\b(?:\s*is\b)?[\s:.\-)]*(.*)$`)
	// reLeadLetter accepts "B) Blue" or "(b). Blue" as an explicit letter.
	reLeadLetter = regexp.MustCompile(`(?i)^(?:option\s*)?(?:\(([a-d])\)|([a-d])[\).:])\s*\S`)
)

// Result is the resolver's answer. An empty Letter means unresolved.
type Result struct {
	Letter     string
	Confidence float64
	Source     constants.AnswerSource
}

// Resolved reports whether a letter was found.
func (r Result) Resolved() bool {
	return r.Letter != ""
}

// Resolve runs the priority chain: explicit marker letter, fuzzy match of
// the marker text, fuzzy match of the explanation. It never fails.
func Resolve(opts entity.Options, explanation, raw string) Result {
	marker, found := MarkerText(raw)
	if found {
		if letter := MarkerLetter(marker); letter != "" {
			return Result{Letter: letter, Confidence: MaxConfidence, Source: constants.AnswerSourceMarker}
		}
		if letter, score := BestMatch(marker, opts); letter != "" {
			return Result{Letter: letter, Confidence: score, Source: constants.AnswerSourceMarkerFuzzy}
		}
	}
	if strings.TrimSpace(explanation) != "" {
		if letter, score := BestMatch(explanation, opts); letter != "" {
			return Result{Letter: letter, Confidence: score, Source: constants.AnswerSourceExplanationFuzzy}
		}
	}
	return Result{}
}

// MarkerText finds the first "correct answer" marker in raw and returns the
// text after it. An empty remainder is taken from the next non-empty line.
func MarkerText(raw string) (string, bool) {
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		m := reMarker.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		if rest := strings.TrimSpace(m[1]); rest != "" {
			return rest, true
		}
		for _, next := range lines[i+1:] {
			if next = strings.TrimSpace(next); next != "" {
				return next, true
			}
		}
		return "", true
	}
	return "", false
}

// MarkerLetter returns the option letter when the marker text is a bare
// label ("B", "(b)", "Option B") or a label followed by the option text.
func MarkerLetter(text string) string {
	if l := entity.CanonicalLetter(text); l != "" {
		return l
	}
	m := reLeadLetter.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return strings.ToLower(m[1])
	}
	return strings.ToLower(m[2])
}

// BestMatch fuzzy-compares text with every non-empty option and returns the
// best letter when its score exceeds AcceptThreshold. On an exact tie the
// earliest letter is kept.
func BestMatch(text string, opts entity.Options) (string, float64) {
	best, bestScore := "", 0.0
	for _, l := range entity.Letters {
		opt := opts.Get(l)
		if strings.TrimSpace(opt) == "" {
			continue
		}
		if score := TokenSetRatio(text, opt); score > bestScore {
			best, bestScore = l, score
		}
	}
	if best == "" || bestScore <= AcceptThreshold {
		return "", 0
	}
	return best, bestScore
}
