// Package extract recovers question text, options and explanation from a
// single question chunk using layered heuristics.
package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/exam-extractor/internal/entity"
	"github.com/joseph-ayodele/exam-extractor/internal/segment"
)

// Strategy names the heuristic that produced the options.
type Strategy string

const (
	StrategyLettered   Strategy = "lettered"
	StrategyPositional Strategy = "positional"
	StrategyWholeBlock Strategy = "whole_block"
)

const (
	// OptionCount is the number of option slots a question has.
	OptionCount = 4
	// MaxOptionWords is the longest line the positional heuristic treats as an option.
	MaxOptionWords = 10
)

var (
	reExplanation = regexp.MustCompile(`(?i)^explanations?\b[\s:.\-]*(.*)$`)
	reParenLabel  = regexp.MustCompile(`^\(([A-Da-d])\)\s*(.*)$`)
	reBareLabel   = regexp.MustCompile(`^([A-Da-d])[\).:\-]\s*(.*)$`)
	reMarkerLine  = regexp.MustCompile(`(?i)^(?:[vyx%]\s*)?(?:c[o0]rrect|wr[o0]ng)\b`)
)

// Fields is the best-effort extraction for one chunk. Missing parts are "".
type Fields struct {
	QuestionNumber string
	QuestionText   string
	Options        entity.Options
	Explanation    string
	MarkerLines    []string
	Strategy       Strategy
}

// IsMarkerLine reports whether line is an answer marker such as
// "CORRECT ANSWER: B" or "% WRONG".
func IsMarkerLine(line string) bool {
	return reMarkerLine.MatchString(strings.TrimSpace(line))
}

// OptionLabel parses a lettered option line ("A) text", "(b) text", "C. text").
// A bare "A text" is not a label: it reads the same as prose.
func OptionLabel(line string) (letter, text string, ok bool) {
	line = strings.TrimSpace(line)
	m := reParenLabel.FindStringSubmatch(line)
	if m == nil {
		m = reBareLabel.FindStringSubmatch(line)
	}
	if m == nil {
		return "", "", false
	}
	return strings.ToLower(m[1]), strings.TrimSpace(m[2]), true
}

// Extract never fails; unrecoverable fields come back empty and the options
// mapping always carries all four slots.
func Extract(c segment.Chunk) Fields {
	var f Fields
	lines := make([]string, 0, len(c.Lines))
	for i, l := range c.Lines {
		l = strings.TrimSpace(l)
		if i == 0 {
			if num, rest, ok := segment.SplitHeading(l); ok {
				f.QuestionNumber = num
				l = rest
			}
		}
		if l != "" {
			lines = append(lines, l)
		}
	}

	body, explanation := splitExplanation(lines)
	f.Explanation = explanation
	for _, l := range body {
		if IsMarkerLine(l) {
			f.MarkerLines = append(f.MarkerLines, l)
		}
	}

	if q, opts, ok := lettered(body); ok {
		f.QuestionText, f.Options, f.Strategy = q, opts, StrategyLettered
		return f
	}
	if q, opts, ok := positional(body); ok {
		f.QuestionText, f.Options, f.Strategy = q, opts, StrategyPositional
		return f
	}
	f.QuestionText = joinNonMarker(body)
	f.Strategy = StrategyWholeBlock
	return f
}

// splitExplanation cuts at the first line that starts with "explanation".
func splitExplanation(lines []string) (body []string, explanation string) {
	for i, l := range lines {
		m := reExplanation.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		rest := []string{}
		if s := strings.TrimSpace(m[1]); s != "" {
			rest = append(rest, s)
		}
		rest = append(rest, lines[i+1:]...)
		return lines[:i], strings.Join(rest, " ")
	}
	return lines, ""
}

type letteredState int

const (
	inQuestion letteredState = iota
	inOption
	inMarker
)

// lettered treats labeled lines as authoritative once at least two exist.
// Unlabeled lines continue the current option (OCR line wrapping); marker
// lines close it. A label after a marker whose slot is already filled is the
// marker's answer, not an option.
func lettered(lines []string) (string, entity.Options, bool) {
	labeled := 0
	for _, l := range lines {
		if _, _, ok := OptionLabel(l); ok {
			labeled++
		}
	}
	if labeled < 2 {
		return "", entity.Options{}, false
	}

	var (
		opts     entity.Options
		question []string
		current  string
		state    = inQuestion
	)
	appendTo := func(letter, text string) {
		if text == "" {
			return
		}
		if prev := opts.Get(letter); prev != "" {
			text = prev + " " + text
		}
		opts.Set(letter, text)
	}

	for _, l := range lines {
		if letter, text, ok := OptionLabel(l); ok {
			switch {
			case opts.Get(letter) == "":
			case state == inMarker:
				// "CORRECT ANSWER" then "B) Blue" repeats an option as the answer
				continue
			case state == inOption:
				// repeated label: keep it as continuation of the current option
				appendTo(current, l)
				continue
			}
			current = letter
			appendTo(current, text)
			state = inOption
			continue
		}
		if IsMarkerLine(l) {
			state = inMarker
			continue
		}
		switch state {
		case inQuestion:
			question = append(question, l)
		case inOption:
			appendTo(current, l)
		case inMarker:
			// answer text following a marker belongs to the marker
		}
	}
	return strings.Join(question, " "), opts, true
}

// positional picks four adjacent short lines as options a..d when there are
// no labels. The first content line is the question and never a candidate.
func positional(lines []string) (string, entity.Options, bool) {
	if len(lines) < OptionCount+1 {
		return "", entity.Options{}, false
	}

	type run struct{ start, end int } // [start, end)
	var runs []run
	open := -1
	for i := 1; i <= len(lines); i++ {
		if i < len(lines) && isOptionCandidate(lines[i]) {
			if open < 0 {
				open = i
			}
			continue
		}
		if open >= 0 {
			runs = append(runs, run{open, i})
			open = -1
		}
	}

	chosen := -1
	for _, r := range runs {
		if r.end-r.start == OptionCount {
			chosen = r.start
			break
		}
	}
	if chosen < 0 {
		for _, r := range runs {
			if r.end-r.start > OptionCount {
				chosen = r.end - OptionCount
				break
			}
		}
	}
	if chosen < 0 {
		return "", entity.Options{}, false
	}

	var opts entity.Options
	for k := 0; k < OptionCount; k++ {
		opts.Set(entity.Letters[k], lines[chosen+k])
	}
	return joinNonMarker(lines[:chosen]), opts, true
}

func isOptionCandidate(line string) bool {
	if IsMarkerLine(line) {
		return false
	}
	if strings.HasSuffix(line, "?") || strings.HasSuffix(line, ":") {
		return false
	}
	n := len(strings.Fields(line))
	return n >= 1 && n <= MaxOptionWords
}

func joinNonMarker(lines []string) string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if !IsMarkerLine(l) {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, " ")
}
