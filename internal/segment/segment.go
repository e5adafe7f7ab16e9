// Package segment splits normalized exam text into one chunk per question.
package segment

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxChunkLines bounds a chunk whose next heading never arrives, so one
// malformed heading cannot swallow the rest of the document.
const MaxChunkLines = 120

var (
	// reHeading matches "7.", "7)", "7 -", "Q7", "Q 7:", "Question 7." at line start.
	reHeading = regexp.MustCompile(`(?i)^(?:q(?:uestion)?\s*\.?\s*(\d{1,3})|(\d{1,4}))([\).:\-]*)(\s*)(.*)$`)

	// reInline finds a numbered heading that OCR glued onto the end of a
	// previous line: "... Yellow 8. Which ...".
	reInline = regexp.MustCompile(`(?:^|\s)(?:Q\s*)?(\d{1,4})[\).]\s+\S`)
)

// Chunk is a contiguous span of the normalized document believed to hold one
// question. Offset and Length are byte positions in that document.
type Chunk struct {
	Index  int
	Offset int
	Length int
	Number string // heading label; "" for paragraph chunks
	Lines  []string

	lineOffsets []int
}

// Text returns the chunk lines joined by newlines.
func (c Chunk) Text() string {
	return strings.Join(c.Lines, "\n")
}

// SplitHeading reports whether line starts with a question heading, and
// returns the heading number and the text after the heading delimiter.
func SplitHeading(line string) (number, rest string, ok bool) {
	m := reHeading.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	number = m[1]
	prefixed := number != ""
	if !prefixed {
		number = m[2]
	}
	delim, space, rest := m[3], m[4], m[5]

	switch {
	case delim == "" && space == "":
		// "123abc" or a bare number glued to text
		if !prefixed || rest != "" && startsWithDigit(rest) {
			return "", "", false
		}
	case delim == "":
		// "7 What ..." is a heading, "100 200" is not
		if rest != "" && startsWithDigit(rest) {
			return "", "", false
		}
		if !prefixed && rest == "" {
			return "", "", false
		}
	case space == "":
		// "7.What" is a heading, "10.5%" is not
		if rest != "" && startsWithDigit(rest) {
			return "", "", false
		}
	}
	return number, strings.TrimSpace(rest), true
}

// IsHeading reports whether line starts a new question.
func IsHeading(line string) bool {
	_, _, ok := SplitHeading(line)
	return ok
}

func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r)
}

type line struct {
	text string
	off  int
}

func splitLines(text string) []line {
	var out []line
	off := 0
	for _, t := range strings.Split(text, "\n") {
		out = append(out, line{text: t, off: off})
		off += len(t) + 1
	}
	return out
}

// Segment splits text into question chunks. Lines before the first heading
// are front matter and are dropped. When no heading exists anywhere the text
// is split on blank lines instead.
func Segment(text string) []Chunk {
	lines := splitLines(text)
	chunks := scan(lines)
	if len(chunks) == 0 {
		chunks = paragraphs(lines)
	} else {
		chunks = resplit(chunks)
	}
	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks
}

type scanState int

const (
	seekingHeading scanState = iota
	inChunk
)

type builder struct {
	number string
	lines  []line
}

func (b *builder) add(l line) {
	if strings.TrimSpace(l.text) == "" {
		return
	}
	b.lines = append(b.lines, l)
}

func (b *builder) chunk() Chunk {
	c := Chunk{Number: b.number}
	for _, l := range b.lines {
		c.Lines = append(c.Lines, l.text)
		c.lineOffsets = append(c.lineOffsets, l.off)
	}
	first, last := b.lines[0], b.lines[len(b.lines)-1]
	c.Offset = first.off
	c.Length = last.off + len(last.text) - first.off
	return c
}

func scan(lines []line) []Chunk {
	var out []Chunk
	var cur *builder
	state := seekingHeading

	flush := func() {
		if cur != nil && len(cur.lines) > 0 {
			out = append(out, cur.chunk())
		}
		cur = nil
	}

	for _, l := range lines {
		if number, _, ok := SplitHeading(l.text); ok {
			flush()
			cur = &builder{number: number}
			cur.add(l)
			state = inChunk
			continue
		}
		if state != inChunk {
			continue
		}
		if len(cur.lines) >= MaxChunkLines {
			flush()
			state = seekingHeading
			continue
		}
		cur.add(l)
	}
	flush()
	return out
}

func paragraphs(lines []line) []Chunk {
	var out []Chunk
	cur := &builder{}
	flush := func() {
		if len(cur.lines) > 0 {
			out = append(out, cur.chunk())
		}
		cur = &builder{}
	}
	for _, l := range lines {
		if strings.TrimSpace(l.text) == "" || len(cur.lines) >= MaxChunkLines {
			flush()
		}
		cur.add(l)
	}
	flush()
	return out
}

// resplit re-splits chunks that swallowed the next question because OCR
// glued its heading onto a previous line. Only the sequentially next number
// counts as a heading, so "costs 5. The" inside question 9 is left alone.
func resplit(chunks []Chunk) []Chunk {
	var out []Chunk
	for _, c := range chunks {
		for {
			head, tail, ok := splitAtNext(c)
			if !ok {
				out = append(out, c)
				break
			}
			out = append(out, head)
			c = tail
		}
	}
	return out
}

func splitAtNext(c Chunk) (Chunk, Chunk, bool) {
	n, err := strconv.Atoi(c.Number)
	if err != nil {
		return c, Chunk{}, false
	}
	want := strconv.Itoa(n + 1)

	for i, text := range c.Lines {
		from := 0
		if i == 0 {
			// skip the chunk's own heading
			from = 1
		}
		for _, loc := range reInline.FindAllStringSubmatchIndex(text, -1) {
			numStart, numEnd := loc[2], loc[3]
			if loc[0] < from || text[numStart:numEnd] != want {
				continue
			}
			start := loc[0]
			if start < len(text) && text[start] == ' ' {
				start++
			}
			before := strings.TrimRight(text[:start], " ")
			if i == 0 && before == "" {
				continue
			}

			headLines := append(append([]string{}, c.Lines[:i]...), before)
			headOffs := append([]int{}, c.lineOffsets[:i+1]...)
			if before == "" {
				headLines, headOffs = headLines[:i], headOffs[:i]
			}
			head := Chunk{Number: c.Number, Lines: headLines, lineOffsets: headOffs, Offset: c.Offset}
			lastIdx := len(headLines) - 1
			head.Length = headOffs[lastIdx] + len(headLines[lastIdx]) - c.Offset

			tailLines := append([]string{text[start:]}, c.Lines[i+1:]...)
			tailOffs := append([]int{c.lineOffsets[i] + start}, c.lineOffsets[i+1:]...)
			tail := Chunk{Number: want, Lines: tailLines, lineOffsets: tailOffs, Offset: tailOffs[0]}
			end := tailOffs[len(tailOffs)-1] + len(tailLines[len(tailLines)-1])
			tail.Length = end - tail.Offset
			return head, tail, true
		}
	}
	return c, Chunk{}, false
}
