package entity

import (
	"regexp"
	"strings"
)

// Letters is the fixed option key set, in display order.
var Letters = []string{"a", "b", "c", "d"}

// Options is a total four-slot mapping. Every key is always present when
// serialized; a missing option is the empty string.
type Options struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
	D string `json:"d"`
}

// Get returns the text for a letter; unknown letters yield "".
func (o Options) Get(letter string) string {
	switch CanonicalLetter(letter) {
	case "a":
		return o.A
	case "b":
		return o.B
	case "c":
		return o.C
	case "d":
		return o.D
	}
	return ""
}

// Set stores text under letter. It reports false for an unknown letter.
func (o *Options) Set(letter, text string) bool {
	switch CanonicalLetter(letter) {
	case "a":
		o.A = text
	case "b":
		o.B = text
	case "c":
		o.C = text
	case "d":
		o.D = text
	default:
		return false
	}
	return true
}

// Any reports whether at least one slot is non-empty.
func (o Options) Any() bool {
	return o.Count() > 0
}

// Count returns the number of non-empty slots.
func (o Options) Count() int {
	n := 0
	for _, l := range Letters {
		if strings.TrimSpace(o.Get(l)) != "" {
			n++
		}
	}
	return n
}

// Slice returns the option texts in a..d order.
func (o Options) Slice() []string {
	return []string{o.A, o.B, o.C, o.D}
}

var reLetter = regexp.MustCompile(`(?i)^(?:option\s*)?\(?([a-d])\)?[\s.:)\-]*$`)

// CanonicalLetter maps the many spellings of an option label ("B", "b)",
// "(b)", "Option B", "b.") to a lower-case letter. It returns "" when the
// input is not a single option label.
func CanonicalLetter(s string) string {
	m := reLetter.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}
