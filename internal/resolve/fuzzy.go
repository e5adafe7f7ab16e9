package resolve

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

// indel is Levenshtein with substitution priced as delete+insert, which
// turns the distance into the InDel distance behind the classic ratio.
var indel = levenshtein.NewParams().SubCost(2)

// Ratio is the normalized InDel similarity of a and b in [0,1].
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}
	d := levenshtein.Distance(a, b, indel)
	return 1 - float64(d)/float64(total)
}

// tokenSet lowercases s, splits it on anything that is not a letter or
// digit, and returns the sorted distinct tokens.
func tokenSet(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// TokenSetRatio scores a and b in [0,1] ignoring case, whitespace, word order
// and repeated words. When one token set contains the other the score is 1.
func TokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inB := make(map[string]struct{}, len(tb))
	for _, t := range tb {
		inB[t] = struct{}{}
	}
	inA := make(map[string]struct{}, len(ta))
	for _, t := range ta {
		inA[t] = struct{}{}
	}

	var sect, onlyA, onlyB []string
	for _, t := range ta {
		if _, ok := inB[t]; ok {
			sect = append(sect, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for _, t := range tb {
		if _, ok := inA[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}

	if len(sect) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 1
	}

	s := strings.Join(sect, " ")
	c1 := strings.TrimSpace(s + " " + strings.Join(onlyA, " "))
	c2 := strings.TrimSpace(s + " " + strings.Join(onlyB, " "))

	best := Ratio(c1, c2)
	if s != "" {
		best = max(best, Ratio(s, c1), Ratio(s, c2))
	}
	return best
}
