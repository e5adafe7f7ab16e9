package llm

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/joseph-ayodele/exam-extractor/internal/entity"
)

// NormalizeRecordJSON reshapes a decoded LLM object into the record schema:
//   - renames known synonyms (answer, correct_answer -> correct_option)
//   - accepts options as an array or as option_a.. keys, lower-cases option keys
//   - canonicalizes the answer letter
//   - turns nulls into empty strings
//   - removes unknown keys
//
// Values of the wrong JSON type (an object for the question, an array for
// an option) are left as they are so that schema validation rejects them.
//
// It returns the cleaned map and the list of adjustments made.
func NormalizeRecordJSON(m map[string]any, logger *slog.Logger) (map[string]any, []string) {
	if logger == nil {
		logger = slog.Default()
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}

	changed := make([]string, 0, 4)
	renamed := func(from, to string) {
		v, ok := out[from]
		if !ok {
			return
		}
		if _, exists := out[to]; !exists {
			out[to] = v
		}
		delete(out, from)
		changed = append(changed, from+"->"+to)
	}
	renamed("question_text", "question")
	renamed("answer", "correct_option")
	renamed("correct_answer", "correct_option")
	renamed("correct", "correct_option")

	opts, flat := normalizeOptions(out["options"])
	for _, l := range entity.Letters {
		key := "option_" + l
		if v, ok := out[key]; ok {
			if opts[l] == "" {
				opts[l] = optionValue(v)
			}
			delete(out, key)
			flat = true
		}
	}
	if flat {
		changed = append(changed, "options(reshaped)")
	}
	out["options"] = opts

	for _, k := range []string{"question", "explanation"} {
		out[k] = textValue(out[k])
	}

	rawLetter, isText := textValue(out["correct_option"]).(string)
	if !isText {
		changed = append(changed, "correct_option(invalid)")
		rawLetter = ""
	}
	letter := entity.CanonicalLetter(rawLetter)
	if letter == "" && rawLetter != "" {
		// "Blue" instead of "b": map option text back to its letter
		for _, l := range entity.Letters {
			if t := asString(opts[l]); t != "" && strings.EqualFold(t, rawLetter) {
				letter = l
				break
			}
		}
		if letter == "" {
			changed = append(changed, "correct_option(invalid)")
		}
	}
	if isText {
		out["correct_option"] = letter
	}

	allowed := map[string]struct{}{
		"question": {}, "options": {}, "correct_option": {}, "explanation": {},
	}
	for k := range maps.Clone(out) {
		if _, ok := allowed[k]; !ok {
			delete(out, k)
			changed = append(changed, k+"(unknown)")
		}
	}

	if len(changed) > 0 {
		logger.Debug("llm.reconcile.normalize", "changed", slices.Clone(changed))
	}
	return out, changed
}

// normalizeOptions accepts {"A": ..}, {"a)": ..} or ["..", ..] and always
// returns all four keys. The bool reports whether reshaping was needed.
func normalizeOptions(v any) (map[string]any, bool) {
	opts := map[string]any{"a": "", "b": "", "c": "", "d": ""}
	switch t := v.(type) {
	case map[string]any:
		reshaped := false
		for k, val := range t {
			l := entity.CanonicalLetter(k)
			if l == "" {
				reshaped = true
				continue
			}
			if l != k {
				reshaped = true
			}
			opts[l] = optionValue(val)
		}
		return opts, reshaped
	case []any:
		for i, val := range t {
			if i >= len(entity.Letters) {
				break
			}
			v := optionValue(val)
			// drop a leading "A) " the model may have echoed back
			if text, ok := v.(string); ok {
				if l, rest, ok := splitLabel(text); ok && l == entity.Letters[i] {
					v = rest
				}
			}
			opts[entity.Letters[i]] = v
		}
		return opts, true
	}
	return opts, v != nil
}

func splitLabel(s string) (string, string, bool) {
	if len(s) < 3 {
		return "", "", false
	}
	if l := entity.CanonicalLetter(s[:2]); l != "" && s[2] == ' ' {
		return l, strings.TrimSpace(s[3:]), true
	}
	return "", "", false
}

// textValue trims strings and turns null into "". Anything else is returned
// unchanged.
func textValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	}
	return v
}

// optionValue is textValue that also accepts numeric and boolean options
// ("1999", "true").
func optionValue(v any) any {
	switch v.(type) {
	case float64, bool:
		return asString(v)
	}
	return textValue(v)
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	}
	return ""
}
