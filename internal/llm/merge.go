package llm

import (
	"strings"

	"github.com/joseph-ayodele/exam-extractor/internal/entity"
)

// Merge overlays rec on base field by field. A non-empty LLM value replaces
// the heuristic one; an empty LLM value never erases it. The answer letter
// is not merged here: the caller decides between marker and LLM letters.
func Merge(base Input, rec *Record) Input {
	if rec == nil {
		return base
	}
	out := base
	if s := strings.TrimSpace(rec.Question); s != "" {
		out.QuestionText = s
	}
	if s := strings.TrimSpace(rec.Explanation); s != "" {
		out.Explanation = s
	}
	for _, l := range entity.Letters {
		if s := strings.TrimSpace(rec.Options.Get(l)); s != "" {
			out.Options.Set(l, s)
		}
	}
	return out
}
