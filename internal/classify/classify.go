// Package classify routes a finished question into the accepted or the
// review collection.
package classify

import (
	"strings"

	"github.com/joseph-ayodele/exam-extractor/constants"
	"github.com/joseph-ayodele/exam-extractor/internal/entity"
)

// Review reason codes, copied onto review records.
const (
	ReasonMissingQuestion     = "missing_question_text"
	ReasonNoOptions           = "no_options"
	ReasonAnswerOptionEmpty   = "answer_option_empty"
	ReasonInvalidAnswerLetter = "invalid_answer_letter"
	ReasonMissingAnswer       = "missing_answer"
)

// Policy tunes acceptance. The zero value accepts records without a
// resolved answer so a human can fill it in later.
type Policy struct {
	RequireAnswer bool
}

type Decision struct {
	Bucket  constants.Bucket
	Reasons []string
}

// Accepted reports whether the decision is the accepted bucket.
func (d Decision) Accepted() bool {
	return d.Bucket == constants.BucketAccepted
}

// Classify accepts a record with question text and at least one option;
// anything else, or a correct_option that points at nothing, goes to review.
func Classify(q entity.Question, p Policy) Decision {
	var reasons []string
	if strings.TrimSpace(q.QuestionText) == "" {
		reasons = append(reasons, ReasonMissingQuestion)
	}
	if !q.Options.Any() {
		reasons = append(reasons, ReasonNoOptions)
	}
	switch {
	case q.CorrectOption == "":
		if p.RequireAnswer {
			reasons = append(reasons, ReasonMissingAnswer)
		}
	case entity.CanonicalLetter(q.CorrectOption) != q.CorrectOption:
		reasons = append(reasons, ReasonInvalidAnswerLetter)
	case strings.TrimSpace(q.Options.Get(q.CorrectOption)) == "":
		reasons = append(reasons, ReasonAnswerOptionEmpty)
	}

	if len(reasons) > 0 {
		return Decision{Bucket: constants.BucketReview, Reasons: reasons}
	}
	return Decision{Bucket: constants.BucketAccepted}
}
