package classify

import (
	"slices"
	"testing"

	"github.com/joseph-ayodele/exam-extractor/constants"
	"github.com/joseph-ayodele/exam-extractor/internal/entity"
)

func sky() entity.Question {
	return entity.Question{
		QuestionText:  "What color is the sky?",
		Options:       entity.Options{A: "Green", B: "Blue", C: "Red", D: "Yellow"},
		CorrectOption: "b",
	}
}

func TestClassifyAccepted(t *testing.T) {
	t.Parallel()
	d := Classify(sky(), Policy{})
	if !d.Accepted() || len(d.Reasons) != 0 {
		t.Fatalf("expected accepted without reasons, got %+v", d)
	}

	q := sky()
	q.CorrectOption = ""
	q.Options = entity.Options{C: "Red"}
	if d := Classify(q, Policy{}); !d.Accepted() {
		t.Fatalf("expected one option and no answer to be accepted, got %+v", d)
	}
}

func TestClassifyReview(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		mutate func(*entity.Question)
		policy Policy
		reason string
	}{
		{"missing question", func(q *entity.Question) { q.QuestionText = "  " }, Policy{}, ReasonMissingQuestion},
		{"no options", func(q *entity.Question) { q.Options = entity.Options{}; q.CorrectOption = "" }, Policy{}, ReasonNoOptions},
		{"answer slot empty", func(q *entity.Question) { q.Options.D = ""; q.CorrectOption = "d" }, Policy{}, ReasonAnswerOptionEmpty},
		{"invalid letter", func(q *entity.Question) { q.CorrectOption = "B" }, Policy{}, ReasonInvalidAnswerLetter},
		{"answer required", func(q *entity.Question) { q.CorrectOption = "" }, Policy{RequireAnswer: true}, ReasonMissingAnswer},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			q := sky()
			tc.mutate(&q)
			d := Classify(q, tc.policy)
			if d.Bucket != constants.BucketReview {
				t.Fatalf("expected review bucket, got %q", d.Bucket)
			}
			if !slices.Contains(d.Reasons, tc.reason) {
				t.Fatalf("expected reason %q in %v", tc.reason, d.Reasons)
			}
		})
	}
}
