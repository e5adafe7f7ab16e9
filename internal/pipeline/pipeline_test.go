package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/joseph-ayodele/exam-extractor/constants"
	"github.com/joseph-ayodele/exam-extractor/internal/classify"
	"github.com/joseph-ayodele/exam-extractor/internal/common"
	"github.com/joseph-ayodele/exam-extractor/internal/entity"
	"github.com/joseph-ayodele/exam-extractor/internal/llm"
	"github.com/joseph-ayodele/exam-extractor/internal/ocr"
)

const skyText = "7. What color is the sky?\nA) Green\nB) Blue\nC) Red\nD) Yellow\nCORRECT ANSWER: B\nExplanation: Rayleigh scattering."

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type reply struct {
	rec *llm.Record
	raw string
	err error
}

// fakeReconciler replays replies in order and records the modes it saw.
type fakeReconciler struct {
	mu      sync.Mutex
	replies []reply
	modes   []llm.Mode
}

func (f *fakeReconciler) Enabled() bool { return true }

func (f *fakeReconciler) Reconcile(_ context.Context, _ llm.Input, mode llm.Mode) (*llm.Record, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modes = append(f.modes, mode)
	if len(f.replies) == 0 {
		return nil, "", fmt.Errorf("%w: no reply scripted", llm.ErrUnparseable)
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.rec, r.raw, r.err
}

func single(r llm.Reconciler) llm.Factory {
	return func() llm.Reconciler { return r }
}

func TestRunSkyScenario(t *testing.T) {
	t.Parallel()
	p := New(Config{}, nil, nil, quietLogger())
	res := p.Run(context.Background(), skyText)

	if len(res.Accepted) != 1 || len(res.Review) != 0 {
		t.Fatalf("expected one accepted record, got %d accepted and %d review", len(res.Accepted), len(res.Review))
	}
	q := res.Accepted[0]
	if q.QuestionText != "What color is the sky?" {
		t.Fatalf("unexpected question text %q", q.QuestionText)
	}
	want := entity.Options{A: "Green", B: "Blue", C: "Red", D: "Yellow"}
	if q.Options != want {
		t.Fatalf("expected %+v, got %+v", want, q.Options)
	}
	if q.CorrectOption != "b" || q.Explanation != "Rayleigh scattering." {
		t.Fatalf("unexpected answer %q / explanation %q", q.CorrectOption, q.Explanation)
	}
	if q.AnswerSource != constants.AnswerSourceMarker || q.Confidence != 1 {
		t.Fatalf("expected marker answer at full confidence, got %q %.2f", q.AnswerSource, q.Confidence)
	}
	if q.QuestionNumber != "7" || q.Provenance.ChunkIndex != 0 || q.Provenance.RawChunk != skyText {
		t.Fatalf("unexpected provenance %+v", q.Provenance)
	}
	if res.Stats.Chunks != 1 || res.Stats.Accepted != 1 || res.Stats.Cancelled {
		t.Fatalf("unexpected stats %+v", res.Stats)
	}
}

func TestRunFallbackScenario(t *testing.T) {
	t.Parallel()
	p := New(Config{}, nil, nil, quietLogger())
	res := p.Run(context.Background(), "12. Describe the settlement cycle in your own words.")

	if len(res.Accepted) != 0 || len(res.Review) != 1 {
		t.Fatalf("expected one review record, got %d accepted and %d review", len(res.Accepted), len(res.Review))
	}
	q := res.Review[0]
	if q.Options != (entity.Options{}) || q.CorrectOption != "" {
		t.Fatalf("expected empty options and answer, got %+v %q", q.Options, q.CorrectOption)
	}
	if len(q.ReviewReasons) == 0 || q.ReviewReasons[0] != classify.ReasonNoOptions {
		t.Fatalf("expected no_options reason, got %v", q.ReviewReasons)
	}
}

func TestRunEveryChunkLandsOnce(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	for i := 1; i <= 30; i++ {
		if i%3 == 0 {
			fmt.Fprintf(&b, "%d. Describe topic number %d.\n", i, i)
			continue
		}
		fmt.Fprintf(&b, "%d. Pick the first of set %d?\nA) first\nB) second\nCORRECT ANSWER: A\n", i, i)
	}

	p := New(Config{Workers: 4}, nil, nil, quietLogger())
	res := p.Run(context.Background(), b.String())

	if res.Stats.Chunks != 30 || res.Stats.Skipped != 0 {
		t.Fatalf("unexpected stats %+v", res.Stats)
	}
	if len(res.Accepted) != 20 || len(res.Review) != 10 {
		t.Fatalf("expected 20 accepted and 10 review, got %d and %d", len(res.Accepted), len(res.Review))
	}
	seen := make(map[int]bool)
	for _, coll := range [][]entity.Question{res.Accepted, res.Review} {
		last := -1
		for _, q := range coll {
			idx := q.Provenance.ChunkIndex
			if idx <= last {
				t.Fatalf("expected chunk order, index %d after %d", idx, last)
			}
			if seen[idx] {
				t.Fatalf("chunk %d emitted twice", idx)
			}
			seen[idx] = true
			last = idx
		}
	}
	if len(seen) != 30 {
		t.Fatalf("expected every chunk once, got %d", len(seen))
	}
}

func TestRunOneReconcilerPerWorker(t *testing.T) {
	t.Parallel()
	var built atomic.Int32
	factory := func() llm.Reconciler {
		built.Add(1)
		return llm.Disabled{}
	}
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "%d. Question %d?\nA) yes\nB) no\n", i, i)
	}
	p := New(Config{Workers: 3}, factory, nil, quietLogger())
	res := p.Run(context.Background(), b.String())
	if got := built.Load(); got != 3 {
		t.Fatalf("expected 3 reconcilers, got %d", got)
	}
	if res.Stats.Accepted != 10 {
		t.Fatalf("expected 10 accepted, got %+v", res.Stats)
	}
}

func TestRunStrictRetryAfterUnparseable(t *testing.T) {
	t.Parallel()
	fake := &fakeReconciler{replies: []reply{
		{raw: "Sorry, here is my answer: Jupiter", err: fmt.Errorf("%w: no object", llm.ErrUnparseable)},
		{
			rec: &llm.Record{
				Question:      "Which planet is the largest?",
				Options:       entity.Options{A: "Mars", B: "Jupiter", C: "Venus"},
				CorrectOption: "b",
			},
			raw: `{"question":"Which planet is the largest?"}`,
		},
	}}
	p := New(Config{}, single(fake), nil, quietLogger())
	res := p.Run(context.Background(), "3. Which planet is largest\nA) Mars\nB) Jupiter")

	if len(fake.modes) != 2 || fake.modes[0] != llm.ModeStandard || fake.modes[1] != llm.ModeStrict {
		t.Fatalf("expected standard then strict, got %v", fake.modes)
	}
	if len(res.Accepted) != 1 {
		t.Fatalf("expected accepted record, got %+v", res)
	}
	q := res.Accepted[0]
	if q.QuestionText != "Which planet is the largest?" || q.Options.C != "Venus" {
		t.Fatalf("expected merged fields, got %q %+v", q.QuestionText, q.Options)
	}
	if q.CorrectOption != "b" || q.AnswerSource != constants.AnswerSourceLLM || q.Confidence != LLMConfidence {
		t.Fatalf("expected LLM answer, got %q %q %.2f", q.CorrectOption, q.AnswerSource, q.Confidence)
	}
	if q.Provenance.LLMRaw != `{"question":"Which planet is the largest?"}` || q.Provenance.LLMError != "" {
		t.Fatalf("unexpected provenance %+v", q.Provenance)
	}
	if res.Stats.LLMFailures != 0 {
		t.Fatalf("expected no LLM failures, got %d", res.Stats.LLMFailures)
	}
}

func TestRunLLMFailureKeepsHeuristics(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		replies []reply
		calls   int
	}{
		{"transport error is not retried", []reply{{err: errors.New("connection reset")}}, 1},
		{"unparseable twice", []reply{
			{raw: "nope", err: llm.ErrUnparseable},
			{raw: "still nope", err: llm.ErrUnparseable},
		}, 2},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fake := &fakeReconciler{replies: tc.replies}
			p := New(Config{}, single(fake), nil, quietLogger())
			res := p.Run(context.Background(), skyText)
			if len(fake.modes) != tc.calls {
				t.Fatalf("expected %d calls, got %d", tc.calls, len(fake.modes))
			}
			if res.Stats.LLMFailures != 1 || len(res.Accepted) != 1 {
				t.Fatalf("unexpected result %+v", res.Stats)
			}
			q := res.Accepted[0]
			if q.CorrectOption != "b" || q.Options.D != "Yellow" || q.Provenance.LLMError == "" {
				t.Fatalf("expected heuristic record with error recorded, got %+v", q)
			}
		})
	}
}

func TestRunMarkerBeatsLLMLetter(t *testing.T) {
	t.Parallel()
	fake := &fakeReconciler{replies: []reply{{
		rec: &llm.Record{
			Question:      "What color is the sky?",
			Options:       entity.Options{A: "Green", B: "Blue", C: "Red", D: "Yellow"},
			CorrectOption: "c",
		},
		raw: "{}",
	}}}
	p := New(Config{}, single(fake), nil, quietLogger())
	res := p.Run(context.Background(), skyText)
	if len(res.Accepted) != 1 {
		t.Fatalf("expected one accepted record, got %+v", res.Stats)
	}
	if q := res.Accepted[0]; q.CorrectOption != "b" || q.AnswerSource != constants.AnswerSourceMarker {
		t.Fatalf("expected marker letter b to win, got %q from %q", q.CorrectOption, q.AnswerSource)
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(Config{Workers: 2}, nil, nil, quietLogger())
	res := p.Run(ctx, skyText+"\n8. Another question?\nA) yes\nB) no")
	if !res.Stats.Cancelled || res.Stats.Skipped != 2 {
		t.Fatalf("expected cancelled run with 2 skipped chunks, got %+v", res.Stats)
	}
	if res.Accepted == nil || res.Review == nil {
		t.Fatalf("expected empty, non-nil collections")
	}
}

// cancellingReconciler cancels the run from inside its n-th call.
type cancellingReconciler struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	onCall int
	calls  int
}

func (c *cancellingReconciler) Enabled() bool { return true }

func (c *cancellingReconciler) Reconcile(ctx context.Context, _ llm.Input, _ llm.Mode) (*llm.Record, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.calls == c.onCall {
		c.cancel()
		return nil, "", ctx.Err()
	}
	return nil, "", nil
}

func TestRunCancelledMidRunKeepsCompletedRecords(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	text := skyText +
		"\n8. Pick one?\nA) yes\nB) no\nCORRECT ANSWER: D" +
		"\n9. Third question?\nA) yes\nB) no" +
		"\n10. Fourth question?\nA) yes\nB) no"
	rec := &cancellingReconciler{cancel: cancel, onCall: 2}
	p := New(Config{Workers: 1}, single(rec), nil, quietLogger())
	res := p.Run(ctx, text)

	if !res.Stats.Cancelled || res.Stats.Chunks != 4 || res.Stats.Skipped != 2 {
		t.Fatalf("expected 2 of 4 chunks skipped after cancel, got %+v", res.Stats)
	}
	if len(res.Accepted) != 1 || res.Accepted[0].QuestionNumber != "7" || res.Accepted[0].Provenance.ChunkIndex != 0 {
		t.Fatalf("expected question 7 accepted, got %+v", res.Accepted)
	}
	if len(res.Review) != 1 || res.Review[0].QuestionNumber != "8" || res.Review[0].Provenance.ChunkIndex != 1 {
		t.Fatalf("expected question 8 in review, got %+v", res.Review)
	}
	if got := res.Review[0].ReviewReasons; len(got) == 0 || got[0] != classify.ReasonAnswerOptionEmpty {
		t.Fatalf("expected answer_option_empty, got %v", got)
	}
	if res.Stats.LLMFailures != 1 || res.Review[0].Provenance.LLMError == "" {
		t.Fatalf("expected the interrupted call recorded as a failure, got %+v", res.Stats)
	}
	if rec.calls != 2 {
		t.Fatalf("expected no calls after cancel, got %d", rec.calls)
	}
}

func TestRunSkipsLLMWithoutOptions(t *testing.T) {
	t.Parallel()
	fake := &fakeReconciler{}
	p := New(Config{}, single(fake), nil, quietLogger())
	res := p.Run(context.Background(), "12. Describe the settlement cycle in your own words.")
	if len(fake.modes) != 0 {
		t.Fatalf("expected no LLM call for a chunk without options, got %v", fake.modes)
	}
	if len(res.Review) != 1 || res.Stats.LLMFailures != 0 || res.Review[0].Provenance.LLMRaw != "" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRunAnswerRepeatedAfterMarker(t *testing.T) {
	t.Parallel()
	p := New(Config{}, nil, nil, quietLogger())
	res := p.Run(context.Background(),
		"7. What color is the sky?\nA) Green\nB) Blue\nC) Red\nD) Yellow\nCORRECT ANSWER\nB) Blue\nExplanation: Rayleigh scattering.")
	if len(res.Accepted) != 1 {
		t.Fatalf("expected one accepted record, got %+v", res.Stats)
	}
	q := res.Accepted[0]
	want := entity.Options{A: "Green", B: "Blue", C: "Red", D: "Yellow"}
	if q.Options != want {
		t.Fatalf("expected %+v, got %+v", want, q.Options)
	}
	if q.CorrectOption != "b" || q.AnswerSource != constants.AnswerSourceMarker {
		t.Fatalf("expected marker answer b, got %q %q", q.CorrectOption, q.AnswerSource)
	}
}

type fakeSource struct {
	res ocr.ExtractionResult
	err error
}

func (f fakeSource) Extract(context.Context, string) (ocr.ExtractionResult, error) {
	return f.res, f.err
}

func TestRunFile(t *testing.T) {
	t.Parallel()
	p := New(Config{}, nil, nil, quietLogger())

	src := fakeSource{res: ocr.ExtractionResult{
		Pages:  []entity.RawPage{{Source: "exam.pdf", Page: 1, Text: skyText}},
		Method: "pdf-text",
	}}
	res, err := p.RunFile(context.Background(), src, "exam.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stats.Accepted != 1 {
		t.Fatalf("expected one accepted record, got %+v", res.Stats)
	}

	missing := fakeSource{err: common.SourceUnavailableError("missing.pdf", errors.New("no such file"))}
	if _, err := p.RunFile(context.Background(), missing, "missing.pdf"); !errors.Is(err, common.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}
