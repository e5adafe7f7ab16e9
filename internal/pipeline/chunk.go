package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/exam-extractor/constants"
	"github.com/joseph-ayodele/exam-extractor/internal/classify"
	"github.com/joseph-ayodele/exam-extractor/internal/common"
	"github.com/joseph-ayodele/exam-extractor/internal/entity"
	"github.com/joseph-ayodele/exam-extractor/internal/extract"
	"github.com/joseph-ayodele/exam-extractor/internal/llm"
	"github.com/joseph-ayodele/exam-extractor/internal/metrics"
	"github.com/joseph-ayodele/exam-extractor/internal/resolve"
	"github.com/joseph-ayodele/exam-extractor/internal/segment"
	"github.com/joseph-ayodele/exam-extractor/internal/topic"
)

// LLMConfidence is reported when the answer letter came from the LLM.
const LLMConfidence = 0.9

type outcome struct {
	question  entity.Question
	bucket    constants.Bucket
	llmFailed bool
}

// processChunk turns one chunk into one classified record. It cannot fail;
// LLM trouble only means the heuristic fields are kept.
func (p *Pipeline) processChunk(ctx context.Context, rec llm.Reconciler, c segment.Chunk) outcome {
	start := time.Now()
	raw := c.Text()
	f := extract.Extract(c)

	q := entity.Question{
		ID:             uuid.New(),
		QuestionNumber: f.QuestionNumber,
		Provenance: entity.Provenance{
			ChunkIndex: c.Index,
			Offset:     c.Offset,
			Length:     c.Length,
			RawChunk:   raw,
			Strategy:   string(f.Strategy),
		},
	}

	in := llm.Input{QuestionText: f.QuestionText, Options: f.Options, Explanation: f.Explanation}
	merged := in
	var llmLetter string
	var llmFailed bool
	switch {
	case !rec.Enabled():
		p.metrics.ObserveLLM(metrics.LLMDisabled)
	case !f.Options.Any():
		// whole-block chunks have no options to reconcile
		p.metrics.ObserveLLM(metrics.LLMSkipped)
	default:
		record, llmRaw, err := p.reconcile(ctx, rec, in)
		q.Provenance.LLMRaw = llmRaw
		if err != nil {
			q.Provenance.LLMError = err.Error()
			llmFailed = true
		}
		if record != nil {
			merged = llm.Merge(in, record)
			llmLetter = record.CorrectOption
		}
	}

	q.QuestionText = merged.QuestionText
	q.Options = merged.Options
	q.Explanation = merged.Explanation

	ans := resolve.Resolve(merged.Options, merged.Explanation, raw)
	switch {
	case ans.Source == constants.AnswerSourceMarker:
		// an explicit marker letter is never overridden
	case llmLetter != "" && entity.CanonicalLetter(llmLetter) == llmLetter && merged.Options.Get(llmLetter) != "":
		ans = resolve.Result{Letter: llmLetter, Confidence: LLMConfidence, Source: constants.AnswerSourceLLM}
	}
	q.CorrectOption = ans.Letter
	q.Confidence = ans.Confidence
	q.AnswerSource = ans.Source
	q.Topic = topic.Infer(q.QuestionText, q.Explanation)

	d := classify.Classify(q, p.cfg.Policy)
	q.ReviewReasons = d.Reasons

	p.metrics.ObserveAnswer(string(ans.Source))
	p.metrics.ObserveChunk(string(d.Bucket), time.Since(start).Seconds())
	p.logger.Debug("pipeline.chunk.ok",
		"run_id", common.RunIDFromContext(ctx),
		"chunk", c.Index,
		"number", f.QuestionNumber,
		"strategy", f.Strategy,
		"bucket", d.Bucket,
		"answer_source", ans.Source,
		"reasons", d.Reasons,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return outcome{question: q, bucket: d.Bucket, llmFailed: llmFailed}
}

// reconcile makes the standard call and, only when its output could not be
// parsed, one strict retry. Transport errors and timeouts are not retried.
func (p *Pipeline) reconcile(ctx context.Context, rec llm.Reconciler, in llm.Input) (*llm.Record, string, error) {
	record, raw, err := rec.Reconcile(ctx, in, llm.ModeStandard)
	if err == nil {
		if record != nil {
			p.metrics.ObserveLLM(metrics.LLMOK)
		}
		return record, raw, nil
	}
	if !errors.Is(err, llm.ErrUnparseable) || ctx.Err() != nil {
		p.metrics.ObserveLLM(metrics.LLMError)
		p.logger.Warn("pipeline.llm.failed",
			"run_id", common.RunIDFromContext(ctx),
			"chunk", common.ChunkIndexFromContext(ctx),
			"error", err,
		)
		return nil, raw, err
	}

	p.logger.Info("pipeline.llm.retry_strict",
		"run_id", common.RunIDFromContext(ctx),
		"chunk", common.ChunkIndexFromContext(ctx),
	)
	record, retryRaw, retryErr := rec.Reconcile(ctx, in, llm.ModeStrict)
	if retryRaw != "" {
		raw = retryRaw
	}
	if retryErr != nil {
		if errors.Is(retryErr, llm.ErrUnparseable) {
			p.metrics.ObserveLLM(metrics.LLMUnparseable)
		} else {
			p.metrics.ObserveLLM(metrics.LLMError)
		}
		p.logger.Warn("pipeline.llm.failed",
			"run_id", common.RunIDFromContext(ctx),
			"chunk", common.ChunkIndexFromContext(ctx),
			"error", retryErr,
		)
		return nil, raw, retryErr
	}
	p.metrics.ObserveLLM(metrics.LLMRetryOK)
	return record, raw, nil
}
