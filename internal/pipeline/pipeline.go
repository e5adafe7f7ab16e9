// Package pipeline wires segmentation, extraction, answer resolution, LLM
// reconciliation and classification into one ordered run.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/exam-extractor/constants"
	"github.com/joseph-ayodele/exam-extractor/internal/async"
	"github.com/joseph-ayodele/exam-extractor/internal/classify"
	"github.com/joseph-ayodele/exam-extractor/internal/common"
	"github.com/joseph-ayodele/exam-extractor/internal/entity"
	"github.com/joseph-ayodele/exam-extractor/internal/llm"
	"github.com/joseph-ayodele/exam-extractor/internal/metrics"
	"github.com/joseph-ayodele/exam-extractor/internal/ocr"
	"github.com/joseph-ayodele/exam-extractor/internal/segment"
)

type Config struct {
	Workers    int           // default 1
	JobTimeout time.Duration // per-chunk bound on LLM work; 0 means none
	Policy     classify.Policy
}

// Stats summarizes one run.
type Stats struct {
	Chunks      int           `json:"chunks"`
	Accepted    int           `json:"accepted"`
	Review      int           `json:"review"`
	Skipped     int           `json:"skipped"`
	LLMFailures int           `json:"llm_failures"`
	Cancelled   bool          `json:"cancelled"`
	Duration    time.Duration `json:"duration"`
}

// Result holds both output collections in chunk order.
type Result struct {
	Accepted []entity.Question
	Review   []entity.Question
	Stats    Stats
}

type Pipeline struct {
	cfg     Config
	factory llm.Factory
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New builds a pipeline. A nil factory disables LLM reconciliation; a nil
// metrics set records nothing.
func New(cfg Config, factory llm.Factory, m *metrics.Metrics, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if factory == nil {
		factory = llm.Select(nil, logger)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Pipeline{cfg: cfg, factory: factory, metrics: m, logger: logger}
}

// Run processes raw OCR text. It never fails: every chunk becomes exactly one
// record in one collection. When ctx is cancelled, chunks not yet dispatched
// are skipped and the records produced so far are returned in order.
func (p *Pipeline) Run(ctx context.Context, raw string) Result {
	start := time.Now()
	runID := uuid.New().String()
	ctx = common.WithRunID(ctx, runID)

	text := ocr.Normalize(raw)
	chunks := segment.Segment(text)
	p.logger.Info("pipeline.run.start",
		"run_id", runID,
		"chunks", len(chunks),
		"workers", p.cfg.Workers,
		"bytes", len(text),
	)

	pool := async.NewPool(p.logger,
		async.WithWorkers(p.cfg.Workers),
		async.WithJobTimeout(p.cfg.JobTimeout),
	)
	outcomes, done := async.Run(ctx, pool, len(chunks), func(workerID int) async.Worker[outcome] {
		// one reconciler, and so one LLM client, per worker
		rec := p.factory()
		return func(jctx context.Context, i int) outcome {
			return p.processChunk(common.WithChunkIndex(jctx, i), rec, chunks[i])
		}
	})

	res := Result{Accepted: []entity.Question{}, Review: []entity.Question{}}
	res.Stats.Chunks = len(chunks)
	for i, o := range outcomes {
		if !done[i] {
			res.Stats.Skipped++
			continue
		}
		if o.llmFailed {
			res.Stats.LLMFailures++
		}
		if o.bucket == constants.BucketAccepted {
			res.Accepted = append(res.Accepted, o.question)
		} else {
			res.Review = append(res.Review, o.question)
		}
	}
	res.Stats.Accepted = len(res.Accepted)
	res.Stats.Review = len(res.Review)
	res.Stats.Cancelled = ctx.Err() != nil
	res.Stats.Duration = time.Since(start)

	level := slog.LevelInfo
	if res.Stats.Cancelled {
		level = slog.LevelWarn
	}
	p.logger.Log(ctx, level, "pipeline.run.done",
		"run_id", runID,
		"accepted", res.Stats.Accepted,
		"review", res.Stats.Review,
		"skipped", res.Stats.Skipped,
		"llm_failures", res.Stats.LLMFailures,
		"cancelled", res.Stats.Cancelled,
		"elapsed_ms", res.Stats.Duration.Milliseconds(),
	)
	return res
}
