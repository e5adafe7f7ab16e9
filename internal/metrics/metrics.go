// Package metrics holds the prometheus collectors for an extraction run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "exam_extractor"

// LLM outcomes recorded by ObserveLLM.
const (
	LLMDisabled    = "disabled"
	LLMSkipped     = "skipped"
	LLMOK          = "ok"
	LLMRetryOK     = "retry_ok"
	LLMUnparseable = "unparseable"
	LLMError       = "error"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	Chunks        *prometheus.CounterVec
	LLMCalls      *prometheus.CounterVec
	AnswerSources *prometheus.CounterVec
	ChunkDuration prometheus.Histogram
}

// New builds the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Chunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Question chunks processed, by output bucket.",
		}, []string{"bucket"}),
		LLMCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_reconcile_total",
			Help:      "LLM reconciliation attempts, by outcome.",
		}, []string{"outcome"}),
		AnswerSources: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answer_source_total",
			Help:      "Resolved answers, by the rule that produced them.",
		}, []string{"source"}),
		ChunkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_duration_seconds",
			Help:      "Wall time to turn one chunk into a record.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Chunks, m.LLMCalls, m.AnswerSources, m.ChunkDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) ObserveChunk(bucket string, seconds float64) {
	if m == nil {
		return
	}
	m.Chunks.WithLabelValues(bucket).Inc()
	m.ChunkDuration.Observe(seconds)
}

func (m *Metrics) ObserveLLM(outcome string) {
	if m == nil {
		return
	}
	m.LLMCalls.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveAnswer(source string) {
	if m == nil || source == "" {
		return
	}
	m.AnswerSources.WithLabelValues(source).Inc()
}

// WriteTextfile dumps everything in g to path in the node_exporter textfile
// format. An empty path is a no-op.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
