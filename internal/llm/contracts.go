package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/exam-extractor/internal/entity"
)

var (
	// ErrUnparseable means the response held no usable JSON record.
	ErrUnparseable = errors.New("llm response is not parseable json")
	// ErrDisabled is returned by a client that has no credentials.
	ErrDisabled = errors.New("llm provider not configured")
)

// Completer is the external LLM collaborator: one prompt in, one response out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Mode selects the prompt variant.
type Mode int

const (
	ModeStandard Mode = iota
	// ModeStrict is the "JSON only" variant used for the single retry.
	ModeStrict
)

func (m Mode) String() string {
	if m == ModeStrict {
		return "strict"
	}
	return "standard"
}

// Input is the heuristic extraction handed to the LLM.
type Input struct {
	QuestionText string
	Options      entity.Options
	Explanation  string
}

// Record is the normalized shape we want from the LLM.
type Record struct {
	Question      string         `json:"question"`
	Options       entity.Options `json:"options"`
	CorrectOption string         `json:"correct_option"`
	Explanation   string         `json:"explanation"`
}

func (r *Record) trim() {
	r.Question = strings.TrimSpace(r.Question)
	r.Explanation = strings.TrimSpace(r.Explanation)
	for _, l := range entity.Letters {
		r.Options.Set(l, strings.TrimSpace(r.Options.Get(l)))
	}
}

// Reconciler turns heuristic fields into an LLM-corrected Record. A nil
// Record with a nil error means reconciliation is unavailable.
type Reconciler interface {
	Reconcile(ctx context.Context, in Input, mode Mode) (*Record, string, error)
	Enabled() bool
}

// Factory builds one Reconciler per worker.
type Factory func() Reconciler

// Disabled is the Reconciler used when no provider is configured.
type Disabled struct{}

func (Disabled) Reconcile(context.Context, Input, Mode) (*Record, string, error) {
	return nil, "", nil
}

func (Disabled) Enabled() bool { return false }

// Select decides once, at construction, whether reconciliation is available.
// A nil newCompleter disables it silently; otherwise every call of the
// returned Factory builds an Adapter around a fresh Completer.
func Select(newCompleter func() Completer, logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	if newCompleter == nil {
		logger.Warn("llm.disabled", "reason", "no provider configured; running on heuristics only")
		return func() Reconciler { return Disabled{} }
	}
	schema, err := CompileRecordSchema()
	if err != nil {
		// the schema is a package constant; failing here is a programming error
		logger.Error("llm.schema.compile_failed", "error", err)
		return func() Reconciler { return Disabled{} }
	}
	return func() Reconciler {
		return NewAdapter(newCompleter(), schema, logger)
	}
}
