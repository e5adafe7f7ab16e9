package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var errNoSchema = errors.New("no record schema configured")

// Adapter reconciles heuristic fields through one Completer. It is not safe
// for concurrent use; each worker builds its own.
type Adapter struct {
	completer Completer
	schema    *jsonschema.Schema
	log       *slog.Logger
}

func NewAdapter(c Completer, schema *jsonschema.Schema, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{completer: c, schema: schema, log: logger}
}

func (a *Adapter) Enabled() bool { return a.completer != nil }

// Reconcile makes exactly one LLM call. Transport errors come back as-is with
// an empty raw response; anything that cannot be turned into a usable Record
// yields ErrUnparseable together with the raw response.
func (a *Adapter) Reconcile(ctx context.Context, in Input, mode Mode) (*Record, string, error) {
	if a.completer == nil {
		return nil, "", nil
	}
	rid := uuid.New().String()
	start := time.Now()
	prompt := BuildPrompt(in, mode)

	a.log.Info("llm.reconcile.start",
		"req_id", rid,
		"mode", mode.String(),
		"prompt_len", len(prompt),
		"options_in", in.Options.Count(),
	)

	raw, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		a.log.Warn("llm.reconcile.call_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, "", err
	}

	rec, err := a.parse(raw)
	if err != nil {
		a.log.Warn("llm.reconcile.unparseable",
			"req_id", rid, "mode", mode.String(), "error", err,
			"raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, err
	}

	a.log.Info("llm.reconcile.ok",
		"req_id", rid,
		"options_out", rec.Options.Count(),
		"correct_option", rec.CorrectOption,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, raw, nil
}

func (a *Adapter) parse(raw string) (*Record, error) {
	obj, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}
	decoded, lenient, err := DecodeLenient(obj)
	if err != nil {
		return nil, err
	}
	if lenient {
		a.log.Debug("llm.reconcile.lenient_quotes_applied")
	}

	clean := decoded
	strictErr := errNoSchema
	if a.schema != nil {
		strictErr = a.schema.Validate(decoded)
	}
	if strictErr != nil {
		var changed []string
		clean, changed = NormalizeRecordJSON(decoded, a.log)
		a.log.Debug("llm.reconcile.schema_strict_failed", "error", strictErr, "changed", changed)
		if a.schema != nil {
			if err := a.schema.Validate(clean); err != nil {
				return nil, fmt.Errorf("%w: json does not match schema: %w", ErrUnparseable, err)
			}
		}
	}

	b, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparseable, err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparseable, err)
	}
	rec.trim()
	if rec.Question == "" || !rec.Options.Any() {
		return nil, fmt.Errorf("%w: record has no question or options", ErrUnparseable)
	}
	return &rec, nil
}

