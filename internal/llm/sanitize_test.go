package llm

import (
	"io"
	"log/slog"
	"slices"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func optionsOf(t *testing.T, m map[string]any) map[string]any {
	t.Helper()
	opts, ok := m["options"].(map[string]any)
	if !ok {
		t.Fatalf("expected options map, got %T", m["options"])
	}
	if len(opts) != 4 {
		t.Fatalf("expected 4 option keys, got %v", opts)
	}
	return opts
}

func TestNormalizeRecordJSONSynonyms(t *testing.T) {
	t.Parallel()
	in := map[string]any{
		"Question_Text":  " What color is the sky? ",
		"Options":        map[string]any{"A": "Green", "b)": "Blue", "(c)": "Red", "D": "Yellow"},
		"correct_answer": "B",
		"explanation":    nil,
		"confidence":     0.8,
	}
	out, changed := NormalizeRecordJSON(in, quietLogger())
	if out["question"] != "What color is the sky?" {
		t.Fatalf("unexpected question %q", out["question"])
	}
	opts := optionsOf(t, out)
	if opts["a"] != "Green" || opts["b"] != "Blue" || opts["c"] != "Red" || opts["d"] != "Yellow" {
		t.Fatalf("unexpected options %v", opts)
	}
	if out["correct_option"] != "b" {
		t.Fatalf("expected canonical letter b, got %q", out["correct_option"])
	}
	if out["explanation"] != "" {
		t.Fatalf("expected null explanation to become empty, got %q", out["explanation"])
	}
	if _, ok := out["confidence"]; ok {
		t.Fatalf("expected unknown key to be removed")
	}
	for _, c := range []string{"question_text->question", "correct_answer->correct_option", "confidence(unknown)"} {
		if !slices.Contains(changed, c) {
			t.Fatalf("expected %q in changes %v", c, changed)
		}
	}
}

func TestNormalizeRecordJSONOptionShapes(t *testing.T) {
	t.Parallel()
	arr := map[string]any{
		"question":       "Q",
		"options":        []any{"A) Green", "B) Blue", "Red"},
		"correct_option": "Blue",
	}
	out, _ := NormalizeRecordJSON(arr, quietLogger())
	opts := optionsOf(t, out)
	if opts["a"] != "Green" || opts["b"] != "Blue" || opts["c"] != "Red" || opts["d"] != "" {
		t.Fatalf("unexpected array options %v", opts)
	}
	if out["correct_option"] != "b" {
		t.Fatalf("expected option text mapped to b, got %q", out["correct_option"])
	}

	flat := map[string]any{
		"question": "Q",
		"option_a": "Green",
		"option_d": "Yellow",
		"answer":   "e",
	}
	out, changed := NormalizeRecordJSON(flat, quietLogger())
	opts = optionsOf(t, out)
	if opts["a"] != "Green" || opts["d"] != "Yellow" || opts["b"] != "" {
		t.Fatalf("unexpected flat options %v", opts)
	}
	if out["correct_option"] != "" || !slices.Contains(changed, "correct_option(invalid)") {
		t.Fatalf("expected invalid letter dropped, got %q %v", out["correct_option"], changed)
	}
	if _, ok := out["option_a"]; ok {
		t.Fatalf("expected flat option keys removed")
	}
}

func TestNormalizeRecordJSONKeepsWrongTypes(t *testing.T) {
	t.Parallel()
	in := map[string]any{
		"question": 5.0,
		"options":  map[string]any{"a": 1999.0, "b": []any{"x"}},
		"answer":   []any{1.0},
	}
	out, changed := NormalizeRecordJSON(in, quietLogger())
	if out["question"] != 5.0 {
		t.Fatalf("expected numeric question left for the schema, got %v", out["question"])
	}
	opts := optionsOf(t, out)
	if opts["a"] != "1999" {
		t.Fatalf("expected numeric option as text, got %v", opts["a"])
	}
	if _, ok := opts["b"].([]any); !ok {
		t.Fatalf("expected array option left as-is, got %T", opts["b"])
	}
	if _, ok := out["correct_option"].([]any); !ok || !slices.Contains(changed, "correct_option(invalid)") {
		t.Fatalf("expected array answer left as-is and reported, got %v %v", out["correct_option"], changed)
	}
}
