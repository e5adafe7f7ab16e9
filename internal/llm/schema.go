package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildRecordJSONSchema returns the JSON Schema (draft 2020-12 subset) a
// normalized LLM record must satisfy.
func BuildRecordJSONSchema() map[string]any {
	option := map[string]any{"type": "string"}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"question": map[string]any{"type": "string"},
			"options": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"a": option, "b": option, "c": option, "d": option,
				},
				"required": []string{"a", "b", "c", "d"},
			},
			"correct_option": map[string]any{"type": "string", "enum": []string{"", "a", "b", "c", "d"}},
			"explanation":    map[string]any{"type": "string"},
		},
		"required": []string{"question", "options", "correct_option", "explanation"},
	}
}

// CompileRecordSchema compiles BuildRecordJSONSchema once for reuse.
func CompileRecordSchema() (*jsonschema.Schema, error) {
	return compileSchema(BuildRecordJSONSchema())
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}
