package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeLenient decodes obj as a JSON object. When strict decoding fails it
// retries once with single quotes rewritten to double quotes, which is the
// most common way models break JSON.
func DecodeLenient(obj string) (map[string]any, bool, error) {
	var m map[string]any
	err := json.Unmarshal([]byte(obj), &m)
	if err == nil {
		return m, false, nil
	}
	if !strings.Contains(obj, "'") {
		return nil, false, fmt.Errorf("%w: %w", ErrUnparseable, err)
	}
	if err2 := json.Unmarshal([]byte(strings.ReplaceAll(obj, "'", `"`)), &m); err2 != nil {
		return nil, true, fmt.Errorf("%w: %w", ErrUnparseable, err)
	}
	return m, true, nil
}
