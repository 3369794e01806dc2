package engine

import (
	"encoding/json"

	"github.com/townloop/engine/schema"
)

// schemaToMap round-trips a schema.Schema through its JSON encoding into a
// plain map, since the schema and domain-stack tool types (openai-go's
// FunctionParameters, genai.Schema) each expect JSON-schema-shaped data
// rather than this repository's own typed schema.Schema.
func schemaToMap(s *schema.Schema) map[string]any {
	if s == nil {
		return map[string]any{"type": "object"}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"type": "object"}
	}
	return out
}
