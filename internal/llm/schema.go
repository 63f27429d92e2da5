package llm

// ChatRequestSchema is the minimum shape a relayed body must have: an object
// with a model name and a messages array of {role, content}. Extra fields
// pass through untouched.
func ChatRequestSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"model", "messages"},
		"properties": map[string]any{
			"model": map[string]any{"type": "string", "minLength": 1},
			"messages": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"role", "content"},
					"properties": map[string]any{
						"role":    map[string]any{"type": "string"},
						"content": map[string]any{},
					},
				},
			},
			"temperature": map[string]any{"type": "number", "minimum": 0, "maximum": 2},
			"max_tokens":  map[string]any{"type": "integer", "minimum": 1},
		},
	}
}
