package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRequestSchema(t *testing.T) {
	schema, err := CompileSchema(ChatRequestSchema())
	require.NoError(t, err)

	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"full request", `{"model":"deepseek/deepseek-chat","messages":[{"role":"user","content":"hi"}],"temperature":0.2,"max_tokens":600}`, true},
		{"extra fields pass", `{"model":"m","messages":[],"stream":false}`, true},
		{"missing model", `{"messages":[]}`, false},
		{"empty model", `{"model":"","messages":[]}`, false},
		{"messages not array", `{"model":"m","messages":"hi"}`, false},
		{"message without role", `{"model":"m","messages":[{"content":"hi"}]}`, false},
		{"not an object", `[1,2]`, false},
		{"temperature too high", `{"model":"m","messages":[],"temperature":9}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(schema, []byte(tt.body))
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	assert.Error(t, ValidateJSON(schema, []byte(`{not json`)))
}
