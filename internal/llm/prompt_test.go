package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuickTakeMessages(t *testing.T) {
	msgs := QuickTakeMessages("LEASE TEXT")
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "You analyze legal documents and explain them in plain English.", msgs[0].Content)
	assert.Contains(t, msgs[1].Content, "Use 3-6 bullet points.")
	assert.Contains(t, msgs[1].Content, "DOCUMENT:\nLEASE TEXT")
}

func TestExplainMessages(t *testing.T) {
	short := ExplainMessages("body", true, 1, 1)
	require.Len(t, short, 2)
	assert.Contains(t, short[1].Content, "Summarize briefly")
	for _, section := range []string{"## Summary", "## Key points", "## Watch out for", "## Next steps"} {
		assert.Contains(t, short[1].Content, section)
	}
	assert.NotContains(t, short[1].Content, "part 1 of")

	detailed := ExplainMessages("body", false, 2, 3)
	assert.Contains(t, detailed[1].Content, "Explain thoroughly")
	assert.Contains(t, detailed[1].Content, "This is part 2 of 3")
}

func TestChatMessages(t *testing.T) {
	msgs := ChatMessages("doc", "When is rent due?")
	assert.Contains(t, msgs[0].Content, "If unsure, say you are unsure.")
	assert.Equal(t, "Document:\ndoc\n\nQuestion: When is rent due?\n\nAnswer:", msgs[1].Content)
}
