package explain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-explainer/internal/common"
	"github.com/joseph-ayodele/doc-explainer/internal/core/progress"
	"github.com/joseph-ayodele/doc-explainer/internal/llm"
)

type recorded struct {
	req    llm.ChatRequest
	policy llm.FallbackPolicy
}

type fakeLLM struct {
	mu        sync.Mutex
	calls     []recorded
	quickErr  error
	explainFn func(req llm.ChatRequest) (string, error)
}

func (f *fakeLLM) Complete(_ context.Context, req llm.ChatRequest, policy llm.FallbackPolicy) (llm.ChatResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, recorded{req: req, policy: policy})
	f.mu.Unlock()

	var content string
	switch req.MaxTokens {
	case llm.QuickTakeMaxTokens:
		if f.quickErr != nil {
			return llm.ChatResponse{}, f.quickErr
		}
		content = "- A lease\n- Rent is due monthly"
	default:
		if f.explainFn != nil {
			c, err := f.explainFn(req)
			if err != nil {
				return llm.ChatResponse{}, err
			}
			content = c
		} else {
			content = "## Summary\nYou rent a flat."
		}
	}
	return response(content), nil
}

func response(content string) llm.ChatResponse {
	var r llm.ChatResponse
	r.Model = "deepseek/deepseek-chat"
	r.Choices = append(r.Choices, struct {
		Message llm.Message `json:"message"`
	}{Message: llm.Message{Role: "assistant", Content: content}})
	return r
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing spaces", "a  \nb\t\nc", "a\nb\nc"},
		{"blank runs", "a\n\n\n\nb", "a\n\nb"},
		{"blank lines with spaces", "x \n \n \n y", "x\n\n y"},
		{"crlf", "line \r\nnext", "line\nnext"},
		{"only whitespace", " \n\t ", ""},
		{"nbsp before newline", "a\u00a0\nb", "a\nb"},
		{"wide spaces on blank line", "a\n\u3000\u2003\n\n\nb", "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeWhitespace(tt.in))
		})
	}
}

func TestExplain_WithQuickTake(t *testing.T) {
	f := &fakeLLM{}
	s := newService(Config{Model: "deepseek/deepseek-chat"}, f, nil)

	res, err := s.Explain(context.Background(), "The tenant pays.   \n\n\n\nThe landlord repairs.", true)
	require.NoError(t, err)
	assert.Equal(t, "Quick take:\n- A lease\n- Rent is due monthly\n\n## Summary\nYou rent a flat.", res.Text)
	assert.Equal(t, 1, res.Parts)

	require.Len(t, f.calls, 2)
	quick := f.calls[0]
	assert.Equal(t, llm.FallbackPolicy{{Model: "deepseek/deepseek-chat", MaxAttempts: 1}}, quick.policy)

	main := f.calls[1]
	assert.Equal(t, llm.ShortMaxTokens, main.req.MaxTokens)
	assert.InDelta(t, 0.2, main.req.Temperature, 1e-6)
	assert.Contains(t, main.req.Messages[1].Content, "The tenant pays.\n\nThe landlord repairs.")
}

func TestExplain_DetailedUsesLargerBudget(t *testing.T) {
	f := &fakeLLM{}
	s := newService(Config{}, f, nil)
	_, err := s.Explain(context.Background(), "text", false)
	require.NoError(t, err)
	assert.Equal(t, llm.DetailedMaxTokens, f.calls[1].req.MaxTokens)
	assert.Equal(t, common.DefaultModel, f.calls[1].req.Model)
}

func TestExplain_QuickTakeFailureIgnored(t *testing.T) {
	f := &fakeLLM{quickErr: errors.New("quota")}
	s := newService(Config{}, f, nil)
	res, err := s.Explain(context.Background(), "text", true)
	require.NoError(t, err)
	assert.Equal(t, "## Summary\nYou rent a flat.", res.Text)
	assert.Empty(t, res.QuickTake)
}

func TestExplain_MainFailureSurfaces(t *testing.T) {
	upstream := common.NewAppError(common.CodeUpstream, "upstream error 502: down", common.ErrUpstream)
	f := &fakeLLM{explainFn: func(llm.ChatRequest) (string, error) { return "", upstream }}
	s := newService(Config{}, f, nil)
	_, err := s.Explain(context.Background(), "text", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUpstream)
}

func TestExplain_EmptyInput(t *testing.T) {
	f := &fakeLLM{}
	s := newService(Config{}, f, nil)
	_, err := s.Explain(context.Background(), "  \n\n ", true)
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidInput, common.CodeOf(err))
	assert.Empty(t, f.calls)
}

func TestExplain_ChunksLongText(t *testing.T) {
	part := 1
	f := &fakeLLM{explainFn: func(req llm.ChatRequest) (string, error) {
		out := "part output " + string(rune('0'+part))
		part++
		return out, nil
	}}
	s := newService(Config{ChunkChars: 500}, f, nil)
	text := strings.Repeat(strings.Repeat("w", 399)+". ", 3)
	tracker := progress.New()

	res, err := s.ExplainWithProgress(context.Background(), text, true, tracker)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Parts)
	assert.Equal(t, "part output 1\n\npart output 2\n\npart output 3", res.Body)
	require.Len(t, f.calls, 4)
	assert.Contains(t, f.calls[1].req.Messages[1].Content, "This is part 1 of 3")
	assert.GreaterOrEqual(t, tracker.Status().Percent, 95)
	assert.Contains(t, tracker.Status().Message, "Explaining part 3/3")
}

func TestExplain_ChunkingDisabled(t *testing.T) {
	f := &fakeLLM{}
	s := newService(Config{ChunkChars: 0}, f, nil)
	res, err := s.Explain(context.Background(), strings.Repeat("long text. ", 5000), true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Parts)
}

func TestAsk(t *testing.T) {
	f := &fakeLLM{explainFn: func(req llm.ChatRequest) (string, error) { return " On the 1st. ", nil }}
	s := newService(Config{Model: "openai/gpt-oss-20b:free"}, f, nil)

	answer, err := s.Ask(context.Background(), "Rent is due on the 1st.  \n", "  When is rent due? ")
	require.NoError(t, err)
	assert.Equal(t, "On the 1st.", answer)
	require.Len(t, f.calls, 1)
	assert.Equal(t, llm.ChatMaxTokens, f.calls[0].req.MaxTokens)
	assert.Equal(t, llm.DefaultPolicy("openai/gpt-oss-20b:free"), f.calls[0].policy)
	assert.Contains(t, f.calls[0].req.Messages[1].Content, "Question: When is rent due?")

	_, err = s.Ask(context.Background(), "", "q")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = s.Ask(context.Background(), "doc", " ")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
