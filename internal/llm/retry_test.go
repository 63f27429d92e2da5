package llm

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-explainer/internal/common"
)

type scriptedCompleter struct {
	mu     sync.Mutex
	models []string
	fail   map[string]error
}

func (s *scriptedCompleter) Complete(_ context.Context, req ChatRequest) (ChatResponse, error) {
	s.mu.Lock()
	s.models = append(s.models, req.Model)
	s.mu.Unlock()
	if err := s.fail[req.Model]; err != nil {
		return ChatResponse{}, err
	}
	var resp ChatResponse
	resp.Choices = append(resp.Choices, struct {
		Message Message `json:"message"`
	}{Message: Message{Role: "assistant", Content: " answer from " + req.Model + " "}})
	return resp, nil
}

func TestDefaultPolicy(t *testing.T) {
	assert.Equal(t, FallbackPolicy{{Model: "deepseek/deepseek-chat", MaxAttempts: 1}}, DefaultPolicy("deepseek/deepseek-chat"))
	assert.Equal(t, FallbackPolicy{
		{Model: "openai/gpt-oss-20b:free", MaxAttempts: 1},
		{Model: FallbackModel, MaxAttempts: 1},
	}, DefaultPolicy("openai/gpt-oss-20b:free"))
}

func TestOrchestrator_Success(t *testing.T) {
	c := &scriptedCompleter{}
	o := NewOrchestrator(c, nil)
	resp, err := o.Complete(context.Background(), ChatRequest{Model: "deepseek/deepseek-chat"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "answer from deepseek/deepseek-chat", resp.Content())
	assert.Equal(t, []string{"deepseek/deepseek-chat"}, c.models)
}

func TestOrchestrator_GPTOSSFallsBackOnce(t *testing.T) {
	primary := "openai/gpt-oss-20b:free"
	c := &scriptedCompleter{fail: map[string]error{
		primary: &StatusError{Status: http.StatusServiceUnavailable, Body: "no capacity"},
	}}
	o := NewOrchestrator(c, nil, WithBackoff(time.Millisecond))

	resp, err := o.Complete(context.Background(), ChatRequest{Model: primary}, DefaultPolicy(primary))
	require.NoError(t, err)
	assert.Equal(t, "answer from "+FallbackModel, resp.Content())
	assert.Equal(t, []string{primary, FallbackModel}, c.models)
}

func TestOrchestrator_FinalError(t *testing.T) {
	primary := "openai/gpt-oss-20b:free"
	c := &scriptedCompleter{fail: map[string]error{
		primary:       &StatusError{Status: 502, Body: "bad gateway"},
		FallbackModel: &StatusError{Status: 429, Body: `{"error":"rate limited"}`},
	}}
	o := NewOrchestrator(c, nil, WithBackoff(time.Millisecond))

	_, err := o.Complete(context.Background(), ChatRequest{Model: primary}, DefaultPolicy(primary))
	require.Error(t, err)
	assert.Equal(t, []string{primary, FallbackModel}, c.models, "exactly one retry with the fallback model")
	assert.Equal(t, common.CodeUpstream, common.CodeOf(err))
	assert.ErrorIs(t, err, common.ErrUpstream)
	assert.Contains(t, err.Error(), `upstream error 429: {"error":"rate limited"}`)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 429, se.Status)
}

func TestOrchestrator_NonGPTOSSDoesNotFallBack(t *testing.T) {
	c := &scriptedCompleter{fail: map[string]error{
		"deepseek/deepseek-chat": &StatusError{Status: 500, Body: "oops"},
	}}
	o := NewOrchestrator(c, nil, WithBackoff(time.Millisecond))
	_, err := o.Complete(context.Background(), ChatRequest{Model: "deepseek/deepseek-chat"}, nil)
	require.Error(t, err)
	assert.Len(t, c.models, 1)
}

func TestOrchestrator_StepAttempts(t *testing.T) {
	c := &scriptedCompleter{fail: map[string]error{
		"m": &StatusError{Status: 503, Body: "busy"},
		"n": &StatusError{Status: 400, Body: "bad request"},
	}}
	o := NewOrchestrator(c, nil, WithBackoff(time.Millisecond))
	_, err := o.Complete(context.Background(), ChatRequest{}, FallbackPolicy{{Model: "m", MaxAttempts: 3}, {Model: "n", MaxAttempts: 3}})
	require.Error(t, err)
	// 503 is retried within the step, 400 is not
	assert.Equal(t, []string{"m", "m", "m", "n"}, c.models)
	assert.Contains(t, err.Error(), "upstream error 400: bad request")
}

func TestOrchestrator_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &scriptedCompleter{fail: map[string]error{"openai/gpt-oss-120b": context.Canceled}}
	o := NewOrchestrator(c, nil)
	_, err := o.Complete(ctx, ChatRequest{Model: "openai/gpt-oss-120b"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, len(c.models), 1, "no fallback after cancellation")
}

func TestOrchestrator_NotConfiguredIsNotRetried(t *testing.T) {
	primary := "openai/gpt-oss-20b:free"
	c := &scriptedCompleter{fail: map[string]error{
		primary: &StatusError{Status: http.StatusInternalServerError, Body: MsgProxyNotConfigured},
	}}
	o := NewOrchestrator(c, nil, WithBackoff(time.Millisecond))

	_, err := o.Complete(context.Background(), ChatRequest{Model: primary}, FallbackPolicy{
		{Model: primary, MaxAttempts: 3},
		{Model: FallbackModel, MaxAttempts: 1},
	})
	require.Error(t, err)
	assert.Equal(t, []string{primary}, c.models, "no second attempt and no fallback model")
	assert.Equal(t, common.CodeConfig, common.CodeOf(err))
	assert.ErrorIs(t, err, common.ErrConfiguration)
	assert.Equal(t, http.StatusInternalServerError, common.HTTPStatus(err))
}

func TestStatusError_NotConfigured(t *testing.T) {
	assert.True(t, (&StatusError{Status: 500, Body: "Proxy not configured"}).NotConfigured())
	assert.False(t, (&StatusError{Status: 500, Body: "oops"}).NotConfigured())
	assert.False(t, (&StatusError{Status: 502, Body: "Proxy not configured"}).NotConfigured())
	assert.True(t, (&StatusError{Status: 500, Body: "oops"}).Temporary())
}
