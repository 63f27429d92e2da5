package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-explainer/internal/common"
)

func TestSendJSON(t *testing.T) {
	var gotBody ChatRequest
	var gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "yes", r.Header.Get("X-Extra"))
		gotReqID = r.Header.Get("X-Request-ID")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	ctx := common.WithRequestID(context.Background(), "req-1")
	req := ChatRequest{Model: "m", Messages: []Message{User("hi")}, Temperature: 0.2, MaxTokens: 10}
	raw, status, err := SendJSON(ctx, srv.Client(), srv.URL, req, map[string]string{"X-Extra": "yes"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.Equal(t, req, gotBody)
	assert.Equal(t, "req-1", gotReqID)
}

func TestSendJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	raw, status, err := SendJSON(context.Background(), srv.Client(), srv.URL, map[string]string{}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "slow down", string(raw))
	assert.EqualError(t, err, "upstream error 429: slow down")

	se, ok := err.(*StatusError)
	require.True(t, ok)
	assert.True(t, se.Temporary())
	assert.False(t, (&StatusError{Status: 400}).Temporary())
}

func TestChatResponse_Content(t *testing.T) {
	var r ChatResponse
	assert.Empty(t, r.Content())
	require.NoError(t, json.Unmarshal([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hi\n"}}]}`), &r))
	assert.Equal(t, "hi", r.Content())
}

func TestSendJSON_LogsSessionID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := common.WithSessionID(context.Background(), "sess-42")
	_, _, err := SendJSON(ctx, srv.Client(), srv.URL, map[string]string{}, nil, logger)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"session_id":"sess-42"`)
}
