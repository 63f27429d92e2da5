package proxyclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-explainer/internal/llm"
)

func TestClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req llm.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Empty(t, r.Header.Get("Authorization"), "the client never sends credentials")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"` + req.Model + `","choices":[{"message":{"role":"assistant","content":"plain words"}}]}`))
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL}, nil)
	resp, err := c.Complete(context.Background(), llm.ChatRequest{Model: "deepseek/deepseek-chat", Messages: []llm.Message{llm.User("x")}})
	require.NoError(t, err)
	assert.Equal(t, "plain words", resp.Content())
	assert.Equal(t, "deepseek/deepseek-chat", resp.Model)
}

func TestClient_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Proxy not configured", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(Config{URL: srv.URL}, nil).Complete(context.Background(), llm.ChatRequest{Model: "m"})
	require.Error(t, err)
	var se *llm.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Contains(t, se.Body, "Proxy not configured")
}

func TestClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	_, err := New(Config{URL: srv.URL}, nil).Complete(context.Background(), llm.ChatRequest{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode chat response")
}

func TestClient_SendsOrigin(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Origin"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	_, err := New(Config{URL: srv.URL, Origin: "https://a.example"}, nil).Complete(context.Background(), llm.ChatRequest{Model: "m"})
	require.NoError(t, err)
	_, err = New(Config{URL: srv.URL}, nil).Complete(context.Background(), llm.ChatRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", ""}, got)
}
