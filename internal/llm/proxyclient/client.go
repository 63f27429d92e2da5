package proxyclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/doc-explainer/internal/llm"
)

// Config for the explain proxy client.
type Config struct {
	URL     string        // explain proxy endpoint
	Origin  string        // sent as Origin so an allow-listing relay accepts us
	Timeout time.Duration // http client timeout
}

// Client posts chat requests to the explain proxy. It never holds provider credentials.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// WithHTTPClient replaces the transport, mainly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

func (c *Client) Complete(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	var headers map[string]string
	if c.cfg.Origin != "" {
		headers = map[string]string{"Origin": c.cfg.Origin}
	}
	raw, _, err := llm.SendJSON(ctx, c.http, c.cfg.URL, req, headers, c.logger)
	if err != nil {
		return llm.ChatResponse{}, err
	}
	var out llm.ChatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		c.logger.Error("llm.proxy.decode_error", "error", err, "raw_bytes", len(raw))
		return llm.ChatResponse{}, fmt.Errorf("decode chat response: %w", err)
	}
	return out, nil
}
