// Package proxy relays chat completion requests to the upstream provider,
// adding the server-held credential so that clients never see it.
package proxy

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/doc-explainer/internal/common"
	"github.com/joseph-ayodele/doc-explainer/internal/llm"
	"github.com/joseph-ayodele/doc-explainer/internal/metrics"
)

const (
	APIKeyEnv = "OPENROUTER_API_KEY"
	Title     = "Document Explainer"

	// DefaultMaxBodyBytes bounds the request body we read and forward.
	DefaultMaxBodyBytes = 1 << 20
)

type Config struct {
	UpstreamURL    string
	SiteURL        string
	AllowedOrigins []string // empty allows every origin
	MaxBodyBytes   int64
	Timeout        time.Duration
}

// KeyFunc returns the upstream credential, or "" when none is configured.
type KeyFunc func() string

// EnvKey reads OPENROUTER_API_KEY on every call.
func EnvKey() string { return os.Getenv(APIKeyEnv) }

// Relay is an http.Handler forwarding POST bodies verbatim upstream.
// It keeps no per-request state and is safe for concurrent use.
type Relay struct {
	cfg     Config
	client  *http.Client
	key     KeyFunc
	schema  *jsonschema.Schema
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Relay)

func WithKeyFunc(f KeyFunc) Option {
	return func(r *Relay) { r.key = f }
}

func WithHTTPClient(c *http.Client) Option {
	return func(r *Relay) { r.client = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Relay) { r.metrics = m }
}

func New(cfg Config, logger *slog.Logger, opts ...Option) (*Relay, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = common.DefaultUpstreamURL
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = common.DefaultSiteURL
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	schema, err := llm.CompileSchema(llm.ChatRequestSchema())
	if err != nil {
		return nil, err
	}
	r := &Relay{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		key:    EnvKey,
		schema: schema,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (p *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := common.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = uuid.New().String()
	}
	log := p.logger.With("req_id", reqID)
	start := time.Now()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		p.plain(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	if origin := r.Header.Get("Origin"); len(p.cfg.AllowedOrigins) > 0 && !slices.Contains(p.cfg.AllowedOrigins, origin) {
		log.Warn("proxy.origin_rejected", "origin", origin)
		p.plain(w, http.StatusForbidden, "Forbidden")
		return
	}
	key := p.key()
	if key == "" {
		log.Error("proxy.not_configured", "env", APIKeyEnv)
		p.plain(w, http.StatusInternalServerError, llm.MsgProxyNotConfigured)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, p.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			p.plain(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large")
			return
		}
		p.plain(w, http.StatusBadRequest, "Bad Request")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if err := llm.ValidateJSON(p.schema, body); err != nil {
		log.Info("proxy.invalid_body", "error", err)
		p.plain(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	up, err := http.NewRequestWithContext(r.Context(), http.MethodPost, p.cfg.UpstreamURL, bytes.NewReader(body))
	if err != nil {
		p.plain(w, http.StatusInternalServerError, err.Error())
		return
	}
	up.Header.Set("Authorization", "Bearer "+key)
	up.Header.Set("Content-Type", "application/json")
	up.Header.Set("HTTP-Referer", p.cfg.SiteURL)
	up.Header.Set("X-Title", Title)

	resp, err := p.client.Do(up)
	if err != nil {
		log.Error("proxy.upstream_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		p.plain(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Warn("proxy.upstream_body_close_error", "error", cerr)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		log.Warn("proxy.copy_error", "error", err)
	}
	p.metrics.ObserveRelay(resp.StatusCode)
	log.Info("proxy.relayed",
		"status", resp.StatusCode,
		"request_bytes", len(body),
		"response_bytes", n,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

func (p *Relay) plain(w http.ResponseWriter, status int, msg string) {
	p.metrics.ObserveRelay(status)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
