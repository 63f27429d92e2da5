package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/joseph-ayodele/doc-explainer/internal/common"
	"github.com/joseph-ayodele/doc-explainer/internal/metrics"
)

// FallbackModel is tried once when a gpt-oss primary fails.
const FallbackModel = "deepseek/deepseek-chat"

// Step is one model in a fallback chain.
type Step struct {
	Model       string
	MaxAttempts int
}

// FallbackPolicy is applied in order until a step succeeds.
type FallbackPolicy []Step

// DefaultPolicy tries primary once and, for gpt-oss models, FallbackModel once.
func DefaultPolicy(primary string) FallbackPolicy {
	p := FallbackPolicy{{Model: primary, MaxAttempts: 1}}
	if strings.Contains(primary, "gpt-oss") && primary != FallbackModel {
		p = append(p, Step{Model: FallbackModel, MaxAttempts: 1})
	}
	return p
}

// Orchestrator runs a request through a FallbackPolicy.
type Orchestrator struct {
	completer Completer
	backoff   time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

type OrchestratorOption func(*Orchestrator)

// WithBackoff sets the wait between attempts of the same step.
func WithBackoff(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.backoff = d
		}
	}
}

func WithOrchestratorMetrics(m *metrics.Metrics) OrchestratorOption {
	return func(o *Orchestrator) { o.metrics = m }
}

func NewOrchestrator(c Completer, logger *slog.Logger, opts ...OrchestratorOption) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{completer: c, backoff: 500 * time.Millisecond, logger: logger}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Complete sends req with each step's model until one succeeds. The returned
// error is an UPSTREAM_FAILURE AppError carrying the last failure, or a
// CONFIG_ERROR as soon as the relay reports it has no credential.
func (o *Orchestrator) Complete(ctx context.Context, req ChatRequest, policy FallbackPolicy) (ChatResponse, error) {
	if len(policy) == 0 {
		policy = DefaultPolicy(req.Model)
	}
	var lastErr error
	for i, step := range policy {
		attempts := step.MaxAttempts
		if attempts < 1 {
			attempts = 1
		}
		stepReq := req
		stepReq.Model = step.Model

		var resp ChatResponse
		b := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(o.backoff))
		err := retry.Do(ctx, b, func(ctx context.Context) error {
			start := time.Now()
			r, err := o.completer.Complete(ctx, stepReq)
			o.metrics.ObserveLLM(step.Model, time.Since(start), err)
			if err != nil {
				if isTemporary(err) {
					return retry.RetryableError(err)
				}
				return err
			}
			resp = r
			return nil
		})
		if err == nil {
			if i > 0 {
				o.logger.Info("llm.fallback.recovered", "model", step.Model, "step", i)
			}
			return resp, nil
		}
		lastErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ChatResponse{}, ctxErr
		}
		var se *StatusError
		if errors.As(err, &se) && se.NotConfigured() {
			o.logger.Error("llm.proxy.not_configured", "model", step.Model)
			return ChatResponse{}, common.NewAppError(common.CodeConfig, MsgProxyNotConfigured,
				fmt.Errorf("%w: %w", common.ErrConfiguration, err))
		}
		o.logger.Warn("llm.fallback.step_failed", "model", step.Model, "step", i, "attempts", attempts, "error", err)
	}
	return ChatResponse{}, upstreamError(lastErr)
}

func isTemporary(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	// transport errors
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func upstreamError(err error) error {
	var se *StatusError
	msg := "upstream request failed"
	if errors.As(err, &se) {
		msg = se.Error()
	} else if err != nil {
		msg = "upstream error: " + err.Error()
	}
	return common.NewAppError(common.CodeUpstream, msg, fmt.Errorf("%w: %w", common.ErrUpstream, err))
}
