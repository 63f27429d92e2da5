// Package explain turns document text into a plain-language explanation and
// answers follow-up questions about it.
package explain

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/doc-explainer/internal/common"
	"github.com/joseph-ayodele/doc-explainer/internal/core/chunk"
	"github.com/joseph-ayodele/doc-explainer/internal/core/progress"
	"github.com/joseph-ayodele/doc-explainer/internal/llm"
)

const (
	// DefaultChunkChars is the text size above which the document is explained in parts.
	DefaultChunkChars = 16000

	MsgNoInput = "Please upload a document or paste text."
)

var (
	reSpaceBeforeNL = regexp.MustCompile(`[\p{Z}\t\v\f\r]*\n`)
	reBlankRuns     = regexp.MustCompile(`\n{3,}`)
)

// NormalizeWhitespace strips whitespace before newlines, collapses 3+
// newlines to a blank line and trims.
func NormalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = reSpaceBeforeNL.ReplaceAllString(s, "\n")
	s = reBlankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

type Config struct {
	Model       string
	Temperature float32
	ChunkChars  int // 0 disables chunking
	Policy      llm.FallbackPolicy
}

// Result is a finished explanation. Text is what the user sees and downloads.
type Result struct {
	Text      string
	QuickTake string
	Body      string
	Parts     int
	Model     string
}

type completer interface {
	Complete(ctx context.Context, req llm.ChatRequest, policy llm.FallbackPolicy) (llm.ChatResponse, error)
}

type Service struct {
	cfg    Config
	llm    completer
	logger *slog.Logger
}

// NewService builds a Service calling the model through orch.
func NewService(cfg Config, orch *llm.Orchestrator, logger *slog.Logger) *Service {
	return newService(cfg, orch, logger)
}

func newService(cfg Config, c completer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = common.DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = llm.DefaultTemperature
	}
	if cfg.ChunkChars < 0 {
		cfg.ChunkChars = 0
	}
	if len(cfg.Policy) == 0 {
		cfg.Policy = llm.DefaultPolicy(cfg.Model)
	}
	return &Service{cfg: cfg, llm: c, logger: logger}
}

// Explain produces the quick take and the four-part explanation of text.
func (s *Service) Explain(ctx context.Context, text string, short bool) (Result, error) {
	return s.ExplainWithProgress(ctx, text, short, nil)
}

// ExplainWithProgress is Explain reporting per-part progress between 95 and 99.
func (s *Service) ExplainWithProgress(ctx context.Context, text string, short bool, tracker *progress.Tracker) (Result, error) {
	cleaned := NormalizeWhitespace(text)
	if cleaned == "" {
		return Result{}, common.NewAppError(common.CodeInvalidInput, MsgNoInput, common.ErrInvalidInput)
	}

	quick := s.quickTake(ctx, cleaned)

	parts := []string{cleaned}
	if s.cfg.ChunkChars > 0 && utf8.RuneCountInString(cleaned) > s.cfg.ChunkChars {
		parts = chunk.Split(cleaned, s.cfg.ChunkChars)
	}
	maxTokens := llm.DetailedMaxTokens
	if short {
		maxTokens = llm.ShortMaxTokens
	}

	outputs := make([]string, 0, len(parts))
	var model string
	for i, part := range parts {
		if len(parts) > 1 {
			tracker.Step(95, 99, i, len(parts), fmt.Sprintf("Explaining part %d/%d…", i+1, len(parts)))
		}
		resp, err := s.llm.Complete(ctx, llm.ChatRequest{
			Model:       s.cfg.Model,
			Messages:    llm.ExplainMessages(part, short, i+1, len(parts)),
			Temperature: s.cfg.Temperature,
			MaxTokens:   maxTokens,
		}, s.cfg.Policy)
		if err != nil {
			s.logger.Error("explain.part_failed", "part", i+1, "parts", len(parts), "error", err)
			return Result{}, err
		}
		model = resp.Model
		outputs = append(outputs, resp.Content())
	}

	body := strings.Join(outputs, "\n\n")
	res := Result{QuickTake: quick, Body: body, Parts: len(parts), Model: model, Text: body}
	if quick != "" {
		res.Text = "Quick take:\n" + quick + "\n\n" + body
	}
	s.logger.Info("explain.done", "short", short, "parts", len(parts), "chars", utf8.RuneCountInString(cleaned), "quick_take", quick != "")
	return res, nil
}

// quickTake is best effort: any failure yields "".
func (s *Service) quickTake(ctx context.Context, text string) string {
	resp, err := s.llm.Complete(ctx, llm.ChatRequest{
		Model:       s.cfg.Model,
		Messages:    llm.QuickTakeMessages(text),
		Temperature: s.cfg.Temperature,
		MaxTokens:   llm.QuickTakeMaxTokens,
	}, llm.FallbackPolicy{{Model: s.cfg.Model, MaxAttempts: 1}})
	if err != nil {
		s.logger.Debug("explain.quick_take_skipped", "error", err)
		return ""
	}
	return resp.Content()
}

// Ask answers question using only documentText.
func (s *Service) Ask(ctx context.Context, documentText, question string) (string, error) {
	doc := NormalizeWhitespace(documentText)
	question = strings.TrimSpace(question)
	if doc == "" {
		return "", common.NewAppError(common.CodeInvalidInput, MsgNoInput, common.ErrInvalidInput)
	}
	if question == "" {
		return "", common.NewAppError(common.CodeInvalidInput, "question is required", common.ErrInvalidInput)
	}
	resp, err := s.llm.Complete(ctx, llm.ChatRequest{
		Model:       s.cfg.Model,
		Messages:    llm.ChatMessages(doc, question),
		Temperature: s.cfg.Temperature,
		MaxTokens:   llm.ChatMaxTokens,
	}, s.cfg.Policy)
	if err != nil {
		s.logger.Warn("explain.ask_failed", "error", err)
		return "", err
	}
	return resp.Content(), nil
}
