package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/doc-explainer/constants"
	"github.com/joseph-ayodele/doc-explainer/internal/common"
	"github.com/joseph-ayodele/doc-explainer/internal/core/extract"
	"github.com/joseph-ayodele/doc-explainer/internal/core/progress"
	"github.com/joseph-ayodele/doc-explainer/internal/explain"
	"github.com/joseph-ayodele/doc-explainer/internal/session"
)

// Explainer is the model-facing half of the processor.
type Explainer interface {
	ExplainWithProgress(ctx context.Context, text string, short bool, tracker *progress.Tracker) (explain.Result, error)
	Ask(ctx context.Context, documentText, question string) (string, error)
}

// IngestResult summarizes the input that will be explained.
type IngestResult struct {
	Kind     constants.Kind
	Method   constants.Method
	Pages    int
	Chars    int
	Warnings []string
}

// Processor coordinates extraction then explanation for a session.
type Processor struct {
	logger    *slog.Logger
	extractor extract.TextExtractor
	explainer Explainer
}

func NewProcessor(logger *slog.Logger, extractor extract.TextExtractor, explainer Explainer) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, extractor: extractor, explainer: explainer}
}

func busyError() error {
	return common.NewAppError(common.CodeBusy, "An explanation is already running.", common.ErrBusy)
}

func noInputError() error {
	return common.NewAppError(common.CodeInvalidInput, explain.MsgNoInput, common.ErrInvalidInput)
}

// Ingest makes the uploaded file (name, data) and/or pasted text the
// session's input and extracts the file right away. A file of a known kind
// wins over pasted text; pasted text is used when the file is of an unknown
// kind or cannot be read.
func (p *Processor) Ingest(ctx context.Context, sess *session.Session, name string, data []byte, pasted string) (IngestResult, error) {
	if !sess.TryBegin() {
		return IngestResult{}, busyError()
	}
	defer sess.End()

	tracker := sess.Tracker()
	pasted = strings.TrimSpace(pasted)
	var doc *extract.SourceDocument
	if name != "" && len(data) > 0 {
		d := extract.NewDocument(name, data)
		doc = &d
	}
	sess.SetInput(doc, pasted)
	tracker.Reset()

	if doc == nil {
		if pasted == "" {
			return IngestResult{}, noInputError()
		}
		tracker.Report(90, constants.StatusReady)
		return pastedResult(pasted), nil
	}

	if doc.Kind == constants.Unknown {
		if pasted == "" {
			return IngestResult{}, common.NewAppError(common.CodeInvalidInput,
				fmt.Sprintf("Unsupported file type: %s", doc.Name), extract.ErrUnsupportedKind)
		}
		p.logger.Info("processor.ingest.unknown_kind", "session_id", sess.ID, "name", doc.Name)
		res := pastedResult(pasted)
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s is not a supported file type; using the pasted text", doc.Name))
		tracker.Report(90, constants.StatusReady)
		return res, nil
	}

	tracker.Report(8, constants.StatusPreparing)
	res, err := p.extractor.Extract(ctx, *doc, tracker)
	if err == nil && res.Text == "" {
		err = common.NewAppError(common.CodeEmptyExtraction, constants.StatusUnreadable, common.ErrEmptyExtraction)
	}
	if err != nil {
		if pasted != "" && ctx.Err() == nil {
			p.logger.Warn("processor.ingest.pasted_fallback", "session_id", sess.ID, "name", doc.Name, "error", err)
			out := pastedResult(pasted)
			out.Warnings = append(out.Warnings, fmt.Sprintf("could not read %s; using the pasted text", doc.Name))
			tracker.Report(90, constants.StatusReady)
			return out, nil
		}
		p.logger.Error("processor.ingest.failed", "session_id", sess.ID, "name", doc.Name, "error", err)
		tracker.Reset()
		tracker.Report(0, constants.StatusUnreadable)
		return IngestResult{Kind: doc.Kind}, err
	}

	sess.SetExtraction(res)
	tracker.Report(90, constants.StatusReady)
	p.logger.Debug("processor.ingest.ok", "session_id", sess.ID, "name", doc.Name, "method", string(res.Method), "pages", res.Pages)
	return IngestResult{
		Kind:     res.Kind,
		Method:   res.Method,
		Pages:    res.Pages,
		Chars:    utf8.RuneCountInString(res.Text),
		Warnings: res.Warnings,
	}, nil
}

func pastedResult(text string) IngestResult {
	return IngestResult{Kind: constants.Unknown, Method: constants.MethodPasted, Chars: utf8.RuneCountInString(text)}
}

// Explain explains the session's current input. Only one explanation may run
// per session at a time.
func (p *Processor) Explain(ctx context.Context, sess *session.Session, short bool) (explain.Result, error) {
	if !sess.TryBegin() {
		return explain.Result{}, busyError()
	}
	defer sess.End()

	text := sess.InputText()
	if strings.TrimSpace(text) == "" {
		return explain.Result{}, noInputError()
	}

	tracker := sess.Tracker()
	tracker.Reset()
	tracker.Report(95, constants.StatusPrepText)
	res, err := p.explainer.ExplainWithProgress(ctx, text, short, tracker)
	if err != nil {
		p.logger.Error("processor.explain.failed", "session_id", sess.ID, "error", err)
		tracker.Reset()
		tracker.Report(0, constants.StatusFailed)
		return explain.Result{}, err
	}
	sess.SetExplanation(res.Text)
	tracker.Report(100, constants.StatusDone)
	p.logger.Info("processor.explain.ok", "session_id", sess.ID, "short", short, "parts", res.Parts, "model", res.Model)
	return res, nil
}

// Ask answers a follow-up question about the session's document and records
// both turns. Model failures produce the fixed apology answer, not an error.
func (p *Processor) Ask(ctx context.Context, sess *session.Session, question string) (string, []session.Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", nil, common.NewAppError(common.CodeInvalidInput, "question is required", common.ErrInvalidInput)
	}
	doc := sess.ChatContext()
	if strings.TrimSpace(doc) == "" {
		return "", nil, noInputError()
	}

	sess.AppendTurn(session.RoleUser, question)
	answer, err := p.explainer.Ask(ctx, doc, question)
	if err != nil || strings.TrimSpace(answer) == "" {
		p.logger.Warn("processor.ask.failed", "session_id", sess.ID, "error", err)
		answer = constants.ApologyAnswer
	}
	sess.AppendTurn(session.RoleAI, answer)
	return answer, sess.Transcript(), nil
}

// ExplainFile extracts and explains a file on disk outside any session.
func (p *Processor) ExplainFile(ctx context.Context, path string, short bool, tracker *progress.Tracker) (explain.Result, extract.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return explain.Result{}, extract.Result{}, common.NewAppError(common.CodeInvalidInput,
			fmt.Sprintf("Could not open %s.", path), fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
	}
	doc := extract.NewDocument(filepath.Base(path), data)
	if doc.Kind == constants.Unknown {
		return explain.Result{}, extract.Result{}, common.NewAppError(common.CodeInvalidInput,
			fmt.Sprintf("Unsupported file type: %s", doc.Name), extract.ErrUnsupportedKind)
	}
	tracker.Report(8, constants.StatusPreparing)
	ext, err := p.extractor.Extract(ctx, doc, tracker)
	if err != nil {
		return explain.Result{}, ext, err
	}
	if ext.Text == "" {
		return explain.Result{}, ext, common.NewAppError(common.CodeEmptyExtraction, constants.StatusUnreadable, common.ErrEmptyExtraction)
	}
	tracker.Report(95, constants.StatusPrepText)
	res, err := p.explainer.ExplainWithProgress(ctx, ext.Text, short, tracker)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.logger.Error("processor.explain_file.failed", "path", path, "error", err)
		}
		return explain.Result{}, ext, err
	}
	tracker.Report(100, constants.StatusDone)
	return res, ext, nil
}
