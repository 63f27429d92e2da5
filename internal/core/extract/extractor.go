package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/doc-explainer/constants"
	"github.com/joseph-ayodele/doc-explainer/internal/common"
	"github.com/joseph-ayodele/doc-explainer/internal/core/progress"
	"github.com/joseph-ayodele/doc-explainer/internal/metrics"
)

// ErrUnsupportedKind is returned for documents whose name maps to no strategy.
var ErrUnsupportedKind = fmt.Errorf("%w: unsupported document kind", common.ErrInvalidInput)

type Config struct {
	MaxOCRPages int           // pages of a scanned PDF to recognize, default 3
	Timeout     time.Duration // per document; 0 = only the caller's deadline
}

// Extractor picks a strategy based on the document kind.
type Extractor struct {
	cfg     Config
	pdf     *pdfStrategy
	ocr     OCR
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Extractor)

// WithPageTextReader swaps the PDF text-layer reader.
func WithPageTextReader(r PageTextReader) Option {
	return func(e *Extractor) { e.pdf.reader = r }
}

// WithPageCounter swaps the PDF page counter used by the OCR fallback.
func WithPageCounter(c PageCounter) Option {
	return func(e *Extractor) { e.pdf.counter = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Extractor) { e.metrics = m }
}

func New(cfg Config, engine OCR, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxOCRPages <= 0 {
		cfg.MaxOCRPages = DefaultMaxOCRPages
	}
	e := &Extractor{
		cfg: cfg,
		ocr: engine,
		pdf: &pdfStrategy{
			reader:   LedongthucReader{},
			counter:  PDFCPUCounter{},
			ocr:      engine,
			maxPages: cfg.MaxOCRPages,
			logger:   logger,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the normalized text of doc. Engine failures become a single
// EXTRACTION_FAILED error naming the file; no partial text is returned.
func (e *Extractor) Extract(ctx context.Context, doc SourceDocument, tracker *progress.Tracker) (Result, error) {
	start := time.Now()
	if doc.Kind == constants.Unknown {
		doc.Kind = constants.DetectKind(doc.Name)
	}
	e.logger.Debug("extract.start", "name", doc.Name, "kind", doc.Kind.String(), "bytes", len(doc.Data))

	ctx, cancel := common.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	var (
		res Result
		err error
	)
	switch doc.Kind {
	case constants.PDF:
		res, err = e.pdf.extract(ctx, doc, tracker)
	case constants.DOCX:
		res, err = extractDOCX(ctx, doc, tracker)
	case constants.Image:
		res, err = extractImage(ctx, e.ocr, doc, tracker)
	default:
		e.logger.Debug("extract.unsupported", "name", doc.Name)
		return Result{Kind: constants.Unknown}, common.NewAppError(common.CodeInvalidInput,
			fmt.Sprintf("Unsupported file type: %s", doc.Name), ErrUnsupportedKind)
	}
	dur := time.Since(start)
	e.metrics.ObserveExtraction(doc.Kind.String(), string(res.Method), dur, err)

	if err != nil {
		e.logger.Error("extract.failed", "name", doc.Name, "kind", doc.Kind.String(), "duration_ms", dur.Milliseconds(), "error", err)
		if errors.Is(err, context.Canceled) {
			return Result{Kind: doc.Kind}, err
		}
		return Result{Kind: doc.Kind}, common.NewAppError(common.CodeExtraction,
			fmt.Sprintf("Failed to read %s.", displayName(doc.Name)), fmt.Errorf("%w: %w", common.ErrExtraction, err))
	}

	res.Kind = doc.Kind
	res.Duration = dur
	e.logger.Info("extract.done",
		"name", doc.Name,
		"kind", doc.Kind.String(),
		"method", string(res.Method),
		"pages", res.Pages,
		"ocr_pages", res.OCRPages,
		"chars", len([]rune(res.Text)),
		"duration_ms", dur.Milliseconds(),
	)
	return res, nil
}

func displayName(name string) string {
	if name == "" {
		return "file"
	}
	return name
}
