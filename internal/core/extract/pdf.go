package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/doc-explainer/constants"
	"github.com/joseph-ayodele/doc-explainer/internal/core/ocr"
	"github.com/joseph-ayodele/doc-explainer/internal/core/progress"
)

// DefaultMaxOCRPages caps how many pages of a scanned PDF are recognized.
const DefaultMaxOCRPages = 3

type pdfStrategy struct {
	reader   PageTextReader
	counter  PageCounter
	ocr      OCR
	maxPages int
	logger   *slog.Logger
}

func (s *pdfStrategy) extract(ctx context.Context, doc SourceDocument, tracker *progress.Tracker) (Result, error) {
	res := Result{Method: constants.MethodPDFText}
	tracker.Report(5, "Reading PDF…")

	pages, err := s.reader.Open(doc.Data)
	if err != nil {
		// no usable text layer; the OCR path may still render it
		s.logger.Warn("extract.pdf.text_layer_unreadable", "name", doc.Name, "error", err)
		res.Warnings = append(res.Warnings, "text layer unreadable: "+err.Error())
	} else {
		n := pages.NumPage()
		res.Pages = n
		texts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			tracker.Step(35, 75, i-1, n, fmt.Sprintf("Extracting text from PDF page %d/%d…", i, n))
			txt, err := pages.Text(i)
			if err != nil {
				res.Warnings = append(res.Warnings, err.Error())
				continue
			}
			if t := strings.TrimSpace(txt); t != "" {
				texts = append(texts, t)
			}
		}
		res.Text = ocr.Normalize(strings.Join(texts, "\n\n"))
	}
	if res.Text != "" {
		return res, nil
	}

	count, err := s.counter.CountPages(doc.Data)
	if err != nil {
		if res.Pages == 0 {
			return Result{}, fmt.Errorf("count pages: %w", err)
		}
		s.logger.Debug("extract.pdf.count_fallback", "name", doc.Name, "error", err, "pages", res.Pages)
		count = res.Pages
	}
	res.Pages = count
	limit := min(count, s.maxPages)
	s.logger.Info("extract.pdf.ocr_fallback", "name", doc.Name, "pages", count, "ocr_pages", limit)
	if limit <= 0 {
		return res, nil
	}

	text, err := s.ocrPages(ctx, doc.Data, limit, tracker)
	if err != nil {
		return Result{}, err
	}
	res.Method = constants.MethodPDFOCR
	res.OCRPages = limit
	res.Text = text
	if count > limit {
		res.Warnings = append(res.Warnings, fmt.Sprintf("only the first %d of %d pages were scanned", limit, count))
	}
	if res.Text != "" && ocr.HeuristicConfidence(res.Text) < ocr.LowConfidence {
		res.Warnings = append(res.Warnings, "low OCR confidence")
	}
	return res, nil
}

func (s *pdfStrategy) ocrPages(ctx context.Context, data []byte, limit int, tracker *progress.Tracker) (string, error) {
	workDir, err := os.MkdirTemp("", "dx-pdf-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			s.logger.Warn("extract.pdf.cleanup_failed", "path", workDir, "error", err)
		}
	}()

	pdfPath := filepath.Join(workDir, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return "", err
	}

	texts := make([]string, 0, limit)
	for i := 1; i <= limit; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		tracker.Step(75, 95, i-1, limit, fmt.Sprintf("OCR on PDF page %d/%d…", i, limit))
		txt, err := s.ocr.RecognizePDFPage(ctx, pdfPath, i, workDir)
		if err != nil {
			return "", fmt.Errorf("ocr page %d: %w", i, err)
		}
		if t := strings.TrimSpace(txt); t != "" {
			texts = append(texts, t)
		}
	}
	return ocr.Normalize(strings.Join(texts, "\n\n")), nil
}
