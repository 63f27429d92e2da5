package extract

import (
	"context"
	"path/filepath"

	"github.com/joseph-ayodele/doc-explainer/constants"
	"github.com/joseph-ayodele/doc-explainer/internal/core/ocr"
	"github.com/joseph-ayodele/doc-explainer/internal/core/progress"
)

func extractImage(ctx context.Context, engine OCR, doc SourceDocument, tracker *progress.Tracker) (Result, error) {
	tracker.Report(10, "Running OCR on image…")
	txt, err := engine.RecognizeImage(ctx, doc.Data, filepath.Ext(doc.Name))
	if err != nil {
		return Result{}, err
	}
	tracker.Report(70, "Running OCR on image…")

	res := Result{
		Text:     ocr.Normalize(txt),
		Pages:    1,
		Method:   constants.MethodImageOCR,
		OCRPages: 1,
	}
	if res.Text != "" && ocr.HeuristicConfidence(res.Text) < ocr.LowConfidence {
		res.Warnings = append(res.Warnings, "low OCR confidence")
	}
	return res, nil
}
