package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/doc-explainer/constants"
	"github.com/joseph-ayodele/doc-explainer/internal/core/progress"
)

// SourceDocument is an uploaded file. It is not modified after creation.
type SourceDocument struct {
	Name string
	Kind constants.Kind
	Data []byte
}

// NewDocument classifies name and wraps the bytes.
func NewDocument(name string, data []byte) SourceDocument {
	return SourceDocument{Name: name, Kind: constants.DetectKind(name), Data: data}
}

// Result is the normalized text of one document plus how it was obtained.
// An empty Text with a nil error means nothing readable was found.
type Result struct {
	Text     string
	Pages    int
	Kind     constants.Kind
	Method   constants.Method
	OCRPages int
	Duration time.Duration
	Warnings []string
}

// TextExtractor turns a document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, doc SourceDocument, tracker *progress.Tracker) (Result, error)
}

// OCR recognizes text in raster images and rendered PDF pages.
type OCR interface {
	RecognizeImage(ctx context.Context, data []byte, ext string) (string, error)
	RecognizePDFPage(ctx context.Context, pdfPath string, page int, workDir string) (string, error)
}

// PageTextReader opens a PDF's embedded text layer.
type PageTextReader interface {
	Open(data []byte) (PageTexts, error)
}

// PageTexts is an opened text layer with 1-based pages.
type PageTexts interface {
	NumPage() int
	Text(page int) (string, error)
}

// PageCounter counts pages without decoding content.
type PageCounter interface {
	CountPages(data []byte) (int, error)
}
