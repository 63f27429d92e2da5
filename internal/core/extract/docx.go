package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/joseph-ayodele/doc-explainer/constants"
	"github.com/joseph-ayodele/doc-explainer/internal/core/ocr"
	"github.com/joseph-ayodele/doc-explainer/internal/core/progress"
)

func extractDOCX(_ context.Context, doc SourceDocument, tracker *progress.Tracker) (Result, error) {
	tracker.Report(10, "Reading DOCX…")
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return Result{}, fmt.Errorf("open docx: %w", err)
	}
	defer func() { _ = r.Close() }()

	text, err := StripWordML(r.Editable().GetContent())
	if err != nil {
		return Result{}, fmt.Errorf("parse docx body: %w", err)
	}
	tracker.Report(65, "Reading DOCX…")
	return Result{
		Text:   ocr.Normalize(text),
		Pages:  1,
		Method: constants.MethodDOCX,
	}, nil
}

// StripWordML converts a WordprocessingML document body to plain text:
// one line per paragraph, w:tab as a tab, w:br and w:cr as line breaks.
// Only w:t runs contribute characters.
func StripWordML(body string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(body))
	var (
		b      strings.Builder
		inText int
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText++
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				if inText > 0 {
					inText--
				}
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText > 0 {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
