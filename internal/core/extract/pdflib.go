package extract

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// LedongthucReader reads text layers with github.com/ledongthuc/pdf.
// The library panics on some malformed files; those surface as errors.
type LedongthucReader struct{}

func (LedongthucReader) Open(data []byte) (pt PageTexts, err error) {
	defer func() {
		if r := recover(); r != nil {
			pt, err = nil, fmt.Errorf("pdf: malformed document: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &ledongthucPages{reader: reader}, nil
}

type ledongthucPages struct {
	reader *pdf.Reader
}

func (p *ledongthucPages) NumPage() (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return p.reader.NumPage()
}

func (p *ledongthucPages) Text(i int) (txt string, err error) {
	defer func() {
		if r := recover(); r != nil {
			txt, err = "", fmt.Errorf("pdf: page %d: %v", i, r)
		}
	}()
	page := p.reader.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

var pdfcpuInit sync.Once

// PDFCPUCounter counts pages with pdfcpu in relaxed validation mode.
type PDFCPUCounter struct{}

func (PDFCPUCounter) CountPages(data []byte) (int, error) {
	pdfcpuInit.Do(func() {
		// keep pdfcpu from creating a config dir under $HOME
		model.ConfigPath = "disable"
	})
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(data), conf)
}
