package constants

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"lease.pdf", PDF},
		{"LEASE.PDF", PDF},
		{"contract.Docx", DOCX},
		{"contract.doc", Unknown},
		{"scan.png", Image},
		{"scan.JPEG", Image},
		{"scan.tif", Image},
		{"photo.webp", Image},
		{"notes.txt", Unknown},
		{"pdf", Unknown},
		{"", Unknown},
		{"archive.pdf.zip", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.name))
		})
	}
}

func TestDetectKind_CaseInsensitiveAndPure(t *testing.T) {
	for _, name := range []string{"a.pdf", "b.docx", "c.bmp", "d.txt", "e.tiff"} {
		want := DetectKind(name)
		assert.Equal(t, want, DetectKind(strings.ToUpper(name)), name)
		assert.Equal(t, want, DetectKind(name), "repeat call for %s", name)
	}
}

func TestKindNames(t *testing.T) {
	for _, k := range Kinds() {
		assert.Equal(t, k, ParseKind(k.String()))
	}
	assert.Equal(t, "unknown", Kind(42).String())
	assert.Equal(t, Unknown, ParseKind("spreadsheet"))
	assert.Equal(t, Image, ParseKind(" IMAGE "))
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeExt(".PDF"))
	assert.Equal(t, "png", NormalizeExt("png"))
}
