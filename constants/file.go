package constants

import "strings"

// Kind is the content kind of an uploaded document, decided from its file name only.
type Kind int

const (
	Unknown Kind = iota
	PDF
	DOCX
	Image
)

var kindNames = [...]string{
	Unknown: "unknown",
	PDF:     "pdf",
	DOCX:    "docx",
	Image:   "image",
}

func (k Kind) String() string {
	if k < Unknown || int(k) >= len(kindNames) {
		return kindNames[Unknown]
	}
	return kindNames[k]
}

// ParseKind maps a kind name back to a Kind. Unrecognized names yield Unknown.
func ParseKind(s string) Kind {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return Kind(k)
		}
	}
	return Unknown
}

// Kinds returns every kind, Unknown first.
func Kinds() []Kind {
	return []Kind{Unknown, PDF, DOCX, Image}
}

// ImageExtensions holds the raster formats we hand to OCR (lowercase, without '.').
var ImageExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"webp": {},
	"bmp":  {},
	"tif":  {},
	"tiff": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// DetectKind classifies a file name by case-insensitive suffix. It never looks at content.
func DetectKind(name string) Kind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return PDF
	case strings.HasSuffix(lower, ".docx"):
		return DOCX
	}
	dot := strings.LastIndexByte(lower, '.')
	if dot < 0 {
		return Unknown
	}
	if _, ok := ImageExtensions[lower[dot+1:]]; ok {
		return Image
	}
	return Unknown
}
