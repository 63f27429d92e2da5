// Package render turns model output into the friendly HTML shown next to the
// plain-text explanation.
package render

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// HeadingLevel is the level every heading is rendered at.
const HeadingLevel = 3

var (
	reTag = regexp.MustCompile(`<[^>]*>`)
	// dollar amounts, then short month names with any trailing punctuation
	rePill = regexp.MustCompile(`\$\d[\d,]*(?:\.\d+)?|\b(?:Sept|Oct|Nov|Dec|Jan|Feb|Mar)\b[^<\s]*`)

	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(flatHeadings{}, 100)),
		),
	)
)

// flatHeadings renders every heading at HeadingLevel; the model's ## and ###
// carry no hierarchy worth keeping.
type flatHeadings struct{}

func (flatHeadings) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			h.Level = HeadingLevel
		}
		return ast.WalkContinue, nil
	})
}

// Friendly renders markdown-ish text as HTML with headings, bullet lists and
// paragraphs. Dollar amounts and month names are wrapped in
// <span class="pill">. Raw HTML in the input is dropped.
func Friendly(src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return Pills(buf.String()), nil
}

// Pills wraps amounts and dates found in the text runs of an HTML fragment.
// Tags and attributes are left alone.
func Pills(html string) string {
	var out strings.Builder
	last := 0
	for _, loc := range reTag.FindAllStringIndex(html, -1) {
		out.WriteString(pillText(html[last:loc[0]]))
		out.WriteString(html[loc[0]:loc[1]])
		last = loc[1]
	}
	out.WriteString(pillText(html[last:]))
	return out.String()
}

func pillText(s string) string {
	return rePill.ReplaceAllString(s, `<span class="pill">${0}</span>`)
}
