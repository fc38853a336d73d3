package extractor

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// markdownToPlainText renders Markdown to HTML and strips the tags, leaving
// the document's visible text for segmentation.
func markdownToPlainText(md []byte) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse(md)
	rendered := markdown.Render(doc, html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags}))
	return stripTags(string(rendered))
}

func stripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch r {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
