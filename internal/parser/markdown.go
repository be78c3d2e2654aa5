package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dgallion1/jerry/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
)

// MarkdownParser handles Markdown files using goldmark. The rendered HTML becomes
// the document body.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var out bytes.Buffer
	if err := md.Convert(src, &out); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	doc := doctree.NewDocument(titleFromFilename(filename))
	body := doc.Body()
	nodes, err := html.ParseFragment(&out, body)
	if err != nil {
		return nil, fmt.Errorf("parse rendered markdown: %w", err)
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	return doc, nil
}
