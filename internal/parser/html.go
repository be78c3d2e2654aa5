package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/jerry/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. The tree is kept as parsed; elements whose text is
// never rendered are flagged opaque so they take no room in the offsets, and nested
// highlight markers repeating an outer category are flattened.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &doctree.Document{Title: titleFromFilename(filename), Root: root}
	if title := doctree.FindTitle(root); title != "" {
		doc.Title = title
	}
	hideUnrendered(doc.Body())
	doctree.FlattenMarkers(doc.Body())
	return doc, nil
}

func hideUnrendered(n *html.Node) {
	doctree.Walk(n, func(c *html.Node) bool {
		if c.Type != html.ElementNode {
			return true
		}
		switch c.Data {
		case "script", "style", "noscript", "template":
			if !doctree.HasAttr(c, doctree.OpaqueAttr) {
				doctree.SetAttr(c, doctree.OpaqueAttr, "")
			}
			return false
		}
		return true
	})
}
