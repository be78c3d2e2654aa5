// Package parser loads uploaded files into HTML document trees that the span indexer
// can address. Every format ends up as a <body> of block elements.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/jerry/internal/doctree"
	"golang.org/x/net/html"
)

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// Options tunes format-specific behaviour.
type Options struct {
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// Load picks the parser for filename and parses r with it.
func Load(r io.Reader, filename string, opts Options) (*doctree.Document, error) {
	p, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	if pdf, ok := p.(*PDFParser); ok {
		pdf.FallbackPdftotext = opts.PDFFallbackPdftotext
	}
	doc, err := p.Parse(r, filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleFromFilename strips the extension from filename.
func titleFromFilename(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// appendParagraph adds <p>text</p> to parent unless text is blank.
func appendParagraph(parent *html.Node, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	doctree.AppendText(doctree.AppendElement(parent, "p"), text)
}
