package parser

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dgallion1/jerry/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Heading styles map to <h1>..<h6>; every other
// non-empty paragraph becomes a <p>.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "jerry-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	d, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	doc := doctree.NewDocument(titleFromFilename(filename))
	body := doc.Body()
	for _, item := range d.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		if level := docxHeadingLevel(para); level > 0 {
			doctree.AppendText(doctree.AppendElement(body, "h"+strconv.Itoa(level)), text)
			continue
		}
		appendParagraph(body, text)
	}
	return doc, nil
}

// docxHeadingLevel maps "Heading1" / "heading 1" styles to their level, 0 otherwise.
func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ReplaceAll(strings.ToLower(para.Properties.Style.Val), " ", "")
	rest, ok := strings.CutPrefix(style, "heading")
	if !ok {
		return 0
	}
	level, err := strconv.Atoi(rest)
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
