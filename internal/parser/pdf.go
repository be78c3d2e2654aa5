package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/dgallion1/jerry/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if enabled.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "jerry-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	doc := doctree.NewDocument(titleFromFilename(filename))
	body := doc.Body()
	for i, page := range splitPages(text) {
		if strings.TrimSpace(page) == "" {
			continue
		}
		section := doctree.AppendElement(body, "section",
			html.Attribute{Key: "data-page", Val: strconv.Itoa(i + 1)})
		for _, para := range splitParagraphs(page) {
			appendParagraph(section, para)
		}
	}
	return doc, nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

func splitPages(text string) []string {
	return strings.Split(text, "\f")
}

// splitParagraphs breaks page text on blank lines.
func splitParagraphs(page string) []string {
	page = strings.ReplaceAll(page, "\r\n", "\n")
	var out []string
	for _, para := range strings.Split(page, "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			out = append(out, para)
		}
	}
	return out
}
