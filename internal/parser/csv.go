package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/jerry/internal/doctree"
	"golang.org/x/net/html"
)

// CSVParser handles CSV files. The first record becomes the table header.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := doctree.NewDocument(titleFromFilename(filename))
	if len(records) == 0 {
		return doc, nil
	}

	table := doctree.AppendElement(doc.Body(), "table")
	head := doctree.AppendElement(doctree.AppendElement(table, "thead"), "tr")
	for _, h := range records[0] {
		appendCell(head, "th", h)
	}

	if len(records) > 1 {
		tbody := doctree.AppendElement(table, "tbody")
		for _, row := range records[1:] {
			tr := doctree.AppendElement(tbody, "tr")
			for _, cell := range row {
				appendCell(tr, "td", cell)
			}
		}
	}
	return doc, nil
}

func appendCell(row *html.Node, tag, text string) {
	cell := doctree.AppendElement(row, tag)
	if text != "" {
		doctree.AppendText(cell, text)
	}
}
