package parser

import (
	"strings"
	"testing"
)

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", doc.Title)
	}
	paras := elements(doc.Body(), "p")
	if len(paras) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(paras))
	}

	want := []string{
		"First paragraph line one.\nFirst paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	for i, w := range texts(paras) {
		if w != want[i] {
			t.Errorf("p[%d]: expected %q, got %q", i, want[i], w)
		}
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", doc.Title)
	}
	if doc.Body().FirstChild != nil {
		t.Errorf("expected an empty body for empty input")
	}
}

func TestTextParser_SingleLine(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader("Hello world"), "single.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	paras := texts(elements(doc.Body(), "p"))
	if len(paras) != 1 || paras[0] != "Hello world" {
		t.Errorf("expected one paragraph %q, got %q", "Hello world", paras)
	}
}

func TestTextParser_MultipleBlankLines(t *testing.T) {
	// Multiple consecutive blank lines should not produce empty paragraphs.
	input := "Para one.\n\n\n\nPara two."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(elements(doc.Body(), "p")); n != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", n)
	}
}

func TestTextParser_WhitespaceOnlyLines(t *testing.T) {
	// Lines with only whitespace should be treated as blank.
	input := "Para one.\n   \nPara two."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(elements(doc.Body(), "p")); n != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", n)
	}
}
