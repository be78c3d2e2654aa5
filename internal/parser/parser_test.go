package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/jerry/internal/doctree"
	"golang.org/x/net/html"
)

// elements returns every element named tag under n, in document order.
func elements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	doctree.Walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
		}
		return true
	})
	return out
}

func texts(nodes []*html.Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, doctree.TextContent(n))
	}
	return out
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"a.txt", false},
		{"a.MD", false},
		{"a.markdown", false},
		{"a.csv", false},
		{"a.htm", false},
		{"a.html", false},
		{"a.pdf", false},
		{"a.docx", false},
		{"a.exe", true},
		{"noext", true},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q): err=%v, wantErr=%v", tt.filename, err, tt.wantErr)
		}
		if IsSupportedExtension(tt.filename) == tt.wantErr {
			t.Errorf("IsSupportedExtension(%q) disagrees with ForFile", tt.filename)
		}
	}
}

func TestLoad(t *testing.T) {
	doc, err := Load(strings.NewReader("one\n\ntwo"), "notes.txt", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", doc.Title)
	}
	if got := strings.Join(texts(elements(doc.Body(), "p")), "|"); got != "one|two" {
		t.Errorf("expected one|two, got %s", got)
	}
	if doctree.FindTitle(doc.Root) != "notes" {
		t.Errorf("expected <title> to carry the document title")
	}

	if _, err := Load(strings.NewReader(""), "x.bin", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestCSVParser(t *testing.T) {
	input := "name,qty\napple,3\npear,\n"
	doc, err := (&CSVParser{}).Parse(strings.NewReader(input), "fruit.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "fruit" {
		t.Errorf("expected title %q, got %q", "fruit", doc.Title)
	}
	if got := strings.Join(texts(elements(doc.Body(), "th")), ","); got != "name,qty" {
		t.Errorf("expected headers name,qty, got %s", got)
	}
	rows := elements(doc.Body(), "tr")
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	cells := elements(rows[2], "td")
	if len(cells) != 2 || cells[1].FirstChild != nil {
		t.Errorf("expected an empty trailing cell without a text node")
	}
}

func TestCSVParser_Empty(t *testing.T) {
	doc, err := (&CSVParser{}).Parse(strings.NewReader(""), "empty.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Body().FirstChild != nil {
		t.Error("expected an empty body")
	}
}

func TestSplitParagraphs(t *testing.T) {
	got := splitParagraphs("first line\nsecond line\r\n\r\n\n  next  \n\n")
	if len(got) != 2 || got[0] != "first line\nsecond line" || got[1] != "next" {
		t.Errorf("unexpected paragraphs %q", got)
	}
}
