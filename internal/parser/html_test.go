package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/jerry/internal/doctree"
	"github.com/dgallion1/jerry/internal/span"
	"golang.org/x/net/html"
)

func TestHTMLParser_Title(t *testing.T) {
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader("<html><head><title> Guide </title></head><body><p>x</p></body></html>"), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Guide" {
		t.Errorf("expected title %q, got %q", "Guide", doc.Title)
	}

	doc, err = p.Parse(strings.NewReader("<p>x</p>"), "page.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "page" {
		t.Errorf("expected filename title %q, got %q", "page", doc.Title)
	}
}

func TestHTMLParser_KeepsStructure(t *testing.T) {
	input := `<body><h1>Title</h1><p>Some <b>bold</b> text.</p><ul><li>one</li><li>two</li></ul></body>`
	doc, err := (&HTMLParser{}).Parse(strings.NewReader(input), "doc.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := doc.Body()
	if len(elements(body, "b")) != 1 || len(elements(body, "li")) != 2 {
		t.Errorf("expected inline and list structure to survive parsing")
	}
	if got := span.Build(body).Content; got != "TitleSome bold text.onetwo" {
		t.Errorf("unexpected content %q", got)
	}
}

func TestHTMLParser_HidesUnrenderedText(t *testing.T) {
	input := `<body><p>before</p><script>var x = 1;</script><style>p{}</style><p>after</p></body>`
	doc, err := (&HTMLParser{}).Parse(strings.NewReader(input), "doc.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tag := range []string{"script", "style"} {
		for _, n := range elements(doc.Body(), tag) {
			if !doctree.IsOpaque(n) {
				t.Errorf("expected <%s> to be opaque", tag)
			}
		}
	}
	if got := span.Build(doc.Body()).Content; got != "beforeafter" {
		t.Errorf("expected script and style text to be skipped, got %q", got)
	}
}

func coverage(root *html.Node, category string) string {
	idx := span.Build(root)
	out := []byte(strings.Repeat(".", idx.Span.Len()))
	doctree.Walk(root, func(n *html.Node) bool {
		if doctree.IsMarker(n) && doctree.HasCategory(n, category) {
			a := idx.Lookup[n]
			for i := a.Start; i < a.End; i++ {
				out[i] = 'x'
			}
		}
		return true
	})
	return string(out)
}

func TestHTMLParser_NestedMarkersToggleBack(t *testing.T) {
	src := `<p><mark data-highlight class="c"><mark data-highlight class="a">s</mark>` +
		`<mark data-highlight class="c">qq</mark></mark>zz</p>`
	doc, err := (&HTMLParser{}).Parse(strings.NewReader(src), "marked.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := doc.Body()
	before := coverage(body, "c")
	if before != "xxx.." {
		t.Fatalf("expected xxx.., got %s", before)
	}

	a := span.NewAddress(body, 2, 3)
	a.Highlight("c")
	if got := coverage(body, "c"); got != "xx..." {
		t.Errorf("expected the toggle to clear [2,3), got %s", got)
	}
	a.Highlight("c")
	if got := coverage(body, "c"); got != before {
		t.Errorf("expected toggling twice to restore %s, got %s", before, got)
	}
}
