package jerry

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/jerry/internal/doctree"
	"github.com/dgallion1/jerry/internal/span"
	"golang.org/x/net/html"
)

func parseBody(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	body := doctree.FindBody(doc)
	if body == nil {
		t.Fatal("no body element")
	}
	return body
}

func find(t *testing.T, n *html.Node, tag string) *html.Node {
	t.Helper()
	var found *html.Node
	doctree.Walk(n, func(c *html.Node) bool {
		if found == nil && c.Type == html.ElementNode && c.Data == tag {
			found = c
		}
		return found == nil
	})
	if found == nil {
		t.Fatalf("no <%s> element", tag)
	}
	return found
}

func contents(addrs []span.Address) []string {
	var out []string
	for _, a := range addrs {
		out = append(out, a.Content())
	}
	return out
}

func TestController_RefreshAfterMutation(t *testing.T) {
	body := parseBody(t, "<p>hello world</p>")
	c := New(body, Options{})
	p := find(t, body, "p")

	if c.Span().Len() != 11 || c.Content() != "hello world" {
		t.Fatalf("unexpected initial index %s %q", c.Span(), c.Content())
	}
	text := p.FirstChild
	span.NewAddress(body, 0, 5).Highlight("mark")
	if _, ok := c.Address(p.FirstChild); ok {
		t.Error("expected the stale index not to know the new wrapper")
	}
	c.Refresh()
	a, ok := c.Address(p.FirstChild)
	if !ok || a.Start != 0 || a.End != 5 {
		t.Errorf("expected wrapper at [0,5) after refresh, got %s ok=%v", a, ok)
	}
	if a, _ := c.Address(text); a.End != 5 {
		t.Errorf("expected original text node to now span [0,5), got %s", a)
	}
}

func TestController_Toggle(t *testing.T) {
	body := parseBody(t, "<p>hello world</p>")
	c := New(body, Options{})

	if _, err := c.Toggle(span.NewAddress(body, 0, 5), "bad:cat"); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}
	wrappers, err := c.Toggle(span.NewAddress(body, 0, 5), "mark")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wrappers) != 1 {
		t.Fatalf("expected 1 wrapper, got %d", len(wrappers))
	}
	if a, ok := c.Address(wrappers[0]); !ok || a.Len() != 5 {
		t.Errorf("expected the index to be refreshed, got %s ok=%v", a, ok)
	}
}

func TestGatherHighlights_UnionPerCategory(t *testing.T) {
	body := parseBody(t, `<p>`+
		`<mark data-highlight="" class="a">one</mark>`+
		`<mark data-highlight="" class="a b">two</mark>`+
		` gap `+
		`<mark data-highlight="" class="b">three</mark>`+
		`<span data-opaque><mark data-highlight="" class="a">hidden</mark></span>`+
		`</p>`)
	c := New(body, Options{})

	set := c.GatherHighlights()
	if got := strings.Join(Categories(set), ","); got != "a,b" {
		t.Fatalf("expected categories a,b, got %s", got)
	}
	if got := strings.Join(contents(set["a"]), "|"); got != "onetwo" {
		t.Errorf("expected touching wrappers to merge into onetwo, got %s", got)
	}
	if got := strings.Join(contents(set["b"]), "|"); got != "two|three" {
		t.Errorf("expected two|three, got %s", got)
	}
	for _, a := range set["b"] {
		if a.Root != body {
			t.Errorf("expected addresses under the controller root, got %s", a)
		}
	}
}

func TestGatherHighlights_AfterToggles(t *testing.T) {
	body := parseBody(t, "<p>the quick brown fox</p>")
	c := New(body, Options{})

	mustToggle(t, c, span.NewAddress(body, 4, 9), "x")
	mustToggle(t, c, span.NewAddress(body, 9, 15), "x")
	mustToggle(t, c, span.NewAddress(body, 16, 19), "y")

	set := c.GatherHighlights()
	if got := strings.Join(contents(set["x"]), "|"); got != "quick brown" {
		t.Errorf("expected adjacent highlights to merge, got %s", got)
	}
	if got := strings.Join(contents(set["y"]), "|"); got != "fox" {
		t.Errorf("expected fox, got %s", got)
	}
}

func mustToggle(t *testing.T, c *Controller, a span.Address, category string) {
	t.Helper()
	if _, err := c.Toggle(a, category); err != nil {
		t.Fatalf("toggle %s: %v", category, err)
	}
}

type fakeGeometry struct {
	origin Rect
	scroll float64
}

// ClientRects lays characters out on one line, 10px wide and 20px tall, offset by
// the node's first character in the document.
func (g fakeGeometry) ClientRects(r span.Range) []Rect {
	return []Rect{{
		X:      g.origin.X + float64(r.StartOffset*10),
		Y:      g.origin.Y + 100,
		Width:  float64((r.EndOffset - r.StartOffset) * 10),
		Height: 20,
	}}
}

func (g fakeGeometry) BoundingRect(*html.Node) Rect { return g.origin }
func (g fakeGeometry) ScrollTop(*html.Node) float64 { return g.scroll }

func TestDrawHighlights(t *testing.T) {
	body := parseBody(t, "<p>foo<b>bar</b></p>")
	c := New(body, Options{Geometry: fakeGeometry{origin: Rect{X: 50, Y: 30}, scroll: 7}})

	rects := c.DrawHighlights([]span.Address{span.NewAddress(body, 1, 5)})
	if len(rects) != 2 {
		t.Fatalf("expected one rect per leaf, got %d", len(rects))
	}
	if rects[0].X != 10 || rects[0].Width != 20 {
		t.Errorf("unexpected first rect %+v", rects[0])
	}
	if rects[1].X != 0 || rects[1].Width != 20 {
		t.Errorf("unexpected second rect %+v", rects[1])
	}
	for _, r := range rects {
		if r.Y != 107 {
			t.Errorf("expected root-relative y 107, got %v", r.Y)
		}
	}

	if got := New(body, Options{}).DrawHighlights([]span.Address{span.NewAddress(body, 0, 1)}); got != nil {
		t.Errorf("expected nothing without geometry, got %v", got)
	}
}

func TestApply_OverlappingAddresses(t *testing.T) {
	body := parseBody(t, "<p>the quick brown fox</p>")
	c := New(body, Options{})
	mustToggle(t, c, span.NewAddress(body, 10, 12), "x")

	applied, err := c.Apply(map[string][]span.Address{
		"x": {
			span.NewAddress(body, 4, 9),
			span.NewAddress(body, 4, 9),
			span.NewAddress(body, 6, 15),
			span.NewAddress(body, 16, 16),
		},
		"y": {span.NewAddress(body, 16, 19)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied != 3 {
		t.Errorf("expected the gaps around br to be applied once each plus y, got %d", applied)
	}
	set := c.GatherHighlights()
	if got := strings.Join(contents(set["x"]), "|"); got != "quick brown" {
		t.Errorf("expected quick brown, got %s", got)
	}
	if got := strings.Join(contents(set["y"]), "|"); got != "fox" {
		t.Errorf("expected fox, got %s", got)
	}
}
