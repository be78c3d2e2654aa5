package doctree

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attributes and tags that give a node its meaning to the indexer and the highlighter.
const (
	MarkerTag       = "mark"
	MarkerAttr      = "data-highlight"
	OpaqueAttr      = "data-opaque"
	PassthroughAttr = "data-passthrough"

	// RootTag names the whole-document root in serialized tokens.
	RootTag = "body"
)

// Document is a loaded document: its title and the root of its parsed HTML tree.
type Document struct {
	Title string     // Document title (from metadata or filename)
	Root  *html.Node // html.DocumentNode owning <html><body>...
}

// Body returns the document's <body>, or the root when there is none.
func (d *Document) Body() *html.Node {
	if b := FindBody(d.Root); b != nil {
		return b
	}
	return d.Root
}

// IsText reports whether n is a text node.
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// IsMarker reports whether n is a highlight wrapper.
func IsMarker(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == MarkerTag && HasAttr(n, MarkerAttr)
}

// IsOpaque reports whether n's content is indexed as zero-length.
func IsOpaque(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && HasAttr(n, OpaqueAttr)
}

// IsPassthrough reports whether n re-enters normal indexing inside an opaque region.
func IsPassthrough(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && HasAttr(n, PassthroughAttr)
}

// TextLen returns the length of a text node in runes.
func TextLen(n *html.Node) int {
	if !IsText(n) {
		return 0
	}
	return utf8.RuneCountInString(n.Data)
}

// Children returns n's children in document order.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ChildIndex returns the position of n among its siblings, or -1 when detached.
func ChildIndex(n *html.Node) int {
	if n.Parent == nil {
		return -1
	}
	i := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c == n {
			return i
		}
		i++
	}
	return -1
}

// ChildAt returns the i-th child of n, or nil.
func ChildAt(n *html.Node, i int) *html.Node {
	if i < 0 {
		return nil
	}
	c := n.FirstChild
	for ; c != nil && i > 0; c = c.NextSibling {
		i--
	}
	return c
}

// Walk visits n and its descendants in document order. Returning false skips n's children.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// TextContent concatenates every text node under n.
func TextContent(n *html.Node) string {
	var buf strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		}
		return true
	})
	return buf.String()
}

// FindBody returns the first <body> element under n.
func FindBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := FindBody(c); b != nil {
			return b
		}
	}
	return nil
}

// FindTitle returns the text of the first <title> element under n.
func FindTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return strings.TrimSpace(TextContent(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := FindTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// Top returns the topmost ancestor of n, or n itself when it has no parent.
func Top(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// DocumentRoot returns the whole-document root that n belongs to: the <body> under its
// topmost ancestor, or the topmost ancestor itself when there is no body.
func DocumentRoot(n *html.Node) *html.Node {
	top := Top(n)
	if body := FindBody(top); body != nil {
		return body
	}
	return top
}

// NodeAtPath follows child indexes down from root. It returns nil when a step is missing.
func NodeAtPath(root *html.Node, path []int) *html.Node {
	n := root
	for _, i := range path {
		if n = ChildAt(n, i); n == nil {
			return nil
		}
	}
	return n
}

// PathOf returns the child indexes leading from root to n, or false when n is not under root.
func PathOf(root, n *html.Node) ([]int, bool) {
	var path []int
	for ; n != root; n = n.Parent {
		if n == nil || n.Parent == nil {
			return nil, false
		}
		path = append([]int{ChildIndex(n)}, path...)
	}
	return path, true
}

// NewElement creates a detached element node.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// NewDocument creates an empty <html><head><title/></head><body/></html> document.
func NewDocument(title string) *Document {
	root := &html.Node{Type: html.DocumentNode}
	htmlEl := AppendElement(root, "html")
	head := AppendElement(htmlEl, "head")
	if title != "" {
		AppendText(AppendElement(head, "title"), title)
	}
	AppendElement(htmlEl, "body")
	return &Document{Title: title, Root: root}
}

// AppendElement appends a new element to parent and returns it.
func AppendElement(parent *html.Node, tag string, attrs ...html.Attribute) *html.Node {
	el := NewElement(tag, attrs...)
	parent.AppendChild(el)
	return el
}

// AppendText appends a text node to parent and returns it.
func AppendText(parent *html.Node, s string) *html.Node {
	t := NewText(s)
	parent.AppendChild(t)
	return t
}

// Render writes the HTML of n's children.
func Render(n *html.Node) (string, error) {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
