package doctree

import (
	"slices"

	"golang.org/x/net/html"
)

// SplitText splits text node n at the rune offset into two adjacent siblings.
// n keeps the head; the returned node holds the tail. The offset is clamped to n's length.
func SplitText(n *html.Node, offset int) *html.Node {
	runes := []rune(n.Data)
	offset = max(0, min(offset, len(runes)))
	tail := NewText(string(runes[offset:]))
	n.Data = string(runes[:offset])
	if n.Parent != nil {
		InsertAfter(n, tail)
	}
	return tail
}

// InsertAfter inserts n as the next sibling of ref.
func InsertAfter(ref, n *html.Node) {
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Replace puts n where old is. old ends up detached; n is detached from its prior place first.
func Replace(old, n *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	Detach(n)
	parent.InsertBefore(n, old)
	parent.RemoveChild(old)
}

// Wrap moves n inside wrapper and puts wrapper in n's place.
func Wrap(n, wrapper *html.Node) {
	Replace(n, wrapper)
	wrapper.AppendChild(n)
}

// Normalize merges adjacent text nodes and drops empty ones throughout n's subtree.
func Normalize(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type != html.TextNode {
			Normalize(c)
			c = next
			continue
		}
		if c.Data == "" {
			n.RemoveChild(c)
			c = next
			continue
		}
		for next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			after := next.NextSibling
			n.RemoveChild(next)
			next = after
		}
		c = next
	}
}

// FlattenMarkers drops category tags that a marker shares with an enclosing marker and
// unwraps markers left with none, so no category is nested inside itself. Coverage is
// unchanged.
func FlattenMarkers(n *html.Node) {
	flattenMarkers(n, nil)
	Normalize(n)
}

func flattenMarkers(n *html.Node, outer []string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if !IsMarker(c) {
			flattenMarkers(c, outer)
			c = next
			continue
		}
		cats := Categories(c)
		own := slices.DeleteFunc(slices.Clone(cats), func(cat string) bool { return slices.Contains(outer, cat) })
		flattenMarkers(c, append(slices.Clone(outer), own...))
		if len(own) == 0 && len(cats) > 0 {
			for ch := c.FirstChild; ch != nil; ch = c.FirstChild {
				c.RemoveChild(ch)
				n.InsertBefore(ch, c)
			}
			n.RemoveChild(c)
		} else if len(own) < len(cats) {
			SetCategories(c, own)
		}
		c = next
	}
}
