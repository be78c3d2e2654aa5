// Package span flattens an HTML tree into character offsets and implements
// the Address span algebra and highlight mutation on top of that index.
package span

import (
	"sort"
	"strings"

	"github.com/dgallion1/jerry/internal/doctree"
	"golang.org/x/net/html"
)

// mode is the indexing mode carried down the recursive walk.
type mode int

const (
	modeNormal mode = iota
	modeOpaque
)

// Index is the flattened view of a tree: every node's span relative to the root,
// and the root's concatenated text content. It is invalidated by any tree mutation.
type Index struct {
	Span    Address
	Lookup  map[*html.Node]Address
	Content string
}

// Build indexes root starting at offset 0.
func Build(root *html.Node) Index {
	return BuildAt(root, 0)
}

// BuildAt indexes root with its first character at offset.
func BuildAt(root *html.Node, offset int) Index {
	idx := Index{Lookup: make(map[*html.Node]Address)}
	var content strings.Builder
	idx.Span = walk(root, root, offset, modeNormal, idx.Lookup, &content)
	idx.Content = content.String()
	return idx
}

func walk(root, n *html.Node, offset int, m mode, lookup map[*html.Node]Address, content *strings.Builder) Address {
	switch {
	case doctree.IsPassthrough(n):
		m = modeNormal
	case doctree.IsOpaque(n):
		m = modeOpaque
	}

	if n.Type == html.TextNode {
		end := offset
		if m == modeNormal {
			end += doctree.TextLen(n)
			content.WriteString(n.Data)
		}
		a := NewAddress(root, offset, end)
		lookup[n] = a
		return a
	}

	scan := offset
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		scan = walk(root, c, scan, m, lookup, content).End
	}
	a := NewAddress(root, offset, scan)
	lookup[n] = a
	return a
}

// Leaf is a text node with its span in the indexed root.
type Leaf struct {
	Node *html.Node
	Span Address
}

// Leaves returns the text nodes of the index that cover at least one character, ordered by start.
func (idx Index) Leaves() []Leaf {
	var leaves []Leaf
	for n, a := range idx.Lookup {
		if n.Type == html.TextNode && a.Start != a.End {
			leaves = append(leaves, Leaf{Node: n, Span: a})
		}
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].Span.Start < leaves[j].Span.Start })
	return leaves
}

// Slice returns the indexed content between rune offsets start and end, shifted by
// the index's base offset.
func (idx Index) Slice(start, end int) string {
	runes := []rune(idx.Content)
	start -= idx.Span.Start
	end -= idx.Span.Start
	start = max(0, min(start, len(runes)))
	end = max(start, min(end, len(runes)))
	return string(runes[start:end])
}
