package span

import (
	"fmt"

	"github.com/dgallion1/jerry/internal/doctree"
	"golang.org/x/net/html"
)

// Bias disambiguates a zero-width address sitting on a node boundary.
type Bias int

const (
	Neither Bias = iota
	Left
	Right
)

func (b Bias) String() string {
	switch b {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "neither"
	}
}

// Address is the half-open character range [Start, End) of Root's flattened text.
// Addresses are values; every operation returns a new one.
type Address struct {
	Root  *html.Node
	Start int
	End   int
	Bias  Bias
}

// NewAddress returns an address with no bias.
func NewAddress(root *html.Node, start, end int) Address {
	return Address{Root: root, Start: start, End: end}
}

// WithBias returns a copy of a carrying b.
func (a Address) WithBias(b Bias) Address {
	a.Bias = b
	return a
}

// Len is the number of characters covered.
func (a Address) Len() int {
	return a.End - a.Start
}

// IsCollapsed reports whether a is a caret.
func (a Address) IsCollapsed() bool {
	return a.Start == a.End
}

// IsLeaf reports whether a is scoped to a text node.
func (a Address) IsLeaf() bool {
	return doctree.IsText(a.Root)
}

func (a Address) String() string {
	if a.Root == nil {
		return fmt.Sprintf("<nil>[%d,%d)", a.Start, a.End)
	}
	name := a.Root.Data
	if a.Root.Type == html.TextNode {
		name = "#text"
	}
	return fmt.Sprintf("%s[%d,%d)", name, a.Start, a.End)
}

// Content re-indexes Root and returns the text in [Start, End).
func (a Address) Content() string {
	return Build(a.Root).Slice(a.Start, a.End)
}

// Hash is the djb2 hash of Content. It identifies content; it is not a security primitive.
func (a Address) Hash() uint32 {
	var h uint32 = 5381
	for _, r := range a.Content() {
		h = h*33 + uint32(r)
	}
	return h
}

// Shift translates the range by offset within the same root.
func (a Address) Shift(offset int) Address {
	a.Start += offset
	a.End += offset
	return a
}

// Includes reports whether other lies entirely within a under the same root.
func (a Address) Includes(other Address) bool {
	return a.Root == other.Root && a.Start <= other.Start && other.End <= a.End
}

// Rebase expresses a in target's coordinates. Both roots are located in the index of
// their topmost common ancestor; ok is false when target is not in a's tree or a
// escapes target.
func (a Address) Rebase(target *html.Node) (Address, bool) {
	if a.Start < 0 || a.End < a.Start {
		return Address{}, false
	}
	top := doctree.Top(a.Root)
	lookup := Build(top).Lookup
	from, ok := lookup[a.Root]
	if !ok {
		return Address{}, false
	}
	to, ok := lookup[target]
	if !ok {
		return Address{}, false
	}
	abs := a.Shift(from.Start)
	abs.Root = top
	if !to.Includes(abs) {
		return Address{}, false
	}
	out := abs.Shift(-to.Start)
	out.Root = target
	return out, true
}

// Range is a host node range: a start and an end position, each a node plus an
// offset (a character offset for text nodes, a child index for containers).
type Range struct {
	StartNode   *html.Node
	StartOffset int
	EndNode     *html.Node
	EndOffset   int
}

// Collapsed reports whether r is a caret.
func (r Range) Collapsed() bool {
	return r.StartNode == r.EndNode && r.StartOffset == r.EndOffset
}

// Range converts a into a host range over its leaves. ok is false when a has no
// leaf decomposition.
func (a Address) Range() (Range, bool) {
	leafs := a.ToLeafs()
	if len(leafs) == 0 {
		return Range{}, false
	}
	first, last := leafs[0], leafs[len(leafs)-1]
	return Range{
		StartNode:   first.Root,
		StartOffset: first.Start,
		EndNode:     last.Root,
		EndOffset:   last.End,
	}, true
}
