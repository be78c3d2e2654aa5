package span

import (
	"github.com/dgallion1/jerry/internal/doctree"
	"github.com/rivo/uniseg"
)

// ToLeafs decomposes a into the ordered text-node addresses that exactly tile it.
// It returns nil when the range runs past the indexed content.
func (a Address) ToLeafs() []Address {
	if a.IsLeaf() {
		return []Address{a}
	}
	leaves := Build(a.Root).Leaves()
	if a.IsCollapsed() {
		i := caretLeaf(leaves, a.Start, a.Bias)
		if i < 0 {
			return nil
		}
		off := a.Start - leaves[i].Span.Start
		return []Address{NewAddress(leaves[i].Node, off, off).WithBias(a.Bias)}
	}

	si := -1
	for i, l := range leaves {
		if l.Span.Start <= a.Start {
			si = i
		}
	}
	ei := -1
	for i, l := range leaves {
		if l.Span.End >= a.End {
			ei = i
			break
		}
	}
	if si < 0 || ei < 0 || ei < si {
		return nil
	}

	startLeaf, endLeaf := leaves[si], leaves[ei]
	startSpot := a.Start - startLeaf.Span.Start
	endSpot := a.End - endLeaf.Span.Start
	if si == ei {
		return []Address{NewAddress(startLeaf.Node, startSpot, endSpot)}
	}

	out := make([]Address, 0, ei-si+1)
	out = append(out, NewAddress(startLeaf.Node, startSpot, startLeaf.Span.Len()))
	for _, l := range leaves[si+1 : ei] {
		out = append(out, NewAddress(l.Node, 0, l.Span.Len()))
	}
	return append(out, NewAddress(endLeaf.Node, 0, endSpot))
}

// caretLeaf picks the leaf holding a caret at pos. A caret on a boundary belongs to
// the preceding leaf unless biased right.
func caretLeaf(leaves []Leaf, pos int, bias Bias) int {
	found := -1
	for i, l := range leaves {
		if l.Span.Start < pos || (bias == Right && l.Span.Start == pos) {
			found = i
		}
	}
	if found >= 0 && pos > leaves[found].Span.End {
		return -1
	}
	return found
}

// ToAtom splits a leaf address's text node so that [Start, End) becomes a whole node
// of its own, and returns the address of that node. ok is false for non-leaf,
// collapsed or out-of-range addresses.
func (a Address) ToAtom() (Address, bool) {
	if !a.IsLeaf() || a.IsCollapsed() {
		return Address{}, false
	}
	if a.Start < 0 || a.End > doctree.TextLen(a.Root) {
		return Address{}, false
	}
	node := a.Root
	if a.Start > 0 {
		node = doctree.SplitText(node, a.Start)
	}
	if n := a.Len(); n < doctree.TextLen(node) {
		doctree.SplitText(node, n)
	}
	return NewAddress(node, 0, a.Len()), true
}

// ToAtoms atomizes every leaf of a.
func (a Address) ToAtoms() []Address {
	var atoms []Address
	for _, leaf := range a.ToLeafs() {
		if atom, ok := leaf.ToAtom(); ok {
			atoms = append(atoms, atom)
		}
	}
	return atoms
}

// Explode splits a into one text node per user-perceived character and returns
// their addresses. It mutates the tree.
func (a Address) Explode() []Address {
	if a.IsCollapsed() {
		return nil
	}
	if !a.IsLeaf() {
		var out []Address
		for _, atom := range a.ToAtoms() {
			out = append(out, atom.Explode()...)
		}
		return out
	}
	if a.Len() == 1 {
		return []Address{a}
	}
	atom, ok := a.ToAtom()
	if !ok {
		return nil
	}

	var out []Address
	node := atom.Root
	g := uniseg.NewGraphemes(node.Data)
	for g.Next() {
		n := len(g.Runes())
		if n < doctree.TextLen(node) {
			tail := doctree.SplitText(node, n)
			out = append(out, NewAddress(node, 0, n))
			node = tail
			continue
		}
		out = append(out, NewAddress(node, 0, n))
	}
	return out
}
