package span

import (
	"slices"

	"github.com/dgallion1/jerry/internal/doctree"
	"golang.org/x/net/html"
)

// topology is the wrapper arrangement around an atomized text node.
type topology int

const (
	bare       topology = iota // parent is not a marker
	soleChild                  // parent is a marker holding only this node
	mixedChild                 // parent is a marker holding this node and siblings
)

func classify(n *html.Node) topology {
	p := n.Parent
	if !doctree.IsMarker(p) {
		return bare
	}
	if p.FirstChild == n && p.LastChild == n {
		return soleChild
	}
	return mixedChild
}

// Highlight toggles category over a's range and returns the marker wrappers that were
// created or left standing around the affected text. The tree is mutated at atom
// granularity and normalized before returning; any index built earlier is stale.
func (a Address) Highlight(category string) []*html.Node {
	var atoms []Address
	if a.IsLeaf() {
		if atom, ok := a.ToAtom(); ok {
			atoms = []Address{atom}
		}
	} else {
		atoms = a.ToAtoms()
	}

	// Normalization is deferred: merging text after one atom would detach the
	// text node of the next.
	var dirty, wrappers []*html.Node
	for _, atom := range atoms {
		w, d := toggleAtom(atom.Root, category)
		wrappers = append(wrappers, w...)
		if d != nil {
			dirty = append(dirty, d)
		}
	}
	for _, d := range dirty {
		doctree.Normalize(d)
	}

	var out []*html.Node
	for _, w := range wrappers {
		if w.Parent != nil && w.FirstChild != nil && !slices.Contains(out, w) {
			out = append(out, w)
		}
	}
	return out
}

// toggleAtom applies the toggle to one standalone text node. It returns the wrappers
// standing around it and the node whose subtree needs normalizing, if any.
func toggleAtom(n *html.Node, category string) (wrappers []*html.Node, dirty *html.Node) {
	if n.Parent == nil {
		return nil, nil
	}
	switch classify(n) {
	case soleChild:
		return toggleSole(n, category)
	case mixedChild:
		return splitWrapper(n, category)
	default:
		w := doctree.NewMarker(category)
		doctree.Wrap(n, w)
		return []*html.Node{w}, nil
	}
}

func toggleSole(n *html.Node, category string) ([]*html.Node, *html.Node) {
	w := n.Parent
	if !doctree.HasCategory(w, category) {
		doctree.AddCategory(w, category)
		return []*html.Node{w}, nil
	}
	if len(doctree.RemoveCategory(w, category)) > 0 {
		return []*html.Node{w}, nil
	}
	gp := w.Parent
	doctree.Replace(w, n)
	return nil, gp
}

// toggledCategories returns cats with category flipped.
func toggledCategories(cats []string, category string) []string {
	if slices.Contains(cats, category) {
		return slices.DeleteFunc(slices.Clone(cats), func(c string) bool { return c == category })
	}
	return append(slices.Clone(cats), category)
}

// splitWrapper breaks n's marker parent into the part before n, n itself with the
// toggled tag set, and the part after n re-wrapped with the original tags.
func splitWrapper(n *html.Node, category string) ([]*html.Node, *html.Node) {
	w := n.Parent
	gp := w.Parent
	cats := doctree.Categories(w)

	var after []*html.Node
	for c := n.NextSibling; c != nil; c = c.NextSibling {
		after = append(after, c)
	}
	w.RemoveChild(n)
	for _, c := range after {
		w.RemoveChild(c)
	}
	for w.LastChild != nil && w.LastChild.Type == html.TextNode && w.LastChild.Data == "" {
		w.RemoveChild(w.LastChild)
	}

	// anchor is the node the pieces are inserted after; nil means "first in gp".
	var standing []*html.Node
	var anchor *html.Node
	if w.FirstChild == nil {
		anchor = w.PrevSibling
		gp.RemoveChild(w)
	} else {
		anchor = w
		standing = append(standing, w)
	}
	insert := func(x *html.Node) {
		if anchor == nil {
			gp.InsertBefore(x, gp.FirstChild)
		} else {
			doctree.InsertAfter(anchor, x)
		}
		anchor = x
	}

	if own := toggledCategories(cats, category); len(own) > 0 {
		m := doctree.NewMarker(own...)
		m.AppendChild(n)
		insert(m)
		standing = append(standing, m)
	} else {
		insert(n)
	}

	var rest *html.Node
	for _, c := range after {
		if c.Type == html.TextNode && c.Data == "" {
			continue
		}
		if rest == nil {
			rest = doctree.NewMarker(cats...)
		}
		rest.AppendChild(c)
	}
	if rest != nil {
		insert(rest)
		standing = append(standing, rest)
	}
	return standing, gp
}
