package jerry

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dgallion1/jerry/internal/doctree"
	"github.com/dgallion1/jerry/internal/span"
	"golang.org/x/net/html"
)

// Options wires the host collaborators into a Controller. Any of them may be nil.
type Options struct {
	Selection Selection
	Geometry  Geometry
	Logger    *slog.Logger
}

// Controller is a highlighting session over one root node. It is not safe for
// concurrent use; callers serialize access to it and to the tree it owns.
type Controller struct {
	root      *html.Node
	index     span.Index
	selection Selection
	geometry  Geometry
	log       *slog.Logger
}

// New creates a Controller over root and builds its first index.
func New(root *html.Node, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{
		root:      root,
		selection: opts.Selection,
		geometry:  opts.Geometry,
		log:       log,
	}
	c.Refresh()
	return c
}

// Refresh rebuilds the index. It must run after any mutation of the tree.
func (c *Controller) Refresh() {
	c.index = span.Build(c.root)
}

// Root returns the node the controller addresses.
func (c *Controller) Root() *html.Node {
	return c.root
}

// Span returns the address of the whole root as of the last Refresh.
func (c *Controller) Span() span.Address {
	return c.index.Span
}

// Content returns the flattened text of the root as of the last Refresh.
func (c *Controller) Content() string {
	return c.index.Content
}

// Address returns the span of n as of the last Refresh.
func (c *Controller) Address(n *html.Node) (span.Address, bool) {
	a, ok := c.index.Lookup[n]
	return a, ok
}

// ValidCategory checks that category can be carried as a class token and serialized.
func ValidCategory(category string) error {
	if category == "" || strings.ContainsAny(category, ".: \t\n\r\f") {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	return nil
}

// Toggle highlights category over a and refreshes the index. It returns the marker
// wrappers standing around the affected text.
func (c *Controller) Toggle(a span.Address, category string) ([]*html.Node, error) {
	if err := ValidCategory(category); err != nil {
		return nil, err
	}
	wrappers := a.Highlight(category)
	c.Refresh()
	return wrappers, nil
}

// GatherHighlights re-indexes the root and returns, per category, the union-reduced
// addresses of every marker wrapper carrying it. Wrappers covering no text are skipped.
func (c *Controller) GatherHighlights() map[string][]span.Address {
	c.Refresh()
	groups := make(map[string][]span.Address)
	doctree.Walk(c.root, func(n *html.Node) bool {
		if !doctree.IsMarker(n) {
			return true
		}
		a, ok := c.index.Lookup[n]
		if !ok || a.IsCollapsed() {
			return true
		}
		for _, cat := range doctree.Categories(n) {
			groups[cat] = append(groups[cat], a)
		}
		return true
	})
	for cat, addrs := range groups {
		groups[cat] = span.Union(addrs)
	}
	return groups
}

// Categories returns the keys of a highlight set in sorted order.
func Categories(set map[string][]span.Address) []string {
	cats := make([]string, 0, len(set))
	for cat := range set {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}

// Apply makes sure every address in set is highlighted with its category, touching
// only the parts not already covered so existing highlights are never toggled off.
// It returns the number of ranges that needed mutation.
func (c *Controller) Apply(set map[string][]span.Address) (int, error) {
	for _, cat := range Categories(set) {
		if err := ValidCategory(cat); err != nil {
			return 0, err
		}
	}
	applied := 0
	for _, cat := range Categories(set) {
		var want []span.Address
		for _, a := range set[cat] {
			if a.Root != c.root {
				rebased, ok := a.Rebase(c.root)
				if !ok {
					c.log.Debug("skipping highlight outside root", "category", cat, "address", a.String())
					continue
				}
				a = rebased
			}
			if !a.IsCollapsed() {
				want = append(want, a)
			}
		}
		if len(want) == 0 {
			continue
		}
		// Highlighting never moves offsets, so gaps computed against one gather stay
		// valid while earlier gaps of the same category are applied.
		covered := c.GatherHighlights()[cat]
		for _, a := range span.Union(want) {
			for _, gap := range subtract(a, covered) {
				gap.Highlight(cat)
				applied++
			}
		}
	}
	c.Refresh()
	return applied, nil
}

// subtract returns the parts of a not covered by the sorted, disjoint addresses in covered.
func subtract(a span.Address, covered []span.Address) []span.Address {
	var gaps []span.Address
	pos := a.Start
	for _, cv := range covered {
		if cv.End <= pos || cv.Start >= a.End {
			continue
		}
		if cv.Start > pos {
			gaps = append(gaps, span.NewAddress(a.Root, pos, cv.Start))
		}
		pos = max(pos, cv.End)
	}
	if pos < a.End {
		gaps = append(gaps, span.NewAddress(a.Root, pos, a.End))
	}
	return gaps
}
