package jerry

import (
	"github.com/dgallion1/jerry/internal/doctree"
	"github.com/dgallion1/jerry/internal/span"
	"golang.org/x/net/html"
)

// Selection is the host's active selection.
type Selection interface {
	// Current returns the selected range; ok is false when nothing is selected.
	Current() (r span.Range, ok bool)
	// Set replaces the selection.
	Set(r span.Range)
}

// StaticSelection is a Selection held in memory.
type StaticSelection struct {
	r  span.Range
	ok bool
}

// NewStaticSelection returns a selection holding r.
func NewStaticSelection(r span.Range) *StaticSelection {
	return &StaticSelection{r: r, ok: true}
}

func (s *StaticSelection) Current() (span.Range, bool) {
	return s.r, s.ok
}

func (s *StaticSelection) Set(r span.Range) {
	s.r = r
	s.ok = true
}

// Clear removes the selection.
func (s *StaticSelection) Clear() {
	s.r = span.Range{}
	s.ok = false
}

// GetSelection maps the host selection onto the root's offsets. ok is false when
// there is no selection or an endpoint lies outside the root.
func (c *Controller) GetSelection() (span.Address, bool) {
	if c.selection == nil {
		return span.Address{}, false
	}
	r, ok := c.selection.Current()
	if !ok || r.StartNode == nil || r.EndNode == nil {
		return span.Address{}, false
	}
	start, startLocal, ok := c.resolve(r.StartNode, r.StartOffset)
	if !ok {
		return span.Address{}, false
	}
	end, endLocal, ok := c.resolve(r.EndNode, r.EndOffset)
	if !ok {
		return span.Address{}, false
	}
	if end < start {
		start, end = end, start
		startLocal, endLocal = endLocal, startLocal
	}

	var bias span.Bias
	switch {
	case startLocal == 0:
		bias = span.Right
	case start != end && endLocal == 0:
		bias = span.Left
	case start == end && doctree.IsText(r.StartNode) && startLocal == doctree.TextLen(r.StartNode):
		bias = span.Left
	}
	return span.NewAddress(c.root, start, end).WithBias(bias), true
}

// resolve turns a host position into a root offset, clamped to the node's span.
// Text positions count characters; container positions count children.
func (c *Controller) resolve(n *html.Node, offset int) (pos, local int, ok bool) {
	a, ok := c.index.Lookup[n]
	if !ok {
		return 0, 0, false
	}
	offset = max(0, offset)
	if doctree.IsText(n) {
		pos = a.Start + offset
	} else if child := doctree.ChildAt(n, offset); child != nil {
		pos = c.index.Lookup[child].Start
	} else {
		pos = a.End
	}
	pos = max(a.Start, min(pos, a.End))
	if doctree.IsText(n) {
		offset = pos - a.Start
	}
	return pos, offset, true
}

// Select sets the host selection to a. It reports false when a has no host range.
func (c *Controller) Select(a span.Address) bool {
	if c.selection == nil {
		return false
	}
	r, ok := a.Range()
	if !ok {
		return false
	}
	c.selection.Set(r)
	return true
}
