package jerry

import (
	"github.com/dgallion1/jerry/internal/span"
	"golang.org/x/net/html"
)

// Rect is a box in pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Geometry is the host's layout engine.
type Geometry interface {
	// ClientRects returns the viewport boxes covering r.
	ClientRects(r span.Range) []Rect
	// BoundingRect returns the viewport box of n.
	BoundingRect(n *html.Node) Rect
	// ScrollTop returns n's vertical scroll offset.
	ScrollTop(n *html.Node) float64
}

// DrawHighlights returns the boxes covering addrs in the root's own coordinate
// space, ready to paint as an overlay.
func (c *Controller) DrawHighlights(addrs []span.Address) []Rect {
	if c.geometry == nil {
		return nil
	}
	origin := c.geometry.BoundingRect(c.root)
	scroll := c.geometry.ScrollTop(c.root)

	var rects []Rect
	for _, a := range addrs {
		for _, leaf := range a.ToLeafs() {
			r := span.Range{StartNode: leaf.Root, StartOffset: leaf.Start, EndNode: leaf.Root, EndOffset: leaf.End}
			for _, box := range c.geometry.ClientRects(r) {
				box.X -= origin.X
				box.Y = box.Y - origin.Y + scroll
				rects = append(rects, box)
			}
		}
	}
	return rects
}
