package doctree

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// HasAttr reports whether n carries the attribute key.
func HasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// GetAttr returns the value of key on n.
func GetAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key to val, adding the attribute if missing.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes key from n.
func RemoveAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool { return a.Key == key })
}

// Categories returns the category tags of a marker wrapper (its class tokens) in order.
func Categories(n *html.Node) []string {
	v, _ := GetAttr(n, "class")
	return strings.Fields(v)
}

// HasCategory reports whether n carries category.
func HasCategory(n *html.Node, category string) bool {
	return slices.Contains(Categories(n), category)
}

// SetCategories replaces n's category tags.
func SetCategories(n *html.Node, categories []string) {
	if len(categories) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(categories, " "))
}

// AddCategory adds category to n if absent.
func AddCategory(n *html.Node, category string) {
	cats := Categories(n)
	if slices.Contains(cats, category) {
		return
	}
	SetCategories(n, append(cats, category))
}

// RemoveCategory drops category from n and returns the tags left.
func RemoveCategory(n *html.Node, category string) []string {
	cats := slices.DeleteFunc(Categories(n), func(c string) bool { return c == category })
	SetCategories(n, cats)
	return cats
}

// NewMarker creates a detached highlight wrapper carrying categories.
func NewMarker(categories ...string) *html.Node {
	m := NewElement(MarkerTag, html.Attribute{Key: MarkerAttr})
	SetCategories(m, categories)
	return m
}
