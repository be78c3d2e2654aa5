package jerry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/jerry/internal/doctree"
	"github.com/dgallion1/jerry/internal/span"
)

// Token is one parsed highlight token.
type Token struct {
	Category string
	Start    int
	End      int
}

func (t Token) String() string {
	return fmt.Sprintf("%s.%s:%d-%d", doctree.RootTag, t.Category, t.Start, t.End)
}

// FormatToken encodes a whole-document range of category.
func FormatToken(category string, start, end int) (string, error) {
	if err := ValidCategory(category); err != nil {
		return "", err
	}
	if start < 0 || end < start {
		return "", fmt.Errorf("invalid range [%d,%d)", start, end)
	}
	return Token{Category: category, Start: start, End: end}.String(), nil
}

// ParseToken decodes "<root>.<category>:<start>-<end>". Every format violation is
// reported as ErrMalformedToken.
func ParseToken(s string) (Token, error) {
	malformed := func(reason string) (Token, error) {
		return Token{}, fmt.Errorf("%w: %q: %s", ErrMalformedToken, s, reason)
	}

	prefix, rest, ok := strings.Cut(s, ".")
	if !ok {
		return malformed("missing root marker")
	}
	if prefix != doctree.RootTag {
		return malformed("unknown root marker " + strconv.Quote(prefix))
	}
	category, offsets, ok := strings.Cut(rest, ":")
	if !ok {
		return malformed("missing offsets")
	}
	if ValidCategory(category) != nil {
		return malformed("invalid category")
	}
	startStr, endStr, ok := strings.Cut(offsets, "-")
	if !ok {
		return malformed("missing range separator")
	}
	start, err := parseOffset(startStr)
	if err != nil {
		return malformed("start: " + err.Error())
	}
	end, err := parseOffset(endStr)
	if err != nil {
		return malformed("end: " + err.Error())
	}
	if end < start {
		return malformed("end before start")
	}
	return Token{Category: category, Start: start, End: end}, nil
}

// parseOffset accepts non-negative base-10 integers without sign.
func parseOffset(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty offset")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
	}
	return strconv.Atoi(s)
}

// Serialize gathers the current highlights and encodes each merged range as a token
// in whole-document coordinates, ordered by category then offset. Categories that
// cannot be encoded are skipped.
func (c *Controller) Serialize() ([]string, error) {
	set := c.GatherHighlights()
	doc := doctree.DocumentRoot(c.root)

	var tokens []string
	for _, cat := range Categories(set) {
		if err := ValidCategory(cat); err != nil {
			c.log.Warn("skipping unserializable category", "category", cat)
			continue
		}
		for _, a := range set[cat] {
			abs, ok := a.Rebase(doc)
			if !ok {
				c.log.Warn("highlight not addressable in document", "category", cat, "address", a.String())
				continue
			}
			tok, err := FormatToken(cat, abs.Start, abs.End)
			if err != nil {
				return nil, fmt.Errorf("serialize %s: %w", cat, err)
			}
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}

// Deserialize decodes tokens into addresses under the controller's root, grouped by
// category. Tokens whose range does not fit this root are dropped; a malformed token
// fails the whole batch.
func (c *Controller) Deserialize(tokens []string) (map[string][]span.Address, error) {
	set, _, err := c.deserialize(tokens)
	return set, err
}

func (c *Controller) deserialize(tokens []string) (map[string][]span.Address, int, error) {
	doc := doctree.DocumentRoot(c.root)
	set := make(map[string][]span.Address)
	dropped := 0
	for _, s := range tokens {
		tok, err := ParseToken(s)
		if err != nil {
			return nil, 0, err
		}
		a, ok := span.NewAddress(doc, tok.Start, tok.End).Rebase(c.root)
		if !ok {
			c.log.Debug("dropping highlight token", "token", s)
			dropped++
			continue
		}
		set[tok.Category] = append(set[tok.Category], a)
	}
	return set, dropped, nil
}

// Restore deserializes tokens and applies them to the tree. It returns how many
// ranges needed mutation and how many tokens were dropped for not fitting the root.
func (c *Controller) Restore(tokens []string) (applied, dropped int, err error) {
	set, dropped, err := c.deserialize(tokens)
	if err != nil {
		return 0, 0, err
	}
	applied, err = c.Apply(set)
	if err != nil {
		return 0, dropped, err
	}
	return applied, dropped, nil
}
