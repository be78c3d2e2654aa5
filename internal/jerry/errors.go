// Package jerry is the per-document highlighting session: it keeps the flat index of a
// root node current, turns host selections into addresses, collects highlights and
// converts them to and from persistent tokens.
package jerry

import "errors"

var (
	// ErrMalformedToken indicates a serialized highlight token that does not follow
	// the "<root>.<category>:<start>-<end>" format.
	ErrMalformedToken = errors.New("malformed highlight token")

	// ErrInvalidCategory indicates a category that cannot be stored as a class token
	// or serialized (empty, or containing whitespace, '.' or ':').
	ErrInvalidCategory = errors.New("invalid highlight category")
)
