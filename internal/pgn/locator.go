package pgn

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// NodeAt returns the smallest named node whose raw span contains pos.
// Positions at or past the end of the document resolve to the root.
func (d *Document) NodeAt(pos int) *sitter.Node {
	n := d.Root()
	if !spanContains(n, pos) {
		return n
	}
	for {
		var next *sitter.Node
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if spanContains(c, pos) {
				next = c
				break
			}
		}
		if next == nil {
			return n
		}
		n = next
	}
}

// ancestorOfType walks upward from n (inclusive) and returns the first
// node whose type is one of types, or nil.
func ancestorOfType(n *sitter.Node, types ...string) *sitter.Node {
	for m := n; m != nil; m = m.Parent() {
		for _, t := range types {
			if m.Type() == t {
				return m
			}
		}
	}
	return nil
}

// TrueStart returns the node's first position after skipping leading
// whitespace. For the root node the result is clamped to the view start.
func TrueStart(d *Document, view View, n *sitter.Node) int {
	start, end := nodeSpan(n)
	for start < end && isSpace(d.content[start]) {
		start++
	}
	if n.Parent() == nil {
		return view.Clamp(start)
	}
	return start
}

// TrueEnd returns the position of the node's last character after
// retreating past trailing whitespace. For the root node the result is
// clamped to the view end.
func TrueEnd(d *Document, view View, n *sitter.Node) int {
	start, end := nodeSpan(n)
	for end > start && isSpace(d.content[end-1]) {
		end--
	}
	last := end - 1
	if last < start {
		last = start
	}
	if n.Parent() == nil && last > view.End-1 {
		last = view.End - 1
	}
	return last
}

// TrueAfter returns one past the node's true last position, clamped to
// the view end.
func TrueAfter(d *Document, view View, n *sitter.Node) int {
	after := TrueEnd(d, view, n) + 1
	if after > view.End {
		after = view.End
	}
	return after
}

// trimmedContains reports whether pos falls inside the node's
// whitespace-trimmed span.
func trimmedContains(d *Document, view View, n *sitter.Node, pos int) bool {
	return pos >= TrueStart(d, view, n) && pos < TrueAfter(d, view, n)
}

// Locate finds the syntax node anchoring pos.
//
// With no types, it returns the smallest node whose trimmed span
// contains pos, defaulting to the root. With one type, it walks upward
// from the node at pos until a node of that type is found. With several
// types, each type's upward chain is searched independently and the
// match with the latest trimmed start, the most narrowly nested one,
// wins. A requested type with no enclosing match yields
// ErrNoEnclosingNode.
func Locate(d *Document, view View, pos int, types ...string) (*sitter.Node, error) {
	pos = view.Clamp(pos)
	at := d.NodeAt(pos)

	if len(types) == 0 {
		for n := at; n != nil; n = n.Parent() {
			if trimmedContains(d, view, n, pos) {
				return n, nil
			}
		}
		return d.Root(), nil
	}

	var best *sitter.Node
	bestStart := -1
	for _, t := range types {
		found := ancestorOfType(at, t)
		if found == nil {
			continue
		}
		if start := TrueStart(d, view, found); start > bestStart {
			best = found
			bestStart = start
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %v at %d", ErrNoEnclosingNode, types, pos)
	}
	return best, nil
}
