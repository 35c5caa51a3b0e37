package pgn

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Node type names produced by the tree-sitter PGN grammar.
const (
	TypeSeriesOfGames     = "series_of_games"
	TypeGame              = "game"
	TypeHeader            = "header"
	TypeMovetext          = "movetext"
	TypeVariation         = "variation"
	TypeSANMove           = "san_move"
	TypeLANMove           = "lan_move"
	TypeMoveNumber        = "move_number"
	TypeAnnotation        = "annotation"
	TypeInlineComment     = "inline_comment"
	TypeRestOfLineComment = "rest_of_line_comment"
	TypeResultCode        = "result_code"
)

// Document is an immutable text buffer paired with its syntax tree. The
// tree's node offsets index into the text; neither is mutated after
// construction. A Document obtained from a Parser is valid until the next
// edit is applied to that Parser.
type Document struct {
	content []byte
	tree    *sitter.Tree
}

// NewDocument parses content once and returns the resulting Document.
// The caller owns the Document and must Close it.
func NewDocument(content []byte) (*Document, error) {
	p, err := NewParser(content)
	if err != nil {
		return nil, err
	}
	// The parser is only needed to produce the tree; the tree stays valid
	// after the parser itself is closed.
	doc := p.Document()
	p.detach()
	return doc, nil
}

// Content returns the raw document text.
func (d *Document) Content() []byte {
	return d.content
}

// Len returns the document length in bytes.
func (d *Document) Len() int {
	return len(d.content)
}

// Root returns the root syntax node (a series_of_games).
func (d *Document) Root() *sitter.Node {
	return d.tree.RootNode()
}

// Close releases the syntax tree. Only call this on Documents constructed
// with NewDocument; Documents borrowed from a Parser are closed by it.
func (d *Document) Close() {
	if d.tree != nil {
		d.tree.Close()
		d.tree = nil
	}
}

// View is a caller-imposed sub-range of a document. All boundary trimming
// and root substitution are clamped to the view.
type View struct {
	Start int
	End   int
}

// FullView covers the whole document.
func (d *Document) FullView() View {
	return View{Start: 0, End: len(d.content)}
}

// Clamp forces pos into the view.
func (v View) Clamp(pos int) int {
	if pos < v.Start {
		return v.Start
	}
	if pos > v.End {
		return v.End
	}
	return pos
}

// Contains reports whether pos falls inside the view.
func (v View) Contains(pos int) bool {
	return pos >= v.Start && pos <= v.End
}

// isSpace matches the whitespace bytes PGN cares about.
func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// nodeSpan reports the node's byte span as ints.
func nodeSpan(n *sitter.Node) (int, int) {
	return int(n.StartByte()), int(n.EndByte())
}

// spanContains reports raw containment of pos in n's span.
func spanContains(n *sitter.Node, pos int) bool {
	start, end := nodeSpan(n)
	return pos >= start && pos < end
}

// Games returns the game nodes of the document in order.
func (d *Document) Games() []*sitter.Node {
	root := d.Root()
	var games []*sitter.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		c := root.NamedChild(i)
		if c.Type() == TypeGame {
			games = append(games, c)
		}
	}
	return games
}

// GameContaining returns the game node whose trimmed span contains pos.
// When pos falls in separator whitespace after a game, that preceding
// game is returned instead, matching how extraction attributes separator
// positions. Returns nil before the first game's true start. Raw game
// spans absorb the preceding separator whitespace, so attribution must
// go through trimmed boundaries.
func (d *Document) GameContaining(pos int) *sitter.Node {
	view := d.FullView()
	var prev *sitter.Node
	for _, g := range d.Games() {
		start := TrueStart(d, view, g)
		after := TrueAfter(d, view, g)
		if pos >= start && pos < after {
			return g
		}
		if after <= pos {
			prev = g
		}
	}
	return prev
}

// GameAfter returns the first game whose true start is at or after pos,
// or nil.
func (d *Document) GameAfter(pos int) *sitter.Node {
	view := d.FullView()
	for _, g := range d.Games() {
		if TrueStart(d, view, g) >= pos {
			return g
		}
	}
	return nil
}
