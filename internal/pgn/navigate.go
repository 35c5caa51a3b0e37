package pgn

import (
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// The move navigator is a state machine over (document, position).
// Nothing is stored between calls: the returned position is the only
// memory, and NoMoreMoves always leaves the caller's position usable
// unchanged.

// moveNumberRune covers the characters skipped when stepping across
// move-number punctuation: digits, dots, the ellipsis used for black
// continuations, and whitespace.
func moveNumberRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	}
	switch r {
	case '.', '…', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func skipMoveNumberBack(d *Document, view View, pos int) int {
	for pos > view.Start {
		r, size := utf8.DecodeLastRune(d.content[view.Start:pos])
		if !moveNumberRune(r) {
			break
		}
		pos -= size
	}
	return pos
}

func skipSpaceBack(d *Document, view View, pos int) int {
	for pos > view.Start && isSpace(d.content[pos-1]) {
		pos--
	}
	return pos
}

// variationStrictlyInside returns the innermost variation enclosing pos
// when pos is past its opening delimiter, nil otherwise. A position
// sitting exactly on the opening paren counts as outside. The trimmed
// start is the paren; the raw span starts at its leading whitespace.
func variationStrictlyInside(d *Document, pos int) *sitter.Node {
	v := ancestorOfType(d.NodeAt(pos), TypeVariation)
	if v != nil && pos > TrueStart(d, d.FullView(), v) {
		return v
	}
	return nil
}

func commentEnclosing(d *Document, pos int) *sitter.Node {
	return ancestorOfType(d.NodeAt(pos), TypeInlineComment, TypeRestOfLineComment)
}

// insideVariationOrComment reports nesting for the navigator's purposes.
func insideVariationOrComment(d *Document, pos int) bool {
	if variationStrictlyInside(d, pos) != nil {
		return true
	}
	c := commentEnclosing(d, pos)
	return c != nil && pos > TrueStart(d, d.FullView(), c)
}

// ExitNested unwinds pos backward out of every enclosing variation and
// comment. While pos is inside parens it jumps to the enclosing opening
// paren; inside a comment it skips to just before the opening delimiter;
// just after a closing delimiter it steps back across it. Whitespace is
// skipped backward after every step, crossing line boundaries.
func ExitNested(d *Document, view View, pos int) int {
	for {
		if v := variationStrictlyInside(d, pos); v != nil {
			pos = TrueStart(d, view, v)
		} else if c := commentEnclosing(d, pos); c != nil && pos >= TrueStart(d, view, c) {
			pos = TrueStart(d, view, c) - 1
			if pos < view.Start {
				pos = view.Start
			}
		} else {
			p := skipSpaceBack(d, view, pos)
			if p > view.Start && (d.content[p-1] == ')' || d.content[p-1] == '}') {
				pos = p - 1
			} else {
				return skipSpaceBack(d, view, pos)
			}
		}
		pos = skipSpaceBack(d, view, pos)
	}
}

func allSpace(b []byte) bool {
	for _, c := range b {
		if !isSpace(c) {
			return false
		}
	}
	return true
}

func moveTokenEnclosing(d *Document, pos int) *sitter.Node {
	return ancestorOfType(d.NodeAt(pos), TypeSANMove, TypeLANMove)
}

// gameView narrows to the enclosing game's trimmed span.
func gameView(d *Document, game *sitter.Node) View {
	full := d.FullView()
	return View{
		Start: TrueStart(d, full, game),
		End:   TrueAfter(d, full, game),
	}
}

// NextMove advances pos forward across count move tokens, skipping
// move-number punctuation and jumping over nested variations and
// comments. It returns ErrNoMoreMoves, with pos untouched, when the game
// runs out of moves.
func NextMove(d *Document, pos, count int) (int, error) {
	orig := pos

	// In the separator before a game, step into that game.
	if d.NodeAt(pos).Type() == TypeSeriesOfGames {
		if g := d.GameAfter(pos); g != nil {
			if start := TrueStart(d, d.FullView(), g); allSpace(d.content[pos:start]) {
				pos = start
			}
		}
	}

	game := ancestorOfType(d.NodeAt(pos), TypeGame)
	if game == nil {
		return orig, ErrNoMoreMoves
	}
	view := gameView(d, game)

	// Positions in the header jump to the start of the movetext-or-result
	// child.
	if int(game.NamedChildCount()) >= 2 {
		second := game.NamedChild(1)
		if pos < int(second.StartByte()) {
			pos = TrueStart(d, view, second)
		}
	}
	if ancestorOfType(d.NodeAt(pos), TypeMovetext) == nil {
		return orig, ErrNoMoreMoves
	}

	for i := 0; i < count; i++ {
		if mv := moveTokenEnclosing(d, pos); mv != nil {
			pos = TrueAfter(d, view, mv)
		}
		for moveTokenEnclosing(d, pos) == nil {
			if pos >= view.End {
				return orig, ErrNoMoreMoves
			}
			if vc := ancestorOfType(d.NodeAt(pos),
				TypeVariation, TypeInlineComment, TypeRestOfLineComment); vc != nil {
				pos = TrueAfter(d, view, vc)
				continue
			}
			if isSpace(d.content[pos]) {
				pos++
				continue
			}
			if sib := d.NodeAt(pos).NextNamedSibling(); sib != nil {
				pos = TrueStart(d, view, sib)
			} else {
				pos++
			}
		}
	}

	for pos < view.End && isSpace(d.content[pos]) {
		pos++
	}
	return pos, nil
}

// PreviousMove steps pos backward across count move tokens, unwinding
// out of nested variations and comments. It returns ErrNoMoreMoves,
// with pos untouched, at the first move of a game or inside the header.
func PreviousMove(d *Document, pos, count int) (int, error) {
	orig := pos

	game := ancestorOfType(d.NodeAt(pos), TypeGame)
	if game == nil {
		return orig, ErrNoMoreMoves
	}
	view := gameView(d, game)

	if InsideHeader(d, pos) {
		return orig, ErrNoMoreMoves
	}

	thumb := pos
	for i := 0; i < count; i++ {
		thumb = pos
		if _, ok := LookingAtMove(d, view, pos, false); ok {
			pos = skipMoveNumberBack(d, view, pos)
			if pos > view.Start {
				pos--
			}
		}
		for {
			// Once the walk backs into the header the game has no earlier
			// move; stopping here keeps SAN-shaped tag values (a header
			// like [Opening "e4"]) from masquerading as one.
			if InsideHeader(d, pos) {
				break
			}
			_, looking := LookingAtMove(d, view, pos, false)
			if looking && !insideVariationOrComment(d, pos) {
				break
			}
			prev := pos
			if insideVariationOrComment(d, pos) {
				pos = ExitNested(d, view, pos)
			} else {
				pos = skipMoveNumberBack(d, view, pos)
				pos = backwardUnit(d, view, pos)
			}
			if pos == prev {
				break
			}
		}
	}

	if _, ok := LookingAtMove(d, view, pos, false); !ok {
		pos = thumb
		if thumb == orig {
			return orig, ErrNoMoreMoves
		}
	}
	return pos, nil
}

func isDelimByte(b byte) bool {
	switch b {
	case '(', ')', '{', '}', '[', ']':
		return true
	}
	return false
}

// backwardUnit moves pos back one lexical unit: a delimited group is
// jumped over whole, anything else one word.
func backwardUnit(d *Document, view View, pos int) int {
	p := skipSpaceBack(d, view, pos)
	if p <= view.Start {
		return view.Start
	}
	switch c := d.content[p-1]; c {
	case ')', '}':
		n := ancestorOfType(d.NodeAt(p-1),
			TypeVariation, TypeInlineComment, TypeRestOfLineComment)
		if n != nil && int(n.EndByte()) == p {
			return TrueStart(d, view, n)
		}
		return p - 1
	case ']':
		for q := p - 1; q > view.Start; q-- {
			if d.content[q-1] == '[' {
				return q - 1
			}
		}
		return p - 1
	default:
		for p > view.Start && !isSpace(d.content[p-1]) && !isDelimByte(d.content[p-1]) {
			p--
		}
		return p
	}
}
