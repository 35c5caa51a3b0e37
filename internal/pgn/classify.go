package pgn

import (
	"regexp"
)

// Span is an explicit half-open [Start, End) match region in the
// document. Predicates return spans rather than relying on any shared
// match state.
type Span struct {
	Start int
	End   int
}

// sanToken matches a single SAN or LAN move token. Castling and LAN
// alternatives come first so the leftmost-first alternation prefers the
// longer forms.
const sanToken = `O-O-O|O-O|0-0-0|0-0` +
	`|[RNBQK][a-h]?[1-8]?x?[a-h][1-8]` +
	`|[a-h]x[a-h][1-8](?:=[RNBQK])?` +
	`|[a-h][1-8][x-][a-h][1-8](?:=[RNBQK])?` +
	`|[a-h][1-8](?:=[RNBQK])?`

var (
	strictMoveRe  = regexp.MustCompile(`^(` + sanToken + `)[+#]?`)
	relaxedMoveRe = regexp.MustCompile(`^[0-9]*\.*[ \t\r\n]*(` + sanToken + `)[+#]?`)

	resultCodeRe = regexp.MustCompile(`^(?:1-0|0-1|1/2-1/2|\*)[ \t]*(?:\r?\n|$)`)

	// ASCII suffix glyphs plus their Unicode equivalents.
	suffixAnnotationRe = regexp.MustCompile(`^(?:!!|\?\?|!\?|\?!|!|\?|‼|⁇|⁈|⁉)`)
)

const lineEscapeMarker = '%'

// enclosingTrimmed reports whether an ancestor of one of the given
// types encloses pos within its trimmed span. The grammar attaches
// inter-node whitespace to the following node's raw span, so raw
// containment alone would claim positions that sit before the node's
// first character.
func enclosingTrimmed(d *Document, pos int, types ...string) bool {
	n := ancestorOfType(d.NodeAt(pos), types...)
	return n != nil && trimmedContains(d, d.FullView(), n, pos)
}

// InsideComment reports whether pos falls inside an inline or
// rest-of-line comment.
func InsideComment(d *Document, pos int) bool {
	return enclosingTrimmed(d, pos, TypeInlineComment, TypeRestOfLineComment)
}

// InsideEscapedLine reports whether the line containing pos begins with
// the PGN line-escape marker.
func InsideEscapedLine(d *Document, pos int) bool {
	if pos > len(d.content) {
		pos = len(d.content)
	}
	start := pos
	for start > 0 && d.content[start-1] != '\n' {
		start--
	}
	return start < len(d.content) && d.content[start] == lineEscapeMarker
}

// InsideVariation reports whether pos falls inside a variation at any
// nesting depth.
func InsideVariation(d *Document, pos int) bool {
	return enclosingTrimmed(d, pos, TypeVariation)
}

// InsideHeader reports whether pos falls inside a game's header region.
func InsideHeader(d *Document, pos int) bool {
	return enclosingTrimmed(d, pos, TypeHeader)
}

// InsideSeparator reports whether pos falls in the blank gap between a
// header and its movetext or between two games, with no result code at
// the position. Separator gaps live inside the following node's raw
// span, so the check goes through trimmed containment: only whitespace
// that no header/movetext content encloses qualifies.
func InsideSeparator(d *Document, view View, pos int) bool {
	if LookingAtResultCode(d, view, pos) {
		return false
	}
	if pos < len(d.content) && !isSpace(d.content[pos]) {
		return false
	}
	n, err := Locate(d, view, pos)
	if err != nil {
		return false
	}
	t := n.Type()
	return t == TypeSeriesOfGames || t == TypeGame
}

// LookingAtResultCode reports whether pos starts a terminal result token
// followed only by whitespace to end of line.
func LookingAtResultCode(d *Document, view View, pos int) bool {
	if pos < view.Start || pos >= view.End {
		return false
	}
	return resultCodeRe.Match(d.content[pos:view.End])
}

// LookingAtSuffixAnnotation reports whether pos starts a SAN suffix
// glyph.
func LookingAtSuffixAnnotation(d *Document, view View, pos int) bool {
	if pos < view.Start || pos >= view.End {
		return false
	}
	return suffixAnnotationRe.Match(d.content[pos:view.End])
}

// midMoveToken reports whether pos sits strictly inside a move token,
// guarding against matching the tail of an already-consumed move (for
// example the "f3" inside "Nf3").
func midMoveToken(d *Document, view View, pos int) bool {
	if n := ancestorOfType(d.NodeAt(pos), TypeSANMove, TypeLANMove); n != nil {
		// Compare against the trimmed start; the raw span starts at the
		// token's leading whitespace.
		if pos > TrueStart(d, view, n) {
			return true
		}
	}
	// The tree misses this in error regions; fall back to a file-rank
	// letter check.
	if pos > view.Start && pos < view.End {
		prev, cur := d.content[pos-1], d.content[pos]
		if prev >= 'a' && prev <= 'h' && (cur == 'x' || (cur >= '1' && cur <= '8')) {
			return true
		}
	}
	return false
}

// LookingAtMove reports whether pos starts a legal-looking move token
// and returns the token's span. Relaxed matching permits a leading
// move-number, dots, and whitespace before the token; strict matching
// requires the token to start exactly at pos.
func LookingAtMove(d *Document, view View, pos int, strict bool) (Span, bool) {
	if pos < view.Start || pos >= view.End {
		return Span{}, false
	}
	if midMoveToken(d, view, pos) {
		return Span{}, false
	}
	re := relaxedMoveRe
	if strict {
		re = strictMoveRe
	}
	loc := re.FindSubmatchIndex(d.content[pos:view.End])
	if loc == nil {
		return Span{}, false
	}
	// The span covers the move token itself, check/mate marker included,
	// not the relaxed prefix.
	return Span{Start: pos + loc[2], End: pos + loc[1]}, true
}

// isMoveTokenByte covers the bytes a SAN/LAN token is built from.
func isMoveTokenByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'h', b >= '1' && b <= '8':
		return true
	}
	switch b {
	case 'R', 'N', 'B', 'Q', 'K', 'O', '0', 'x', '-', '=', '+', '#':
		return true
	}
	return false
}

// LookingBackAtMove reports whether the text after pos looks like
// whitespace or a suffix annotation and stepping one token backward
// lands exactly on a strict legal move ending at pos.
func LookingBackAtMove(d *Document, view View, pos int) (Span, bool) {
	if pos <= view.Start {
		return Span{}, false
	}
	if pos < view.End {
		b := d.content[pos]
		if !isSpace(b) && !suffixAnnotationRe.Match(d.content[pos:view.End]) {
			return Span{}, false
		}
	}
	back := pos
	for back > view.Start && isMoveTokenByte(d.content[back-1]) {
		back--
	}
	span, ok := LookingAtMove(d, view, back, true)
	if !ok || span.End != pos {
		return Span{}, false
	}
	return span, true
}
