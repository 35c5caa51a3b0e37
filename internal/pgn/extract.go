package pgn

// The extraction engine computes the single-game notation substring
// implied by a position. Both modes return text spanning from the
// enclosing game's true start to a computed end position and tolerate
// trailing partial garbage; exact legality trimming is the backend's
// job.

// lineStartAt returns the offset of the first character of the line
// containing pos.
func (d *Document) lineStartAt(pos int) int {
	if pos > len(d.content) {
		pos = len(d.content)
	}
	for pos > 0 && d.content[pos-1] != '\n' {
		pos--
	}
	return pos
}

// nextLineStart returns the offset just past the newline ending the line
// containing pos, or the document end.
func (d *Document) nextLineStart(pos int) int {
	for pos < len(d.content) {
		if d.content[pos] == '\n' {
			return pos + 1
		}
		pos++
	}
	return pos
}

func (d *Document) atLineEnd(pos int) bool {
	return pos >= len(d.content) || d.content[pos] == '\n'
}

// afterCloser reports whether pos is immediately after a closing
// variation or comment delimiter.
func (d *Document) afterCloser(pos int) bool {
	if pos <= 0 || pos > len(d.content) {
		return false
	}
	b := d.content[pos-1]
	return b == ')' || b == '}'
}

// atCloser reports whether pos is on a closing delimiter.
func (d *Document) atCloser(pos int) bool {
	if pos < 0 || pos >= len(d.content) {
		return false
	}
	b := d.content[pos]
	return b == ')' || b == '}'
}

// endOfWord returns the offset just past the run of non-whitespace
// characters starting at pos.
func (d *Document) endOfWord(pos int) int {
	for pos < len(d.content) && !isSpace(d.content[pos]) {
		pos++
	}
	return pos
}

// searchMoveForward scans [pos, bound) for the first relaxed move match
// and returns the end of its token, or pos when nothing matches.
func searchMoveForward(d *Document, view View, pos, bound int) int {
	for q := pos; q < bound; q++ {
		if span, ok := LookingAtMove(d, view, q, false); ok {
			return span.End
		}
	}
	return pos
}

// ExtractAt returns the notation substring from the enclosing game's
// true start to the end position implied by pos (literal truncation
// mode). Positions in separator whitespace attribute to the preceding
// game.
func ExtractAt(d *Document, pos int) (string, error) {
	view := d.FullView()
	game := d.GameContaining(pos)
	if game == nil {
		return "", ErrNoGame
	}
	gameStart := TrueStart(d, view, game)
	gameAfter := TrueAfter(d, view, game)

	end := pos
	switch {
	case InsideHeader(d, pos):
		// Never split the opening tag line mid-header.
		if !d.atLineEnd(pos) && d.lineStartAt(pos) == d.lineStartAt(gameStart) {
			end = d.nextLineStart(pos)
		}
	case InsideSeparator(d, view, pos):
	case InsideVariation(d, pos) || InsideComment(d, pos):
	case LookingAtResultCode(d, view, pos):
	default:
		if _, ok := LookingBackAtMove(d, view, pos); ok {
			break
		}
		if d.afterCloser(pos) {
			break
		}
		if span, ok := LookingAtMove(d, view, pos, false); ok {
			end = span.End
			break
		}
		if pos == d.lineStartAt(pos) || (pos > 0 && isSpace(d.content[pos-1])) {
			break
		}
		bound := d.endOfWord(pos)
		if gameAfter < bound {
			bound = gameAfter
		}
		end = searchMoveForward(d, view, pos, bound)
	}

	if end < gameStart {
		end = gameStart
	}
	return string(d.content[gameStart:end]), nil
}

// ExtractAsVariation returns the notation substring for pos rewritten so
// an in-progress side line reads as the actual game continuation. For a
// pos outside any variation this is identical to ExtractAt. Only one
// level of promotion is supported: a variation nested inside another
// variation is unwound a single level.
func ExtractAsVariation(d *Document, pos int) (string, error) {
	if !InsideVariation(d, pos) {
		return ExtractAt(d, pos)
	}
	view := d.FullView()
	game := d.GameContaining(pos)
	if game == nil {
		return "", ErrNoGame
	}
	gameStart := TrueStart(d, view, game)

	variation, err := Locate(d, view, pos, TypeVariation)
	if err != nil {
		return "", err
	}
	// The raw span begins at the variation's leading whitespace; the
	// opening delimiter sits at the trimmed start.
	varOpen := TrueStart(d, view, variation)
	varEnd := int(variation.EndByte())

	end := pos
	switch {
	case d.atCloser(pos) || d.afterCloser(pos):
	case InsideComment(d, pos):
	default:
		if _, ok := LookingBackAtMove(d, view, pos); ok {
			break
		}
		if span, ok := LookingAtMove(d, view, pos, false); ok {
			end = span.End
			break
		}
		bound := d.endOfWord(pos)
		if varEnd < bound {
			bound = varEnd
		}
		end = searchMoveForward(d, view, pos, bound)
	}

	if end <= varOpen {
		// The computed end fell before the side line began; nothing to
		// promote after all.
		return string(d.content[gameStart:end]), nil
	}

	// Promote: drop the opening delimiter and everything from the
	// mainline move number that introduced the side line up to it. That
	// move number is invalid once the variation becomes the actual
	// continuation, and any moves, comments, or nested variations
	// between it and the opening point go with it.
	deleteFrom := varOpen
	for prev := variation.PrevNamedSibling(); prev != nil; prev = prev.PrevNamedSibling() {
		if prev.Type() == TypeMoveNumber {
			deleteFrom = TrueStart(d, view, prev)
			break
		}
	}
	if deleteFrom == varOpen {
		// No introducing move number; just drop trailing whitespace
		// before the opening delimiter.
		for deleteFrom > gameStart && isSpace(d.content[deleteFrom-1]) {
			deleteFrom--
		}
	}
	if deleteFrom < gameStart {
		deleteFrom = gameStart
	}

	out := make([]byte, 0, end-gameStart)
	out = append(out, d.content[gameStart:deleteFrom]...)
	out = append(out, d.content[varOpen+1:end]...)
	return string(out), nil
}
