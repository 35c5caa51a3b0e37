package pgn

import "errors"

var (
	// ErrNoMoreMoves is returned by the navigator when no move exists in
	// the requested direction. The position is never moved when this is
	// returned.
	ErrNoMoreMoves = errors.New("no more moves")

	// ErrNoEnclosingNode is returned by Locate when a node of a requested
	// type does not enclose the position.
	ErrNoEnclosingNode = errors.New("no enclosing node of requested type")

	// ErrNoGame is returned when a position is not attributable to any
	// game in the document.
	ErrNoGame = errors.New("position is not within any game")
)
