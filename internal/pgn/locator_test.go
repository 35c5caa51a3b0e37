package pgn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocateSmallest(t *testing.T) {
	d := parse(t, sample)
	view := d.FullView()

	n, err := Locate(d, view, posOf(t, sample, "e4", 1))
	require.NoError(t, err)
	require.Equal(t, TypeSANMove, n.Type())

	n, err = Locate(d, view, posOf(t, sample, "c5", 1))
	require.NoError(t, err)
	require.Equal(t, TypeSANMove, n.Type())
}

func TestLocateTyped(t *testing.T) {
	d := parse(t, sample)
	view := d.FullView()
	inVar := posOf(t, sample, "c5", 1)

	n, err := Locate(d, view, inVar, TypeVariation)
	require.NoError(t, err)
	require.Equal(t, TypeVariation, n.Type())

	n, err = Locate(d, view, inVar, TypeGame)
	require.NoError(t, err)
	require.Equal(t, TypeGame, n.Type())
}

func TestLocateTypedPrefersInnermost(t *testing.T) {
	d := parse(t, sample)
	view := d.FullView()
	inVar := posOf(t, sample, "c5", 1)

	// The variation starts after the game, so it wins.
	n, err := Locate(d, view, inVar, TypeGame, TypeVariation)
	require.NoError(t, err)
	require.Equal(t, TypeVariation, n.Type())
}

func TestLocateNoEnclosing(t *testing.T) {
	d := parse(t, sample)
	view := d.FullView()

	_, err := Locate(d, view, posOf(t, sample, "e4", 1), TypeVariation)
	require.ErrorIs(t, err, ErrNoEnclosingNode)
}

func TestTrueBoundaries(t *testing.T) {
	src := "\n\n" + sample
	d := parse(t, src)
	view := d.FullView()

	game := d.GameContaining(posOf(t, src, "e4", 1))
	require.NotNil(t, game)
	require.Equal(t, posOf(t, src, "[Event", 1), TrueStart(d, view, game))

	// The true end sits on the final result character, not the newline.
	require.Equal(t, posOf(t, src, "*", 1), TrueEnd(d, view, game))
	require.Equal(t, posOf(t, src, "*", 1)+1, TrueAfter(d, view, game))
}

func TestNodeAtPastEnd(t *testing.T) {
	d := parse(t, sample)
	n := d.NodeAt(len(sample) + 10)
	require.Equal(t, TypeSeriesOfGames, n.Type())
}
