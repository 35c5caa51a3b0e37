package pgn

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// sample is a single game with one side line, the shape most tests
// poke at.
const sample = "[Event \"A\"]\n\n1. e4 e5 (1... c5 2. Nf3) 2. Nf3 *\n"

// twoGames has separator whitespace between complete games.
const twoGames = "[Event \"A\"]\n\n1. e4 e5 1-0\n\n[Event \"B\"]\n\n1. d4 d5 *\n"

func parse(t *testing.T, src string) *Document {
	t.Helper()
	d, err := NewDocument([]byte(src))
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

// posOf finds the nth occurrence (1-based) of sub in src.
func posOf(t *testing.T, src, sub string, nth int) int {
	t.Helper()
	pos := -1
	for i := 0; i < nth; i++ {
		next := strings.Index(src[pos+1:], sub)
		require.GreaterOrEqual(t, next, 0, "occurrence %d of %q", nth, sub)
		pos += 1 + next
	}
	return pos
}

func TestGames(t *testing.T) {
	d := parse(t, twoGames)
	games := d.Games()
	require.Len(t, games, 2)
	require.Equal(t, TypeGame, games[0].Type())
}

func TestGameContaining(t *testing.T) {
	d := parse(t, twoGames)

	inFirst := posOf(t, twoGames, "e4", 1)
	g := d.GameContaining(inFirst)
	require.NotNil(t, g)
	require.Equal(t, 0, int(g.StartByte()))

	// Separator whitespace attributes to the preceding game.
	sep := posOf(t, twoGames, "1-0", 1) + len("1-0") + 1
	g = d.GameContaining(sep)
	require.NotNil(t, g)
	require.Equal(t, 0, int(g.StartByte()))

	inSecond := posOf(t, twoGames, "d4", 1)
	g = d.GameContaining(inSecond)
	require.NotNil(t, g)
	require.Equal(t, posOf(t, twoGames, "[Event \"B\"]", 1), TrueStart(d, d.FullView(), g))
}

func TestGameContainingBeforeFirstGame(t *testing.T) {
	src := "\n\n" + sample
	d := parse(t, src)

	// Leading whitespace belongs to the first game's raw span but
	// precedes its true start.
	require.Nil(t, d.GameContaining(0))
	require.NotNil(t, d.GameContaining(posOf(t, src, "[Event", 1)))
}

func TestGameAfter(t *testing.T) {
	d := parse(t, twoGames)

	g := d.GameAfter(0)
	require.NotNil(t, g)
	require.Equal(t, 0, int(g.StartByte()))

	sep := posOf(t, twoGames, "1-0", 1) + len("1-0") + 1
	g = d.GameAfter(sep)
	require.NotNil(t, g)
	require.Equal(t, posOf(t, twoGames, "[Event \"B\"]", 1), TrueStart(d, d.FullView(), g))

	require.Nil(t, d.GameAfter(len(twoGames)))
}

func TestViewClamp(t *testing.T) {
	v := View{Start: 5, End: 10}
	require.Equal(t, 5, v.Clamp(0))
	require.Equal(t, 10, v.Clamp(99))
	require.Equal(t, 7, v.Clamp(7))
	require.True(t, v.Contains(5))
	require.True(t, v.Contains(10))
	require.False(t, v.Contains(11))
}
