package pgn

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestExtractAtMove(t *testing.T) {
	d := parse(t, sample)

	// On a move token the extraction runs through that token.
	got, err := ExtractAt(d, posOf(t, sample, "e5", 1))
	require.NoError(t, err)
	want := "[Event \"A\"]\n\n1. e4 e5"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("extraction mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractAtAfterMove(t *testing.T) {
	d := parse(t, sample)

	// On the space just after a move the extraction ends at the cursor.
	got, err := ExtractAt(d, posOf(t, sample, "e5", 1)+2)
	require.NoError(t, err)
	require.Equal(t, "[Event \"A\"]\n\n1. e4 e5", got)
}

func TestExtractAtMoveNumber(t *testing.T) {
	d := parse(t, sample)

	// A relaxed match from the move number runs through its move.
	got, err := ExtractAt(d, posOf(t, sample, "2. Nf3", 2))
	require.NoError(t, err)
	require.Equal(t, "[Event \"A\"]\n\n1. e4 e5 (1... c5 2. Nf3) 2. Nf3", got)
}

func TestExtractAtAfterVariationCloser(t *testing.T) {
	d := parse(t, sample)

	got, err := ExtractAt(d, posOf(t, sample, ")", 1)+1)
	require.NoError(t, err)
	require.Equal(t, "[Event \"A\"]\n\n1. e4 e5 (1... c5 2. Nf3)", got)
}

func TestExtractAtHeader(t *testing.T) {
	d := parse(t, sample)

	// Mid-header on the opening line advances to the end of that line.
	got, err := ExtractAt(d, posOf(t, sample, "Event", 1))
	require.NoError(t, err)
	require.Equal(t, "[Event \"A\"]\n", got)
}

func TestExtractAtSeparator(t *testing.T) {
	d := parse(t, twoGames)

	// Separator positions attribute to the preceding game, cut at the
	// cursor.
	sep := posOf(t, twoGames, "1-0", 1) + len("1-0") + 1
	got, err := ExtractAt(d, sep)
	require.NoError(t, err)
	require.Equal(t, "[Event \"A\"]\n\n1. e4 e5 1-0\n", got)
}

func TestExtractAtBeforeAnyGame(t *testing.T) {
	src := "\n\n" + sample
	d := parse(t, src)

	_, err := ExtractAt(d, 0)
	require.ErrorIs(t, err, ErrNoGame)
}

func TestExtractAsVariationPromotes(t *testing.T) {
	d := parse(t, sample)

	// At the closing paren of the side line, the side line becomes the
	// continuation and the introducing mainline moves drop out.
	got, err := ExtractAsVariation(d, posOf(t, sample, ")", 1))
	require.NoError(t, err)
	want := "[Event \"A\"]\n\n1... c5 2. Nf3"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("promotion mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractAsVariationMidVariation(t *testing.T) {
	d := parse(t, sample)

	got, err := ExtractAsVariation(d, posOf(t, sample, "c5", 1))
	require.NoError(t, err)
	require.Equal(t, "[Event \"A\"]\n\n1... c5", got)
}

func TestExtractAsVariationOutsideVariation(t *testing.T) {
	d := parse(t, sample)
	pos := posOf(t, sample, "e5", 1)

	literal, err := ExtractAt(d, pos)
	require.NoError(t, err)
	promoted, err := ExtractAsVariation(d, pos)
	require.NoError(t, err)
	require.Equal(t, literal, promoted)
}
