package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dwcoates/pgn-mode/internal/cache"
)

func TestClientFEN(t *testing.T) {
	s := NewSession(stubConfig(t, stubBackend))
	defer s.Kill()
	c := NewClient(s, nil)

	fen, err := c.FEN("1. e4")
	require.NoError(t, err)
	require.Contains(t, fen, "rnbqkbnr")
}

func TestClientVersionMismatchRestartsSession(t *testing.T) {
	stale := `#!/bin/sh
echo "pygn_server 0.5.0 ready"
while IFS= read -r line; do
  echo ':version 0.5.0 :fen whatever'
done
`
	s := NewSession(stubConfig(t, stale))
	defer s.Kill()
	c := NewClient(s, nil)

	_, err := c.FEN("1. e4")
	require.ErrorIs(t, err, ErrVersionMismatch)

	// The session was force-restarted, ready for the next query.
	require.True(t, s.Running())
}

func TestClientUnexpectedTag(t *testing.T) {
	confused := `#!/bin/sh
echo ready
while IFS= read -r line; do
  echo ':version 0.6.0 :san 1. e4'
done
`
	s := NewSession(stubConfig(t, confused))
	defer s.Kill()
	c := NewClient(s, nil)

	_, err := c.FEN("1. e4")
	require.ErrorIs(t, err, ErrUnexpectedTag)
}

func TestClientCacheReadThrough(t *testing.T) {
	store, err := cache.Open(filepath.Join(t.TempDir(), "responses.db"))
	require.NoError(t, err)
	defer store.Close()

	s := NewSession(stubConfig(t, stubBackend))
	c := NewClient(s, store)

	fen, err := c.FEN("1. e4")
	require.NoError(t, err)

	// With the backend gone, a repeated query is served from the cache
	// without respawning the process.
	s.Kill()
	again, err := c.FEN("1. e4")
	require.NoError(t, err)
	require.Equal(t, fen, again)
	require.False(t, s.Running())
}

func TestClientBoard(t *testing.T) {
	svg := `#!/bin/sh
echo ready
while IFS= read -r line; do
  echo ':version 0.6.0 :board-svg <svg>...</svg>'
done
`
	s := NewSession(stubConfig(t, svg))
	defer s.Kill()
	c := NewClient(s, nil)

	board, err := c.Board("1. e4", BoardOptions{Format: "svg", Pixels: 400})
	require.NoError(t, err)
	require.Equal(t, TagBoardSVG, board.Kind)
	require.Equal(t, "<svg>...</svg>", board.Content)
}
