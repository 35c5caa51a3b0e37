package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "responses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestKey(t *testing.T) {
	a := Key(":pgn-to-fen", "", "1. e4")
	b := Key(":pgn-to-fen", "", "1. e4")
	require.Equal(t, a, b)

	require.NotEqual(t, a, Key(":pgn-to-fen", "", "1. d4"))
	require.NotEqual(t, a, Key(":pgn-to-board", "", "1. e4"))
	require.NotEqual(t, a, Key(":pgn-to-fen", " -pixels=400", "1. e4"))

	// The separator keeps field boundaries from colliding.
	require.NotEqual(t, Key("a", "b", "c"), Key("ab", "", "c"))
}

func TestStoreRoundTrip(t *testing.T) {
	s := openStore(t)

	_, _, ok, err := s.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)

	key := Key(":pgn-to-fen", "", "1. e4")
	require.NoError(t, s.Put(key, ":fen", "some position"))

	tag, content, ok, err := s.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ":fen", tag)
	require.Equal(t, "some position", content)
}

func TestStoreUpsert(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.Put("k", ":fen", "old"))
	require.NoError(t, s.Put("k", ":fen", "new"))

	_, content, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "new", content)
}

func TestStoreDelete(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.Put("k", ":fen", "v"))
	require.NoError(t, s.Delete("k"))
	_, _, ok, err := s.Get("k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Delete("never-there"))
}

func TestStoreClear(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.Put("a", ":fen", "1"))
	require.NoError(t, s.Put("b", ":san", "2"))
	require.NoError(t, s.Clear())

	_, _, ok, err := s.Get("a")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put("k", ":fen", "persisted"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, content, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "persisted", content)
}
