package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stubBackend is a shell stand-in for the real backend: a readiness
// banner, then one canned response line per request line.
const stubBackend = `#!/bin/sh
echo "pygn_server 0.6.0 ready"
while IFS= read -r line; do
  echo ':version 0.6.0 :fen rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1'
done
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backend.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0755))
	return path
}

func stubConfig(t *testing.T, body string) Config {
	return Config{
		Command:        []string{"/bin/sh", writeScript(t, body)},
		ReceiveTimeout: 2 * time.Second,
		StartupTimeout: 5 * time.Second,
	}
}

func TestSessionQuery(t *testing.T) {
	s := NewSession(stubConfig(t, stubBackend))
	defer s.Kill()

	// Query starts the session lazily.
	require.False(t, s.Running())
	raw, err := s.Query(CommandPGNToFEN, nil, PayloadTypePGN, "1. e4")
	require.NoError(t, err)
	require.True(t, s.Running())

	tag, content, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Equal(t, TagFEN, tag)
	require.Contains(t, content, "rnbqkbnr")
}

func TestSessionStartTwice(t *testing.T) {
	s := NewSession(stubConfig(t, stubBackend))
	defer s.Kill()

	require.NoError(t, s.Start(false))
	require.ErrorIs(t, s.Start(false), ErrAlreadyRunning)
	require.NoError(t, s.Start(true))
	require.True(t, s.Running())
}

func TestSessionRestart(t *testing.T) {
	s := NewSession(stubConfig(t, stubBackend))
	defer s.Kill()

	require.NoError(t, s.Start(false))
	require.NoError(t, s.Restart())
	require.True(t, s.Running())

	raw, err := s.Query(CommandPGNToFEN, nil, PayloadTypePGN, "1. e4")
	require.NoError(t, err)
	_, _, err = ParseResponse(raw)
	require.NoError(t, err)
}

func TestSessionBadBanner(t *testing.T) {
	s := NewSession(stubConfig(t, "#!/bin/sh\necho \"hello there\"\nsleep 5\n"))
	defer s.Kill()

	err := s.Start(false)
	require.ErrorIs(t, err, ErrStartupFailed)
	require.False(t, s.Running())
}

func TestSessionStartupTimeout(t *testing.T) {
	cfg := stubConfig(t, "#!/bin/sh\nsleep 5\n")
	cfg.StartupTimeout = 100 * time.Millisecond
	s := NewSession(cfg)
	defer s.Kill()

	err := s.Start(false)
	require.ErrorIs(t, err, ErrStartupFailed)
}

func TestSessionNoCommand(t *testing.T) {
	s := NewSession(Config{})
	require.ErrorIs(t, s.Start(false), ErrStartupFailed)
}

func TestSessionNotRunning(t *testing.T) {
	s := NewSession(stubConfig(t, stubBackend))

	require.ErrorIs(t, s.Send(CommandPGNToFEN, nil, PayloadTypePGN, "1. e4"), ErrNotRunning)
	_, err := s.Receive()
	require.ErrorIs(t, err, ErrNotRunning)
}

func TestSessionKillIdempotent(t *testing.T) {
	s := NewSession(stubConfig(t, stubBackend))
	require.NoError(t, s.Start(false))

	s.Kill()
	require.False(t, s.Running())
	s.Kill()
}

func TestSessionReceiveTimeoutPartial(t *testing.T) {
	// A backend that answers without a newline: Receive returns the
	// partial content after the ceiling, without an error.
	body := "#!/bin/sh\necho ready\nwhile IFS= read -r line; do\n  printf 'partial'\ndone\n"
	cfg := stubConfig(t, body)
	cfg.ReceiveTimeout = 200 * time.Millisecond
	s := NewSession(cfg)
	defer s.Kill()

	raw, err := s.Query(CommandPGNToFEN, nil, PayloadTypePGN, "1. e4")
	require.NoError(t, err)
	require.Equal(t, "partial", raw)
}
