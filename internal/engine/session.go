package engine

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Defaults for the cooperative receive poll and the startup wait.
const (
	DefaultPollInterval   = 10 * time.Millisecond
	DefaultReceiveTimeout = 500 * time.Millisecond
	DefaultStartupTimeout = 5 * time.Second
)

var readyRe = regexp.MustCompile(`(?i)ready`)

// Config describes how to spawn and talk to the backend process.
type Config struct {
	// Command is the backend process argv, e.g. ["python3", "pygn_server.py"].
	Command []string

	// LibraryPath, when set, overrides the backend's library search path
	// (PYTHONPATH) so the process runs against a known environment.
	LibraryPath string

	// StderrPath redirects backend diagnostics to a file. Empty discards
	// them; they are never interleaved with stdout.
	StderrPath string

	PollInterval   time.Duration
	ReceiveTimeout time.Duration
	StartupTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ReceiveTimeout == 0 {
		c.ReceiveTimeout = DefaultReceiveTimeout
	}
	if c.StartupTimeout == 0 {
		c.StartupTimeout = DefaultStartupTimeout
	}
	return c
}

// outputBuffer accumulates backend stdout. Receive clears it atomically,
// so a session restart abandons whatever a concurrent read had gathered.
type outputBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *outputBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *outputBuffer) take() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.buf.String()
	b.buf.Reset()
	return s
}

func (b *outputBuffer) complete() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	raw := b.buf.Bytes()
	return len(raw) > 0 && raw[len(raw)-1] == '\n'
}

func (b *outputBuffer) hasLine() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.IndexByte(b.buf.Bytes(), '\n') >= 0
}

// Session is a long-lived handle to one backend process. Only one
// request/response pair may be in flight at a time; Query serializes
// itself, and direct Send/Receive callers must do the same.
type Session struct {
	mu      sync.Mutex
	cfg     Config
	id      string
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	out     *outputBuffer
	stderr  *os.File
	running bool
}

// NewSession creates a stopped session. The process is spawned by Start,
// or lazily by the first Query.
func NewSession(cfg Config) *Session {
	return &Session{cfg: cfg.withDefaults()}
}

// Running reports whether a backend process is live.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start spawns the backend process and blocks until its first output
// line acknowledges readiness. With force, any live session is killed
// first; without it a live session fails with ErrAlreadyRunning.
func (s *Session) Start(force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(force)
}

func (s *Session) startLocked(force bool) error {
	if s.running {
		if !force {
			return ErrAlreadyRunning
		}
		s.killLocked()
	}
	if len(s.cfg.Command) == 0 {
		return fmt.Errorf("%w: no backend command configured", ErrStartupFailed)
	}

	cmd := exec.Command(s.cfg.Command[0], s.cfg.Command[1:]...)
	env := append(os.Environ(), "PYTHONIOENCODING=utf-8")
	if s.cfg.LibraryPath != "" {
		env = append(env, "PYTHONPATH="+s.cfg.LibraryPath)
	}
	cmd.Env = env

	if s.cfg.StderrPath != "" {
		f, err := os.OpenFile(s.cfg.StderrPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("%w: opening stderr file: %v", ErrStartupFailed, err)
		}
		cmd.Stderr = f
		s.stderr = f
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStartupFailed, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStartupFailed, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrStartupFailed, err)
	}

	out := &outputBuffer{}
	go func() {
		io.Copy(out, stdout) //nolint:errcheck // EOF or a kill ends the copy either way
	}()

	s.cmd = cmd
	s.stdin = stdin
	s.out = out
	s.id = uuid.NewString()
	s.running = true

	// Wait, bounded, for the readiness banner.
	deadline := time.Now().Add(s.cfg.StartupTimeout)
	for !out.hasLine() {
		if time.Now().After(deadline) {
			s.killLocked()
			return fmt.Errorf("%w after %v", ErrStartupFailed, s.cfg.StartupTimeout)
		}
		time.Sleep(s.cfg.PollInterval)
	}
	banner := out.take()
	first := banner
	if i := strings.IndexByte(banner, '\n'); i >= 0 {
		first = banner[:i]
	}
	if !readyRe.MatchString(first) {
		s.killLocked()
		return fmt.Errorf("%w: got %q", ErrStartupFailed, first)
	}

	log.Printf("backend session %s started: %v", s.id, s.cfg.Command)
	return nil
}

// Send writes one encoded request line to the backend.
func (s *Session) Send(command string, opts Options, payloadType, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendLocked(command, opts, payloadType, payload)
}

func (s *Session) sendLocked(command string, opts Options, payloadType, payload string) error {
	if !s.running {
		return ErrNotRunning
	}
	_, err := io.WriteString(s.stdin, EncodeRequest(command, opts, payloadType, payload))
	if err != nil {
		return fmt.Errorf("writing to backend: %w", err)
	}
	return nil
}

// Receive polls the output buffer at the configured interval up to the
// configured ceiling, then returns and clears whatever accumulated. A
// timeout yields a partial or empty message, not an error; callers must
// validate the content.
func (s *Session) Receive() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receiveLocked()
}

func (s *Session) receiveLocked() (string, error) {
	if !s.running {
		return "", ErrNotRunning
	}
	deadline := time.Now().Add(s.cfg.ReceiveTimeout)
	for {
		if s.out.complete() {
			return s.out.take(), nil
		}
		if time.Now().After(deadline) {
			return s.out.take(), nil
		}
		time.Sleep(s.cfg.PollInterval)
	}
}

// Query performs send+receive as one synchronous round trip, starting a
// session first if none is live.
func (s *Session) Query(command string, opts Options, payloadType, payload string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		if err := s.startLocked(false); err != nil {
			return "", err
		}
	}
	if err := s.sendLocked(command, opts, payloadType, payload); err != nil {
		return "", err
	}
	return s.receiveLocked()
}

// Restart force-recreates the backend process.
func (s *Session) Restart() error {
	return s.Start(true)
}

// Kill signals end-of-input, terminates the process, and clears session
// state. It is idempotent.
func (s *Session) Kill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.killLocked()
}

func (s *Session) killLocked() {
	if !s.running {
		return
	}
	if s.stdin != nil {
		s.stdin.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill() //nolint:errcheck // already exiting is fine
		s.cmd.Wait()         //nolint:errcheck
	}
	if s.stderr != nil {
		s.stderr.Close()
		s.stderr = nil
	}
	log.Printf("backend session %s stopped", s.id)
	s.cmd = nil
	s.stdin = nil
	s.out = nil
	s.running = false
}
