package engine

import "errors"

var (
	// ErrAlreadyRunning is returned by Start when a session is live and
	// force was not requested.
	ErrAlreadyRunning = errors.New("backend session already running")

	// ErrStartupFailed means the backend process never acknowledged
	// readiness. The session is dead; the caller must retry Start
	// explicitly.
	ErrStartupFailed = errors.New("backend process did not acknowledge readiness")

	// ErrNotRunning is returned by Send/Receive without a live session.
	// Query recovers from this by starting one lazily.
	ErrNotRunning = errors.New("backend session not running")

	// Protocol violations. The version-related ones trigger a forced
	// session restart before they surface.
	ErrEmptyResponse   = errors.New("empty response from backend")
	ErrMissingVersion  = errors.New("response missing version token")
	ErrVersionMismatch = errors.New("backend version mismatch")
	ErrMalformedTag    = errors.New("response missing tag token")
	ErrUnexpectedTag   = errors.New("unexpected response tag for command")
)
