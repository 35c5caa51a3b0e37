package engine

import (
	"fmt"
	"log"

	"github.com/dwcoates/pgn-mode/internal/cache"
)

// Client wraps a Session with typed calls for the known commands,
// response-tag validation, and an optional response cache.
type Client struct {
	session *Session
	store   *cache.Store
}

// NewClient builds a Client. store may be nil to disable caching.
func NewClient(session *Session, store *cache.Store) *Client {
	return &Client{session: session, store: store}
}

// Session exposes the underlying session for lifecycle control.
func (c *Client) Session() *Session {
	return c.session
}

// do runs one command round trip. Version-related protocol violations
// force a silent session restart before the error surfaces, so the next
// query talks to a fresh process.
func (c *Client) do(command string, opts Options, payload string) (string, string, error) {
	var key string
	if c.store != nil {
		key = cache.Key(command, opts.Encode(), payload)
		if tag, content, ok, err := c.store.Get(key); err == nil && ok {
			return tag, content, nil
		}
	}

	raw, err := c.session.Query(command, opts, PayloadTypePGN, payload)
	if err != nil {
		return "", "", err
	}
	tag, content, err := ParseResponse(raw)
	if err != nil {
		if isVersionError(err) {
			if rerr := c.session.Restart(); rerr != nil {
				log.Printf("backend restart after protocol violation failed: %v", rerr)
			}
		}
		return "", "", err
	}
	if !tagAllowed(command, tag) {
		return "", "", fmt.Errorf("%w: %s answered %s", ErrUnexpectedTag, command, tag)
	}

	if c.store != nil {
		if err := c.store.Put(key, tag, content); err != nil {
			log.Printf("response cache write failed: %v", err)
		}
	}
	return tag, content, nil
}

func tagAllowed(command, tag string) bool {
	for _, t := range responseTags[command] {
		if t == tag {
			return true
		}
	}
	return false
}

// FEN returns the FEN of the position after the payload's last move.
func (c *Client) FEN(pgn string) (string, error) {
	_, content, err := c.do(CommandPGNToFEN, nil, pgn)
	return content, err
}

// BoardOptions configure board rendering.
type BoardOptions struct {
	Format  string // "svg" or "text"
	Pixels  int    // pixels per side for SVG output
	Flipped bool
}

// Board holds a rendered board and which form it took.
type Board struct {
	Kind    string // TagBoardSVG or TagBoardText
	Content string
}

// Board renders the position after the payload's last move.
func (c *Client) Board(pgn string, opts BoardOptions) (Board, error) {
	reqOpts := Options{
		{Key: "pixels", Value: opts.Pixels},
		{Key: "board_format", Value: opts.Format},
	}
	if opts.Flipped {
		reqOpts = append(reqOpts, Option{Key: "flipped", Value: true})
	}
	tag, content, err := c.do(CommandPGNToBoard, reqOpts, pgn)
	if err != nil {
		return Board{}, err
	}
	return Board{Kind: tag, Content: content}, nil
}

// Mainline returns the payload's mainline as a clean SAN sequence.
func (c *Client) Mainline(pgn string) (string, error) {
	_, content, err := c.do(CommandPGNToMainline, nil, pgn)
	return content, err
}

// Score asks the backend to evaluate the final position with a UCI
// engine at the given depth.
func (c *Client) Score(pgn, enginePath string, depth int) (string, error) {
	opts := Options{
		{Key: "engine", Value: enginePath},
		{Key: "depth", Value: depth},
	}
	_, content, err := c.do(CommandPGNToScore, opts, pgn)
	return content, err
}
