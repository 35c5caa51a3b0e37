package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dwcoates/pgn-mode/internal/engine"
	"github.com/dwcoates/pgn-mode/internal/pgn"
	"github.com/dwcoates/pgn-mode/internal/sitteradapter"
)

// positionArgs is the argument shape shared by every command: a document
// and a cursor position within it.
type positionArgs struct {
	URI      string            `json:"uri"`
	Position protocol.Position `json:"position"`

	// Count applies to the navigation commands only.
	Count int `json:"count,omitempty"`

	// Board rendering overrides; zero values defer to the config.
	Format  string `json:"format,omitempty"`
	Pixels  int    `json:"pixels,omitempty"`
	Flipped bool   `json:"flipped,omitempty"`
}

func decodeArgs(params *protocol.ExecuteCommandParams) (positionArgs, error) {
	var args positionArgs
	if len(params.Arguments) == 0 {
		return args, fmt.Errorf("%s requires one argument", params.Command)
	}
	raw, err := json.Marshal(params.Arguments[0])
	if err != nil {
		return args, err
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, fmt.Errorf("bad arguments for %s: %w", params.Command, err)
	}
	return args, nil
}

func (s *Server) workspaceExecuteCommand(
	glspContext *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	args, err := decodeArgs(params)
	if err != nil {
		return nil, err
	}

	doc, err := s.manager.Document(args.URI)
	if err != nil {
		return nil, err
	}
	pos, _ := sitteradapter.OffsetForPosition(string(doc.Content()), args.Position)

	switch params.Command {
	case CommandFEN:
		return s.queryFEN(doc, pos, pgn.ExtractAt)
	case CommandFENAsVariation:
		return s.queryFEN(doc, pos, pgn.ExtractAsVariation)
	case CommandBoard:
		return s.queryBoard(doc, pos, args)
	case CommandMainline:
		notation, err := pgn.ExtractAt(doc, pos)
		if err != nil {
			return nil, err
		}
		return s.client.Mainline(notation)
	case CommandScore:
		notation, err := pgn.ExtractAt(doc, pos)
		if err != nil {
			return nil, err
		}
		return s.client.Score(notation, s.config.Engine, s.config.Depth)
	case CommandNextMove:
		return s.navigate(doc, pos, args.Count, pgn.NextMove)
	case CommandPreviousMove:
		return s.navigate(doc, pos, args.Count, pgn.PreviousMove)
	}
	return nil, fmt.Errorf("unknown command %q", params.Command)
}

func (s *Server) queryFEN(
	doc *pgn.Document,
	pos int,
	extract func(*pgn.Document, int) (string, error),
) (any, error) {
	notation, err := extract(doc, pos)
	if err != nil {
		return nil, err
	}
	return s.client.FEN(notation)
}

func (s *Server) queryBoard(doc *pgn.Document, pos int, args positionArgs) (any, error) {
	notation, err := pgn.ExtractAt(doc, pos)
	if err != nil {
		return nil, err
	}
	opts := engineBoardOptions(s, args)
	board, err := s.client.Board(notation, opts)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"kind":    board.Kind,
		"content": board.Content,
	}, nil
}

func engineBoardOptions(s *Server, args positionArgs) engine.BoardOptions {
	opts := engine.BoardOptions{
		Format:  s.config.BoardFormat,
		Pixels:  s.config.Pixels,
		Flipped: s.config.Flipped,
	}
	if args.Format != "" {
		opts.Format = args.Format
	}
	if args.Pixels > 0 {
		opts.Pixels = args.Pixels
	}
	if args.Flipped {
		opts.Flipped = true
	}
	return opts
}

// navigate runs a move-navigation primitive and maps the result back to
// an editor position. Running out of moves is not an error to the
// client; it yields a null result.
func (s *Server) navigate(
	doc *pgn.Document,
	pos, count int,
	step func(*pgn.Document, int, int) (int, error),
) (any, error) {
	if count <= 0 {
		count = 1
	}
	next, err := step(doc, pos, count)
	if err != nil {
		if errors.Is(err, pgn.ErrNoMoreMoves) {
			return nil, nil
		}
		return nil, err
	}
	return sitteradapter.PositionForOffset(string(doc.Content()), next), nil
}
