package server

import (
	"context"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentDidOpen(
	glspContext *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	return s.manager.Open(params.TextDocument.URI, []byte(params.TextDocument.Text))
}

func (s *Server) textDocumentDidChange(
	glspContext *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	for _, raw := range params.ContentChanges {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEvent:
			if err := s.manager.ApplyIncrementalEdit(context.Background(), uri, change); err != nil {
				return fmt.Errorf("unexpected error during edit: %w", err)
			}
		case protocol.TextDocumentContentChangeEventWhole:
			if err := s.manager.ReplaceDocument(context.Background(), uri, []byte(change.Text)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unexpected change event type %T", raw)
		}
	}
	return nil
}

func (s *Server) textDocumentDidSave(
	glspContext *glsp.Context,
	params *protocol.DidSaveTextDocumentParams,
) error {
	if params.Text == nil {
		return nil
	}
	// A full reparse on save self-heals any drift from incremental sync.
	return s.manager.ReplaceDocument(context.Background(), params.TextDocument.URI, []byte(*params.Text))
}

func (s *Server) textDocumentDidClose(
	glspContext *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	s.manager.Release(params.TextDocument.URI)
	return nil
}
