// Package server exposes the PGN document core and the backend chess
// engine over the Language Server Protocol. Editors drive it with
// incremental text sync plus workspace/executeCommand requests.
package server

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dwcoates/pgn-mode/internal/cache"
	"github.com/dwcoates/pgn-mode/internal/config"
	"github.com/dwcoates/pgn-mode/internal/engine"
	"github.com/dwcoates/pgn-mode/internal/manager"
)

type Server struct {
	handler *protocol.Handler
	config  config.Config
	manager *manager.DocumentManager
	session *engine.Session
	client  *engine.Client
	store   *cache.Store
}

func NewServer() (*server.Server, error) {
	ls := &Server{}
	ls.manager = manager.NewDocumentManager()
	ls.handler = &protocol.Handler{
		Initialize:              ls.initialize,
		Initialized:             ls.initialized,
		TextDocumentDidOpen:     ls.textDocumentDidOpen,
		TextDocumentDidChange:   ls.textDocumentDidChange,
		TextDocumentDidSave:     ls.textDocumentDidSave,
		TextDocumentDidClose:    ls.textDocumentDidClose,
		WorkspaceExecuteCommand: ls.workspaceExecuteCommand,
		Shutdown:                ls.shutdown,
	}

	return server.NewServer(ls.handler, "pgn-mode", false), nil
}
