package server

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dwcoates/pgn-mode/internal/cache"
	"github.com/dwcoates/pgn-mode/internal/config"
	"github.com/dwcoates/pgn-mode/internal/engine"
)

// Editor-facing command names, dispatched via workspace/executeCommand.
const (
	CommandFEN            = "pgn/fen"
	CommandFENAsVariation = "pgn/fenAsVariation"
	CommandBoard          = "pgn/board"
	CommandMainline       = "pgn/mainline"
	CommandScore          = "pgn/score"
	CommandNextMove       = "pgn/nextMove"
	CommandPreviousMove   = "pgn/previousMove"
)

var serverCommands = []string{
	CommandFEN,
	CommandFENAsVariation,
	CommandBoard,
	CommandMainline,
	CommandScore,
	CommandNextMove,
	CommandPreviousMove,
}

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	cfg, err := config.Load(params.InitializationOptions)
	if err != nil {
		return nil, err
	}
	s.config = cfg
	log.Printf("Config: %+v", cfg)

	// Response cache. A broken cache degrades to uncached queries.
	switch cachePath := cfg.CachePath; cachePath {
	case "off":
	default:
		if cachePath == "" {
			stateDir, err := getXDGStateHome("pgn-mode")
			if err != nil {
				log.Printf("no state directory, running uncached: %v", err)
				break
			}
			cachePath = filepath.Join(stateDir, "responses.db")
		}
		store, err := cache.Open(cachePath)
		if err != nil {
			log.Printf("failed to open response cache, running uncached: %v", err)
			break
		}
		s.store = store
	}

	// Backend session. The process itself is spawned lazily on the
	// first query.
	s.session = engine.NewSession(engine.Config{
		Command:        cfg.BackendCommand,
		LibraryPath:    cfg.LibraryPath,
		StderrPath:     cfg.StderrPath,
		PollInterval:   time.Duration(cfg.PollIntervalMS) * time.Millisecond,
		ReceiveTimeout: time.Duration(cfg.ReceiveTimeoutMS) * time.Millisecond,
		StartupTimeout: time.Duration(cfg.StartupTimeoutMS) * time.Millisecond,
	})
	s.client = engine.NewClient(s.session, s.store)

	syncKind := protocol.TextDocumentSyncKindIncremental

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: &protocol.True},
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: serverCommands,
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
	}, nil
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	log.Println("Client initialized.")
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	if s.session != nil {
		s.session.Kill()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("error closing response cache: %v", err)
		}
	}
	return s.manager.CloseAll()
}

func getXDGStateHome(appName string) (string, error) {
	xdgStateHome := os.Getenv("XDG_STATE_HOME")
	if xdgStateHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		xdgStateHome = filepath.Join(homeDir, ".local", "state")
	}

	appStateDir := filepath.Join(xdgStateHome, appName)
	if err := os.MkdirAll(appStateDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}

	return appStateDir, nil
}
