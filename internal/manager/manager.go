package manager

import (
	"context"
	"fmt"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dwcoates/pgn-mode/internal/pgn"
	"github.com/dwcoates/pgn-mode/internal/sitteradapter"
)

// DocumentManager encapsulates parser and document state for each open URI.
type DocumentManager struct {
	mu      sync.Mutex
	parsers map[string]*pgn.Parser
}

// NewDocumentManager creates an initialized DocumentManager.
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		parsers: make(map[string]*pgn.Parser),
	}
}

// Open parses content and tracks it under uri, replacing any previous
// state for that URI.
func (dm *DocumentManager) Open(uri string, content []byte) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if old, ok := dm.parsers[uri]; ok && old != nil {
		old.Close()
	}
	p, err := pgn.NewParser(content)
	if err != nil {
		return fmt.Errorf("failed to create parser for %s: %w", uri, err)
	}
	dm.parsers[uri] = p
	return nil
}

// Document returns the current parse of uri. The returned Document is
// valid until the next edit on that URI.
func (dm *DocumentManager) Document(uri string) (*pgn.Document, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	p, ok := dm.parsers[uri]
	if !ok {
		return nil, fmt.Errorf("document not loaded for %s", uri)
	}
	return p.Document(), nil
}

// Source returns the current source bytes for uri.
func (dm *DocumentManager) Source(uri string) ([]byte, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	p, ok := dm.parsers[uri]
	if !ok {
		return nil, fmt.Errorf("document not loaded for %s", uri)
	}
	return p.Source(), nil
}

// ApplyIncrementalEdit applies one LSP change to the tracked tree and
// reparses the spliced source incrementally.
func (dm *DocumentManager) ApplyIncrementalEdit(
	ctx context.Context,
	uri string,
	change protocol.TextDocumentContentChangeEvent,
) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	p, ok := dm.parsers[uri]
	if !ok {
		return fmt.Errorf("no parser for document %s", uri)
	}

	oldText := string(p.Source())
	edit := pgn.Edit(sitteradapter.EditForChange(change, oldText))
	if err := p.Update([]pgn.Edit{edit}); err != nil {
		return err
	}

	newText := sitteradapter.ApplyChange(change, oldText)
	return p.Reparse(ctx, []byte(newText))
}

// ReplaceDocument reparses uri from scratch with the full new content.
func (dm *DocumentManager) ReplaceDocument(ctx context.Context, uri string, content []byte) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	p, ok := dm.parsers[uri]
	if !ok {
		return fmt.Errorf("no parser for document %s", uri)
	}
	return p.Reparse(ctx, content)
}

// Release frees parser state for a URI.
func (dm *DocumentManager) Release(uri string) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if p, ok := dm.parsers[uri]; ok && p != nil {
		p.Close()
	}
	delete(dm.parsers, uri)
}

// CloseAll cleans up all parsers.
func (dm *DocumentManager) CloseAll() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	for uri, p := range dm.parsers {
		if err := p.Close(); err != nil {
			return fmt.Errorf("error closing parser for %s: %w", uri, err)
		}
	}
	dm.parsers = make(map[string]*pgn.Parser)
	return nil
}
