package pgn

import (
	"context"
	"fmt"
	"sync"

	forest "github.com/alexaandru/go-sitter-forest/pgn"
	sitter "github.com/smacker/go-tree-sitter"
)

var lang = sitter.NewLanguage(forest.GetLanguage())

// Edit represents an edit change for incremental parsing.
type Edit sitter.EditInput

// Parser wraps a tree-sitter parser instance along with the current
// syntax tree and source of one PGN document.
type Parser struct {
	parser *sitter.Parser
	tree   *sitter.Tree
	source []byte
	mu     sync.Mutex
}

// NewParser creates a Parser for PGN and parses initialText.
func NewParser(initialText []byte) (*Parser, error) {
	p := sitter.NewParser()
	p.SetLanguage(lang)
	tree, err := p.ParseCtx(context.Background(), nil, initialText)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to parse initial text: %w", err)
	}
	return &Parser{
		parser: p,
		tree:   tree,
		source: initialText,
	}, nil
}

// Document returns a view of the current source and tree. The view is
// valid until the next Update/Reparse/Close on this Parser.
func (p *Parser) Document() *Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &Document{content: p.source, tree: p.tree}
}

// Source returns the current source bytes.
func (p *Parser) Source() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// Update applies a set of changes (edits) to the currently parsed tree.
// The tree is stale until Reparse is called with the edited source.
func (p *Parser) Update(changes []Edit) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tree == nil {
		return fmt.Errorf("no tree available to update")
	}
	for _, change := range changes {
		p.tree.Edit(sitter.EditInput(change))
	}
	return nil
}

// Reparse re-parses newSource incrementally against the current tree.
func (p *Parser) Reparse(ctx context.Context, newSource []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.parser == nil {
		return fmt.Errorf("parser is closed")
	}
	newTree, err := p.parser.ParseCtx(ctx, p.tree, newSource)
	if err != nil {
		return err
	}
	if p.tree != nil && p.tree != newTree {
		p.tree.Close()
	}
	p.tree = newTree
	p.source = newSource
	return nil
}

// detach releases the parser but leaves the tree alive, handing its
// ownership to a Document produced from this Parser.
func (p *Parser) detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
	p.tree = nil
}

// Close frees any resources held by the Parser.
func (p *Parser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tree != nil {
		p.tree.Close()
		p.tree = nil
	}
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
	return nil
}
