// Package sitteradapter converts between LSP positions (UTF-16 code
// units) and the byte offsets and points tree-sitter and the navigation
// core work in.
package sitteradapter

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	lsp "github.com/tliron/glsp/protocol_3_16"
)

// EditForChange converts an LSP incremental change into a tree-sitter
// EditInput against the current document content.
func EditForChange(change lsp.TextDocumentContentChangeEvent, document string) sitter.EditInput {
	startByte, startPoint := OffsetForPosition(document, change.Range.Start)
	oldEndByte, oldEndPoint := OffsetForPosition(document, change.Range.End)

	newText := change.Text
	newEndByte := startByte + len(newText)

	return sitter.EditInput{
		StartIndex:  uint32(startByte),
		OldEndIndex: uint32(oldEndByte),
		NewEndIndex: uint32(newEndByte),
		StartPoint:  startPoint,
		OldEndPoint: oldEndPoint,
		NewEndPoint: endPointAfterInsert(startPoint, newText),
	}
}

// ApplyChange splices an LSP incremental change into the document,
// using the same offsets EditForChange computes.
func ApplyChange(change lsp.TextDocumentContentChangeEvent, document string) string {
	startByte, _ := OffsetForPosition(document, change.Range.Start)
	endByte, _ := OffsetForPosition(document, change.Range.End)
	return document[:startByte] + change.Text + document[endByte:]
}

// OffsetForPosition resolves an LSP position to a byte offset and a
// tree-sitter point. Out-of-range lines and characters clamp.
func OffsetForPosition(document string, pos lsp.Position) (int, sitter.Point) {
	lines := strings.SplitAfter(document, "\n")
	line := int(pos.Line)
	if line >= len(lines) {
		line = len(lines) - 1
	}

	offset := 0
	for i := 0; i < line; i++ {
		offset += len(lines[i])
	}

	var units uint32
	var col int
	for _, r := range strings.TrimSuffix(lines[line], "\n") {
		width := uint32(len(utf16.Encode([]rune{r})))
		if units+width > pos.Character {
			break
		}
		units += width
		col += utf8.RuneLen(r)
	}
	offset += col

	return offset, sitter.Point{Row: uint32(line), Column: uint32(col)}
}

// PositionForOffset resolves a byte offset back to an LSP position.
func PositionForOffset(document string, offset int) lsp.Position {
	if offset > len(document) {
		offset = len(document)
	}
	row := uint32(0)
	lineStart := 0
	for i := 0; i < offset; i++ {
		if document[i] == '\n' {
			row++
			lineStart = i + 1
		}
	}
	var units uint32
	for _, r := range document[lineStart:offset] {
		units += uint32(len(utf16.Encode([]rune{r})))
	}
	return lsp.Position{Line: row, Character: units}
}

func endPointAfterInsert(start sitter.Point, text string) sitter.Point {
	lines := strings.Split(text, "\n")
	last := lines[len(lines)-1]
	if len(lines) == 1 {
		return sitter.Point{Row: start.Row, Column: start.Column + uint32(len(last))}
	}
	return sitter.Point{
		Row:    start.Row + uint32(len(lines)-1),
		Column: uint32(len(last)),
	}
}
