package languageServer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/z80asm/macroasm-ls/assembler"
	"github.com/z80asm/macroasm-ls/symbols"
)

// codeRequestFailed is the LSP RequestFailed error code.
const codeRequestFailed = -32803

func (s *Server) hoverRequest(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := TextDocumentPositionParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}
	doc, err := s.document(ctx, decodedParams.TextDocument.URI)
	if err != nil {
		s.replyNotApplicable(ctx, conn, req, err)
		return
	}

	text, r, ok := s.hover(ctx, doc, decodedParams.Position)
	if !ok {
		conn.Reply(ctx, req.ID, nil)
		return
	}
	conn.Reply(ctx, req.ID, Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: text,
		},
		Range: &r,
	})
}

// hover prefers declared symbols and include paths over the fixed lexicon of
// instructions, registers and literals.
func (s *Server) hover(ctx context.Context, doc *assembler.Document, pos assembler.TextPosition) (string, assembler.TextRange, bool) {
	res, err := s.resolver.Resolve(ctx, doc, pos, symbols.ModeHover)
	if err == nil {
		if res.Include != nil {
			return assembler.IncludeHover(res.Include.FullPath), res.Range, true
		}
		return symbolHover(res.Symbol), res.Range, true
	}
	if ctx.Err() != nil {
		return "", assembler.TextRange{}, false
	}
	return assembler.HoverAt(doc, pos)
}

func symbolHover(sym *assembler.Symbol) string {
	header := fmt.Sprintf("%s `%s`", sym.Kind, sym.Declaration)
	if sym.Documentation == "" {
		return header
	}
	return header + "\n\n" + sym.Documentation
}

func (s *Server) definitionRequest(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := TextDocumentPositionParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}
	doc, err := s.document(ctx, decodedParams.TextDocument.URI)
	if err != nil {
		s.replyNotApplicable(ctx, conn, req, err)
		return
	}

	res, err := s.resolver.Resolve(ctx, doc, decodedParams.Position, symbols.ModeDefinition)
	if err != nil {
		s.replyNotApplicable(ctx, conn, req, err)
		return
	}
	if res.Include != nil {
		conn.Reply(ctx, req.ID, Location{
			URI:   pathToURI(res.Include.FullPath),
			Range: assembler.LineRange(0, 0, 0),
		})
		return
	}
	conn.Reply(ctx, req.ID, Location{
		URI:   pathToURI(res.Symbol.Location.Path),
		Range: res.Symbol.Location.Range,
	})
}

func (s *Server) completionRequest(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := TextDocumentPositionParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}
	doc, err := s.document(ctx, decodedParams.TextDocument.URI)
	if err != nil {
		s.replyNotApplicable(ctx, conn, req, err)
		return
	}

	items, err := s.proposer.Complete(ctx, doc, decodedParams.Position, s.settings())
	if err != nil {
		s.replyNotApplicable(ctx, conn, req, err)
		return
	}

	list := CompletionList{Items: make([]CompletionItem, 0, len(items))}
	for _, item := range items {
		ci := CompletionItem{
			Label:            item.Label,
			Kind:             int(item.Kind),
			Preselect:        item.Preselect,
			SortText:         item.SortText,
			InsertText:       item.InsertText,
			InsertTextFormat: InsertTextFormatSnippet,
			CommitCharacters: item.CommitCharacters,
		}
		if item.Documentation != "" {
			ci.Documentation = &MarkupContent{Kind: "markdown", Value: item.Documentation}
		}
		if item.Range != nil {
			ci.TextEdit = &TextEdit{Range: *item.Range, NewText: item.InsertText}
		}
		list.Items = append(list.Items, ci)
	}
	conn.Reply(ctx, req.ID, list)
}

// replyRenameError reports a rejected rename with its reason. Other failures
// leave the rename without a result.
func (s *Server) replyRenameError(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request, err error) {
	var renameErr *assembler.RenameError
	if errors.As(err, &renameErr) {
		replyError(ctx, conn, req, codeRequestFailed, renameErr.Reason)
		return
	}
	s.replyNotApplicable(ctx, conn, req, err)
}

func (s *Server) prepareRenameRequest(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := TextDocumentPositionParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}
	doc, err := s.document(ctx, decodedParams.TextDocument.URI)
	if err != nil {
		s.replyNotApplicable(ctx, conn, req, err)
		return
	}

	r, err := s.renamer.PrepareRename(doc, decodedParams.Position)
	if err != nil {
		s.replyRenameError(ctx, conn, req, err)
		return
	}
	conn.Reply(ctx, req.ID, PrepareRenameResult{
		Range:       r,
		Placeholder: doc.LineAt(r.Start.Line)[r.Start.Char:r.End.Char],
	})
}

func (s *Server) renameRequest(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := RenameParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}
	doc, err := s.document(ctx, decodedParams.TextDocument.URI)
	if err != nil {
		s.replyNotApplicable(ctx, conn, req, err)
		return
	}

	edits, err := s.renamer.Rename(ctx, doc, decodedParams.Position, decodedParams.NewName)
	if err != nil {
		s.replyRenameError(ctx, conn, req, err)
		return
	}

	result := WorkspaceEdit{Changes: make(map[DocumentUri][]TextEdit, len(edits))}
	for path, fileEdits := range edits {
		converted := make([]TextEdit, 0, len(fileEdits))
		for _, e := range fileEdits {
			converted = append(converted, TextEdit{Range: e.Range, NewText: e.NewText})
		}
		result.Changes[pathToURI(path)] = converted
	}
	conn.Reply(ctx, req.ID, result)
}

func symbolKind(kind assembler.SymbolKind) int {
	switch kind {
	case assembler.SymbolKindModule:
		return SymbolKindModule
	case assembler.SymbolKindMacro:
		return SymbolKindFunction
	}
	return SymbolKindVariable
}

func symbolInformation(syms []*assembler.Symbol) []SymbolInformation {
	result := make([]SymbolInformation, 0, len(syms))
	for _, sym := range syms {
		result = append(result, SymbolInformation{
			Name: sym.Declaration,
			Kind: symbolKind(sym.Kind),
			Location: Location{
				URI:   pathToURI(sym.Location.Path),
				Range: sym.Location.Range,
			},
			ContainerName: sym.ModuleName,
		})
	}
	return result
}

func (s *Server) documentSymbolRequest(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DocumentSymbolParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}
	path, err := uriToPath(decodedParams.TextDocument.URI)
	if err != nil {
		s.replyNotApplicable(ctx, conn, req, err)
		return
	}

	syms, err := s.index.DocumentSymbols(ctx, path)
	if err != nil {
		s.replyNotApplicable(ctx, conn, req, err)
		return
	}
	conn.Reply(ctx, req.ID, symbolInformation(syms))
}

func (s *Server) workspaceSymbolRequest(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := WorkspaceSymbolParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}

	syms, err := s.index.WorkspaceSymbols(ctx, decodedParams.Query)
	if err != nil {
		s.replyNotApplicable(ctx, conn, req, err)
		return
	}
	conn.Reply(ctx, req.ID, symbolInformation(syms))
}
