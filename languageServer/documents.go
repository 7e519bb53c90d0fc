package languageServer

import (
	"context"
	"errors"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/z80asm/macroasm-ls/assembler"
	"github.com/z80asm/macroasm-ls/formatter"
	"github.com/z80asm/macroasm-ls/util"
)

// document returns the editor buffer for uri, or the file contents when the
// editor does not hold it open.
func (s *Server) document(ctx context.Context, uri DocumentUri) (*assembler.Document, error) {
	path, err := uriToPath(uri)
	if err != nil {
		return nil, err
	}
	if doc, ok := s.overlay.Get(path); ok {
		return doc, nil
	}
	return s.index.Document(ctx, path)
}

// update makes text the current content of path and reindexes it.
func (s *Server) update(path, text string, version int) {
	doc := assembler.NewDocument(path, text)
	s.overlay.Set(doc)
	s.index.Update(doc)

	s.mu.Lock()
	s.open[path] = version
	s.mu.Unlock()
}

func (s *Server) publishDiagnostics(ctx context.Context, conn *jsonrpc2.Conn, path string) {
	diagnostics, err := s.index.Diagnostics(ctx, path)
	if err != nil {
		s.logger.Debug("cannot compute diagnostics", "path", path, "error", err)
		return
	}
	if diagnostics == nil {
		diagnostics = make([]assembler.Diagnostic, 0)
	}

	s.mu.RLock()
	version := s.open[path]
	s.mu.RUnlock()

	conn.Notify(ctx, "textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         pathToURI(path),
		Version:     version,
		Diagnostics: diagnostics,
	})
}

func (s *Server) documentOpenNotification(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidOpenTextDocumentParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}
	path, err := uriToPath(decodedParams.TextDocument.URI)
	if err != nil {
		s.logger.Warn("cannot open document", "error", err)
		return
	}

	s.update(path, decodedParams.TextDocument.Text, decodedParams.TextDocument.Version)
	s.publishDiagnostics(ctx, conn, path)
}

func (s *Server) documentCloseNotification(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidCloseTextDocumentParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}
	path, err := uriToPath(decodedParams.TextDocument.URI)
	if err != nil {
		return
	}

	s.overlay.Delete(path)
	s.mu.Lock()
	delete(s.open, path)
	s.mu.Unlock()

	// the file on disk is authoritative again
	if err := s.index.Refresh(ctx, path); err != nil {
		s.logger.Debug("cannot reindex closed document", "path", path, "error", err)
	}
	conn.Notify(ctx, "textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         decodedParams.TextDocument.URI,
		Diagnostics: make([]assembler.Diagnostic, 0),
	})
}

func (s *Server) documentChangeNotification(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidChangeTextDocumentParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}
	if len(decodedParams.ContentChanges) == 0 {
		return
	}
	path, err := uriToPath(decodedParams.TextDocument.URI)
	if err != nil {
		return
	}

	last := decodedParams.ContentChanges[len(decodedParams.ContentChanges)-1]
	s.update(path, last.Text, decodedParams.TextDocument.Version)
	s.publishDiagnostics(ctx, conn, path)
}

func (s *Server) documentDiagnostics(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DocumentDiagnosticsParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}
	path, err := uriToPath(decodedParams.TextDocument.URI)
	if err != nil {
		replyError(ctx, conn, req, jsonrpc2.CodeInvalidParams, err.Error())
		return
	}

	diagnostics, err := s.index.Diagnostics(ctx, path)
	if err != nil {
		s.logger.Debug("cannot compute diagnostics", "path", path, "error", err)
	}
	if diagnostics == nil {
		diagnostics = make([]assembler.Diagnostic, 0)
	}
	conn.Reply(ctx, req.ID, DocumentDiagnosticsReport{
		Kind:  "full",
		Items: diagnostics,
	})
}

// formatterFor applies the editor's indentation options over the settings.
func (s *Server) formatterFor(options FormattingOptions) *formatter.Formatter {
	props := s.settings()
	if options.TabSize > 0 {
		props.IndentSize = options.TabSize
	}
	props.IndentSpaces = options.InsertSpaces
	return formatter.New(props)
}

func textEdits(edits []formatter.Edit) []TextEdit {
	result := make([]TextEdit, 0, len(edits))
	for _, e := range edits {
		result = append(result, TextEdit{Range: e.Range, NewText: e.NewText})
	}
	return result
}

func (s *Server) formattingRequest(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DocumentFormattingParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}
	doc, err := s.document(ctx, decodedParams.TextDocument.URI)
	if err != nil {
		s.replyNotApplicable(ctx, conn, req, err)
		return
	}

	edits := s.formatterFor(decodedParams.Options).Document(doc)
	conn.Reply(ctx, req.ID, textEdits(edits))
	util.LogF("reformatted document %s", decodedParams.TextDocument.URI)
}

func (s *Server) rangeFormattingRequest(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DocumentRangeFormattingParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}
	doc, err := s.document(ctx, decodedParams.TextDocument.URI)
	if err != nil {
		s.replyNotApplicable(ctx, conn, req, err)
		return
	}

	r := decodedParams.Range
	last := r.End.Line
	// a selection ending at column 0 does not include that line
	if last > r.Start.Line && r.End.Char == 0 {
		last--
	}
	edits := s.formatterFor(decodedParams.Options).Lines(doc, r.Start.Line, last, false)
	conn.Reply(ctx, req.ID, textEdits(edits))
}

func (s *Server) onTypeFormattingRequest(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DocumentOnTypeFormattingParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}
	if !s.settings().FormatOnType {
		conn.Reply(ctx, req.ID, nil)
		return
	}
	doc, err := s.document(ctx, decodedParams.TextDocument.URI)
	if err != nil {
		s.replyNotApplicable(ctx, conn, req, err)
		return
	}

	edits := s.formatterFor(decodedParams.Options).OnType(doc, decodedParams.Position, decodedParams.Ch)
	conn.Reply(ctx, req.ID, textEdits(edits))
}

// replyNotApplicable answers an advisory request that has no result. Missing
// documents and cancellation are not errors for the client.
func (s *Server) replyNotApplicable(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request, err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Debug("request has no result", "method", req.Method, "error", err)
	}
	conn.Reply(ctx, req.ID, nil)
}
