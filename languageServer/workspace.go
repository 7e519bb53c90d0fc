package languageServer

import (
	"context"
	"slices"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/z80asm/macroasm-ls/workspace"
)

// scanWorkspace indexes every assembler source below root and starts
// watching it for changes made outside the editor.
func (s *Server) scanWorkspace(ctx context.Context, root string) {
	props := s.settings()
	files, err := workspace.Discover(root, props.Files)
	if err != nil {
		s.logger.Warn("workspace discovery failed", "root", root, "error", err)
		return
	}

	for _, path := range files {
		if err := s.index.Refresh(ctx, path); err != nil {
			s.logger.Debug("cannot index file", "path", path, "error", err)
		}
	}
	s.logger.Info("workspace indexed", "root", root, "files", len(files))

	filter := workspace.NewFilter(root, props.Files)
	watcher, err := workspace.NewWatcher(filter, s, watchDelay, s.logger)
	if err != nil {
		s.logger.Warn("cannot watch workspace", "root", root, "error", err)
		s.mu.Lock()
		s.root, s.filter = root, filter
		s.mu.Unlock()
		return
	}

	watchCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.stopScan != nil {
		s.stopScan()
	}
	s.root, s.filter, s.stopScan = root, filter, cancel
	s.mu.Unlock()

	go func() {
		if err := watcher.Run(watchCtx); err != nil && watchCtx.Err() == nil {
			s.logger.Error("workspace watcher stopped", "error", err)
		}
	}()
}

func (s *Server) stopWatching() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopScan != nil {
		s.stopScan()
		s.stopScan = nil
	}
}

// FileChanged reindexes a file changed on disk. Documents open in the editor
// are owned by the editor and ignored here.
func (s *Server) FileChanged(path string) {
	if _, open := s.overlay.Get(path); open {
		return
	}
	if err := s.index.Refresh(context.Background(), path); err != nil {
		s.logger.Debug("cannot reindex file", "path", path, "error", err)
	}
	s.republishDiagnostics(context.Background())
}

func (s *Server) FileDeleted(path string) {
	if _, open := s.overlay.Get(path); open {
		return
	}
	s.index.Remove(path)
	s.republishDiagnostics(context.Background())
}

func (s *Server) watchedFilesNotification(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidChangeWatchedFilesParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}

	s.mu.RLock()
	filter := s.filter
	s.mu.RUnlock()

	for _, change := range decodedParams.Changes {
		path, err := uriToPath(change.URI)
		if err != nil {
			s.logger.Debug("ignoring watched file", "uri", change.URI, "error", err)
			continue
		}
		if filter != nil && !filter.Match(path) {
			continue
		}
		switch change.Type {
		case fileCreated, fileChanged:
			s.FileChanged(path)
		case fileDeleted:
			s.FileDeleted(path)
		}
	}
}

// republishDiagnostics refreshes the diagnostics of every open document, as
// an include target may have appeared or disappeared.
func (s *Server) republishDiagnostics(ctx context.Context) {
	s.mu.RLock()
	conn := s.conn
	paths := make([]string, 0, len(s.open))
	for path := range s.open {
		paths = append(paths, path)
	}
	s.mu.RUnlock()

	if conn == nil {
		return
	}
	slices.Sort(paths)
	for _, path := range paths {
		s.publishDiagnostics(ctx, conn, path)
	}
}
